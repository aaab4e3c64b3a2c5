//go:build linux

package walk

import "syscall"

func atimeMicro(st *syscall.Stat_t) int64 {
	return st.Atim.Sec*1_000_000 + st.Atim.Nsec/1_000
}

func ctimeMicro(st *syscall.Stat_t) int64 {
	return st.Ctim.Sec*1_000_000 + st.Ctim.Nsec/1_000
}
