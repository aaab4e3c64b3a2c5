//go:build unix && !linux

package walk

import "syscall"

func atimeMicro(st *syscall.Stat_t) int64 {
	return st.Atimespec.Sec*1_000_000 + st.Atimespec.Nsec/1_000
}

func ctimeMicro(st *syscall.Stat_t) int64 {
	return st.Ctimespec.Sec*1_000_000 + st.Ctimespec.Nsec/1_000
}
