//go:build unix

package walk

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/coregx/coregrep/plan"
)

// inodeOf calls unix.Stat directly rather than going through os.Stat, since
// the device/inode pair (spec §3's InodeID) is all the walker needs here
// and golang.org/x/sys/unix is the maintained surface for raw stat access
// across the unix build tag's platforms.
func inodeOf(path string) (plan.InodeID, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return plan.InodeID{}, false
	}
	return plan.InodeID{Device: uint64(st.Dev), Inode: uint64(st.Ino)}, true
}

func mustInode(path string) plan.InodeID {
	id, _ := inodeOf(path)
	return id
}

// sortInfoOf reads atime/ctime off the os.FileInfo the walker already holds
// rather than re-stating the path. info.Sys() is documented to return a
// *syscall.Stat_t on unix regardless of what else is imported, so this half
// stays on the standard library; only the path-based lookup in inodeOf
// switches to golang.org/x/sys/unix above.
func sortInfoOf(info os.FileInfo) plan.SortInfo {
	si := plan.SortInfo{Size: info.Size(), ChangedUTC: info.ModTime().UnixMicro()}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		si.AccessedUTC = atimeMicro(st)
		si.CreatedUTC = ctimeMicro(st)
	}
	return si
}
