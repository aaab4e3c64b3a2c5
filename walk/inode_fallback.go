//go:build !unix

package walk

import (
	"os"

	"github.com/coregx/coregrep/plan"
)

// inodeOf reports no identity (zero InodeID, false) on platforms without
// stable device/inode pairs, so the walker does no symlink-loop detection
// there.
func inodeOf(path string) (plan.InodeID, bool) {
	abs, err := os.Stat(path)
	if err != nil {
		return plan.InodeID{}, false
	}
	_ = abs
	return plan.InodeID{}, false
}

func mustInode(path string) plan.InodeID {
	return plan.InodeID{}
}

func sortInfoOf(info os.FileInfo) plan.SortInfo {
	return plan.SortInfo{Size: info.Size(), ChangedUTC: info.ModTime().UnixMicro()}
}
