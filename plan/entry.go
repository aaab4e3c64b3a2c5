package plan

import "time"

// InodeID identifies a filesystem entry for symlink-loop detection (spec §3,
// §9 "Cyclic graphs"). On platforms without stable device/inode pairs the
// walker gets no identity (the zero InodeID) and does no loop detection.
type InodeID struct {
	Device uint64
	Inode  uint64
}

// SortInfo packs the fields the walker can order file entries by (spec §3).
type SortInfo struct {
	Size        int64
	AccessedUTC int64 // microseconds since epoch
	ChangedUTC  int64
	CreatedUTC  int64
}

// Entry is a single filesystem entry discovered by the walker. It is created
// by the walker, optionally buffered by the sorter, and destroyed once the
// worker pool has finished searching it.
type Entry struct {
	Path     string
	IsDir    bool
	Inode    InodeID
	Sort     SortInfo
	Cost     int // best-match fuzzy cost; -1 if undefined
	ListPos  int // original directory-iteration order, used by SortListOrder
}

// NoSlot is the reserved slot value used by the sentinel job that tells a
// worker to stop (spec §3 Job invariant, §4.5 Termination).
const NoSlot = -1

// Job is a unit of work submitted to the pool: one file (or top-level
// archive) to search. Slots are strictly increasing in directory-iteration
// order; the output synchronizer uses Slot to release buffers in order.
type Job struct {
	Path       string
	FuzzyCost  int // -1 if undefined
	Slot       int
	SubmitTime time.Time
}

// IsSentinel reports whether this job is the NONE sentinel that tells a
// worker to exit.
func (j Job) IsSentinel() bool {
	return j.Slot == NoSlot
}

// Sentinel returns the stop sentinel job.
func Sentinel() Job {
	return Job{Slot: NoSlot}
}
