// Package sched implements the producer/worker scheduling model of spec
// §4.5: a master goroutine (the walker) submits jobs round-robin to N
// worker goroutines, each owning a bounded FIFO; workers whose own queue is
// empty may steal from the most loaded peer. Output ordering is left to the
// output package, which consumes each job's Slot.
//
// The shape is grounded on the teacher's fixed worker pool over channels
// (motor/searcher.go, motor/search_worker.go: N goroutines pulling batches,
// a WaitGroup-gated collector, atomic stats) generalized here into
// per-worker queues so the distinct round-robin/least-loaded dispatch and
// work-stealing contract of spec §4.5 can be expressed directly.
package sched

import (
	"sync"

	"github.com/coregx/coregrep/plan"
)

// workerQueue is a small locked deque. Locking (rather than a lock-free
// ring) is chosen because it is the variant spec §4.5 requires for work
// stealing; spec §5 allows either for the non-stealing case.
type workerQueue struct {
	mu   sync.Mutex
	jobs []plan.Job
	max  int
}

func newWorkerQueue(max int) *workerQueue {
	return &workerQueue{max: max}
}

// Len returns the current pending-job count, readable by the master without
// holding the worker's own processing loop.
func (q *workerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// PushBack appends a job, returning false if the queue is already at
// capacity so the master can pick a different worker.
func (q *workerQueue) PushBack(j plan.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.max > 0 && len(q.jobs) >= q.max {
		return false
	}
	q.jobs = append(q.jobs, j)
	return true
}

// PopFront removes and returns the oldest job.
func (q *workerQueue) PopFront() (plan.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return plan.Job{}, false
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true
}

// StealBack removes and returns the newest job, provided this queue holds at
// least min jobs (spec §4.5's min-steal threshold) and that job is not the
// NONE sentinel, which must never be stolen.
func (q *workerQueue) StealBack(min int) (plan.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) < min {
		return plan.Job{}, false
	}
	last := q.jobs[len(q.jobs)-1]
	if last.IsSentinel() {
		return plan.Job{}, false
	}
	q.jobs = q.jobs[:len(q.jobs)-1]
	return last, true
}

// InsertInSlotOrder inserts a stolen job keeping the queue sorted by Slot,
// per spec §4.5 "stolen jobs are inserted at the new owner's queue in slot
// order".
func (q *workerQueue) InsertInSlotOrder(j plan.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := 0
	for i < len(q.jobs) && q.jobs[i].Slot < j.Slot {
		i++
	}
	q.jobs = append(q.jobs, plan.Job{})
	copy(q.jobs[i+1:], q.jobs[i:])
	q.jobs[i] = j
}
