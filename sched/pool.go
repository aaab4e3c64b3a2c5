package sched

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coregx/coregrep/plan"
)

// Options configures a Pool per the concurrency flags of spec §6.
type Options struct {
	Workers      int
	MaxQueue     int // per-worker soft cap; 0 = unbounded
	MinSteal     int // default 3
	WorkStealing bool
	Logger       *slog.Logger
}

// Pool is the worker pool of spec §4.5: N workers, each with its own
// bounded queue, optionally stealing from the most loaded peer.
type Pool struct {
	opts   Options
	queues []*workerQueue
	g      *errgroup.Group
	slot   int64
	cancel atomic.Bool
	logger *slog.Logger
}

// New creates a Pool. Workers are not started until Start is called.
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MinSteal <= 0 {
		opts.MinSteal = 3
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	p := &Pool{opts: opts, logger: opts.Logger}
	p.queues = make([]*workerQueue, opts.Workers)
	for i := range p.queues {
		p.queues[i] = newWorkerQueue(opts.MaxQueue)
	}
	return p
}

// NextSlot allocates the next monotonically increasing job slot (spec §3's
// Job invariant: slots submitted are strictly increasing in the order of
// directory iteration).
func (p *Pool) NextSlot() int {
	return int(atomic.AddInt64(&p.slot, 1)) - 1
}

// Cancel sets the shared cancellation flag polled by workers (spec §4.5
// Cancellation, §5).
func (p *Pool) Cancel() { p.cancel.Store(true) }

// Cancelled reports whether cancellation has been requested.
func (p *Pool) Cancelled() bool { return p.cancel.Load() }

// Start launches Workers goroutines, each draining its own queue via
// process until it dequeues the NONE sentinel. The goroutines are joined
// through an errgroup.Group rather than a bare sync.WaitGroup, the same
// join-all-before-returning shape spec §4.5 Termination describes, plus a
// group-scoped context workers can select on.
func (p *Pool) Start(ctx context.Context, process func(ctx context.Context, job plan.Job)) {
	g, gctx := errgroup.WithContext(ctx)
	p.g = g
	for i := range p.queues {
		id := i
		g.Go(func() error {
			p.runWorker(gctx, id, process)
			return nil
		})
	}
}

func (p *Pool) runWorker(ctx context.Context, id int, process func(context.Context, plan.Job)) {
	for {
		job, ok := p.dequeue(id)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
			continue
		}
		if job.IsSentinel() {
			return
		}
		if p.Cancelled() {
			// spec §4.5 Cancellation: pending jobs stay queued but are no
			// longer processed once cancelled; the worker keeps draining
			// until it reaches its NONE sentinel so Stop can still join it.
			continue
		}
		process(ctx, job)
	}
}

// dequeue pops the next job from worker id's own queue; only when that
// queue is empty does it try to steal from the most loaded peer (spec §4.5
// Work stealing).
func (p *Pool) dequeue(id int) (plan.Job, bool) {
	q := p.queues[id]

	if j, ok := q.PopFront(); ok {
		return j, true
	}

	if p.opts.WorkStealing {
		if victim := p.mostLoadedPeer(id); victim >= 0 {
			if j, ok := p.queues[victim].StealBack(p.opts.MinSteal); ok {
				q.InsertInSlotOrder(j)
				return q.PopFront()
			}
		}
	}

	return plan.Job{}, false
}

func (p *Pool) mostLoadedPeer(self int) int {
	best := -1
	bestLen := 0
	for i, q := range p.queues {
		if i == self {
			continue
		}
		if l := q.Len(); l > bestLen {
			bestLen = l
			best = i
		}
	}
	if bestLen <= 1 {
		return -1
	}
	return best
}

// Submit assigns the job's slot and dispatches it round-robin to whichever
// of the next N workers is least loaded, per spec §4.5's "Round-robin with
// least-loaded choice". It blocks briefly and retries if all candidate
// queues are at their soft max.
func (p *Pool) Submit(ctx context.Context, path string, fuzzyCost int) {
	job := plan.Job{Path: path, FuzzyCost: fuzzyCost, Slot: p.NextSlot(), SubmitTime: time.Now()}

	start := p.slot % int64(len(p.queues))
	for {
		if ctx.Err() != nil {
			return
		}
		best := -1
		bestLen := -1
		for i := 0; i < len(p.queues); i++ {
			idx := (int(start) + i) % len(p.queues)
			l := p.queues[idx].Len()
			if bestLen == -1 || l < bestLen {
				bestLen = l
				best = idx
			}
		}
		if p.queues[best].PushBack(job) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Millisecond):
		}
	}
}

// Stop submits one NONE sentinel per worker and waits for all workers to
// exit (spec §4.5 Termination).
func (p *Pool) Stop() {
	for _, q := range p.queues {
		for !q.PushBack(plan.Sentinel()) {
			time.Sleep(time.Millisecond)
		}
	}
	_ = p.g.Wait()
}
