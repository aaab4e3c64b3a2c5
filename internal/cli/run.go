package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coregx/coregrep/decomp"
	"github.com/coregx/coregrep/output"
	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/sched"
	"github.com/coregx/coregrep/search"
	"github.com/coregx/coregrep/selector"
	"github.com/coregx/coregrep/stats"
	"github.com/coregx/coregrep/walk"
)

// runSearch builds a plan from f and drives the walker -> scheduler ->
// (optional decompressor) -> search driver -> output writer pipeline to
// completion, the wiring spec §4's module list describes at a high level.
// It returns a non-nil error for usage/setup failures and walk failures;
// "ran successfully but found nothing" is returned as ErrNoMatch, which
// main.go maps to its own process exit code.
func runSearch(ctx context.Context, f *flagSet) error {
	p, err := buildPlan(f)
	if err != nil {
		return err
	}
	p.StartedAt = time.Now()

	logger := Logger
	if logger == nil {
		logger = setupLogger(f.verbose)
	}

	sel, err := selector.New(p.Selection)
	if err != nil {
		return fmt.Errorf("compiling selection rules: %w", err)
	}

	drv, err := search.New(p, compileFunc(p))
	if err != nil {
		return fmt.Errorf("compiling query: %w", err)
	}

	var st stats.Stats
	out := output.New(os.Stdout, p)

	decompOpts := decomp.Options{MaxDepth: 0, MaxPartSz: decomp.DefaultOptions.MaxPartSz}
	if p.Decomp.Enabled {
		decompOpts.MaxDepth = p.Decomp.ZMax
		if decompOpts.MaxDepth <= 0 {
			decompOpts.MaxDepth = 1
		}
	}

	pool := sched.New(sched.Options{
		Workers:      max1(p.Conc.Workers),
		MaxQueue:     p.Conc.MaxQueue,
		MinSteal:     p.Conc.MinSteal,
		WorkStealing: p.Conc.WorkStealing,
		Logger:       logger,
	})

	binBehavior := search.BinaryAuto
	switch p.BinaryFlag {
	case 1:
		binBehavior = search.BinarySkip
	case 2:
		binBehavior = search.BinaryHexdump
	case 3:
		binBehavior = search.BinaryWithoutMessage
	}

	process := func(_ context.Context, job plan.Job) {
		data, err := os.ReadFile(job.Path)
		if err != nil {
			logger.Warn("reading file", "path", job.Path, "error", err)
			st.Warnings.Add(1)
			return
		}
		st.FilesWalked.Add(1)
		st.BytesRead.Add(int64(len(data)))

		units := []decomp.Unit{{PartName: job.Path, Data: data}}
		if p.Decomp.Enabled {
			expanded, err := decomp.Expand(job.Path, data, decompOpts)
			if err != nil {
				logger.Warn("expanding archive", "path", job.Path, "error", err)
				st.Warnings.Add(1)
			} else {
				units = expanded
			}
		}

		results := make([]*search.Result, 0, len(units))
		for _, u := range units {
			st.FilesScanned.Add(1)
			var res *search.Result
			if p.FuzzyDistance > 0 && len(f.patterns) > 0 {
				res = fuzzySearch(p, f.patterns[0], u.PartName, u.Data)
			} else {
				res = drv.Search(u.PartName, u.Data, binBehavior)
			}
			if res.Matched {
				st.FilesMatched.Add(1)
				st.LinesMatched.Add(int64(len(res.Lines)))
				st.FoundParts.Add(1)
			}
			results = append(results, res)
		}
		// One Submit per job regardless of how many parts it expanded into,
		// so an archive's parts release together and nextSlot only ever
		// advances once per job. Whether this file counts toward
		// --max-files is decided by the sink at release time, not here.
		out.Submit(job.Slot, results)
	}

	out.SetCapReached(pool.Cancel)
	pool.Start(ctx, process)

	w := walk.New(sel, p.Conc.Sort, p.Conc.SortReverse, p.Selection.IgnoreFiles, logger)

	walkErr := w.Walk(p.StartPaths, func(e plan.Entry) {
		if pool.Cancelled() {
			return
		}
		pool.Submit(ctx, e.Path, -1)
	})

	pool.Stop()
	st.Warnings.Add(int64(w.Warnings()))
	st.DirsWalked.Add(int64(w.DirsWalked()))
	st.FoundFiles.Store(int64(out.FilesFound()))
	if err := out.Flush(); err != nil {
		return err
	}

	if f.stats {
		fmt.Fprint(os.Stderr, st.Report())
	}

	if walkErr != nil {
		return walkErr
	}

	if !out.AnyMatched() && p.Mode != plan.ModeFilesWithoutMatch {
		return ErrNoMatch
	}
	return nil
}

// ErrNoMatch signals "ran cleanly but found nothing", mapped to exit status
// 1 by cmd/coregrep (spec §7); main.go checks for it with errors.Is rather
// than printing it.
var ErrNoMatch = errors.New("no match")

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
