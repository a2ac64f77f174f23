// Package pipeline streams pair-index chunks through the classifier and
// correction searcher, merging per-worker statistics at the end.
//
// Pairs are independent, so the index range is partitioned into chunks
// fed to a worker pool over read-only shared data (prime sequence,
// oracle). Each worker owns a private stats.Run; the collector merges
// partials and forwards exception records to a visit callback. Record
// arrival order across chunks is not deterministic; writers sort when
// deterministic output is requested.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"panchor/internal/anchor"
	"panchor/internal/baseline"
	"panchor/internal/correction"
	"panchor/internal/stats"
)

// Config controls the scan.
type Config struct {
	Start         int // first pair index (inclusive)
	Count         int // number of pairs to process
	Threads       int // worker goroutines; <=0 means all CPUs
	ChunkSize     int // pairs per job; <=0 means 4096
	IntervalWidth int // decay interval width; 0 disables interval tracking

	// Progress, when set, is invoked from the collector goroutine after
	// each merged chunk. Never called concurrently.
	Progress func(pairsDone, exceptions int64, maxRadius int)
}

// Record is one composite exception with its correction (and control)
// outcome, streamed to the visit callback.
type Record struct {
	Index      int
	Pn, Pn1    uint64
	Anchor     uint64
	Q          uint64
	K          uint64
	Correction correction.Result

	HasControl      bool
	ControlFixed    bool
	ControlAttempts int
}

type chunkOut struct {
	run  *stats.Run
	recs []Record
}

// Run scans pairs [Start, Start+Count), classifies each anchor, resolves
// exceptions, optionally runs the random control, and returns the merged
// statistics. Classification and coverage errors abort the run; an
// Unresolved correction is data, not an error, and never stops the scan.
func Run(
	ctx context.Context,
	cfg Config,
	primes []uint64,
	cls *anchor.Classifier,
	sr *correction.Searcher,
	ctrl *baseline.Control,
	visit func(Record) error,
) (*stats.Run, error) {
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 4096
	}
	if need := cfg.Start + cfg.Count + sr.MaxRadius() + 1; need > len(primes) {
		return nil, fmt.Errorf("pipeline: need %d primes for %d pairs from index %d at radius %d, sieve produced %d",
			need, cfg.Count, cfg.Start, sr.MaxRadius(), len(primes))
	}
	if cfg.Start < sr.MaxRadius()+1 {
		return nil, fmt.Errorf("pipeline: start index %d is inside the radius cap %d", cfg.Start, sr.MaxRadius())
	}

	type job struct{ lo, hi int }
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan chunkOut, cfg.Threads*2)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			for j := range jobs {
				out, err := scanChunk(gctx, cfg, j.lo, j.hi, primes, cls, sr, ctrl)
				if err != nil {
					return err
				}
				select {
				case results <- out:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	// Collector merges partials and forwards records.
	total := stats.NewRun()
	var verr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for out := range results {
			total.Merge(out.run)
			if cfg.Progress != nil {
				cfg.Progress(total.Pairs, total.Exceptions, total.MaxRadius)
			}
			if verr != nil {
				continue
			}
			for _, rec := range out.recs {
				if err := visit(rec); err != nil {
					verr = err
					break
				}
			}
		}
	}()

	// Feed chunks.
	end := cfg.Start + cfg.Count
feed:
	for lo := cfg.Start; lo < end; lo += cfg.ChunkSize {
		hi := lo + cfg.ChunkSize
		if hi > end {
			hi = end
		}
		select {
		case jobs <- job{lo: lo, hi: hi}:
		case <-gctx.Done():
			break feed
		}
	}
	close(jobs)

	werr := g.Wait()
	close(results)
	<-done

	if werr != nil {
		return total, werr
	}
	if ctx.Err() != nil {
		return total, ctx.Err()
	}
	return total, verr
}

func scanChunk(
	ctx context.Context,
	cfg Config,
	lo, hi int,
	primes []uint64,
	cls *anchor.Classifier,
	sr *correction.Searcher,
	ctrl *baseline.Control,
) (chunkOut, error) {
	local := stats.NewRun()
	var recs []Record

	for n := lo; n < hi; n++ {
		if n%1024 == 0 && ctx.Err() != nil {
			return chunkOut{}, ctx.Err()
		}
		out, err := cls.Classify(anchor.Pair{N: n, Pn: primes[n], Pn1: primes[n+1]})
		if err != nil {
			return chunkOut{}, err
		}
		local.AddPair()
		if out.Class != anchor.CompositeException {
			continue
		}

		local.AddException(out.Anchor, out.K)
		intervalEnd := 0
		if cfg.IntervalWidth > 0 {
			intervalEnd = (n/cfg.IntervalWidth + 1) * cfg.IntervalWidth
			local.AddIntervalException(intervalEnd)
		}

		res, err := sr.Resolve(n, out.Q)
		if err != nil {
			return chunkOut{}, err
		}
		rec := Record{
			Index: n, Pn: out.Pair.Pn, Pn1: out.Pair.Pn1,
			Anchor: out.Anchor, Q: out.Q, K: out.K, Correction: res,
		}
		if res.State == correction.Resolved {
			local.AddResolved(res.Radius)
			if intervalEnd > 0 {
				local.AddIntervalResolved(intervalEnd, res.Radius)
			}
		} else {
			local.AddUnresolved(stats.UnresolvedRecord{
				Index: n, Pn: out.Pair.Pn, Pn1: out.Pair.Pn1,
				Anchor: out.Anchor, Q: out.Q, K: out.K,
			})
		}

		if ctrl != nil && ctrl.Mode() != baseline.ModeOff {
			co, err := ctrl.Try(n, out.Anchor, out.Q)
			if err != nil {
				return chunkOut{}, err
			}
			local.AddControl(co.Fixed, co.Attempts)
			rec.HasControl = true
			rec.ControlFixed = co.Fixed
			rec.ControlAttempts = co.Attempts
		}
		recs = append(recs, rec)
	}
	return chunkOut{run: local, recs: recs}, nil
}
