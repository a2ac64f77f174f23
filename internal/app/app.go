// Package app wires options into a full verification run: sieve
// construction, coverage checks, the parallel pipeline, record writers
// and the final report.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"panchor/internal/anchor"
	"panchor/internal/baseline"
	"panchor/internal/cli"
	"panchor/internal/correction"
	"panchor/internal/oracle"
	"panchor/internal/output"
	"panchor/internal/pipeline"
	"panchor/internal/sieve"
	"panchor/internal/stats"
	"panchor/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitFalsified = 1 // a conjecture-falsifying exception was found
	ExitUsage     = 2 // bad flags or insufficient configuration
	ExitIO        = 3
	ExitCanceled  = 130
)

// Kind selects which analysis a run performs.
type Kind int

const (
	KindVerify Kind = iota
	KindDecay
	KindMod6
)

func newLogger(opts *cli.Options, stderr io.Writer) *zap.Logger {
	if opts.Quiet {
		return zap.NewNop()
	}
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(stderr),
		level,
	)
	return zap.New(core)
}

// Run executes one analysis and returns a process exit code. All output
// goes through stdout/stderr so tests can drive it end to end.
func Run(ctx context.Context, kind Kind, opts *cli.Options, stdout, stderr io.Writer) int {
	log := newLogger(opts, stderr)
	defer func() { _ = log.Sync() }()

	mode := opts.ControlMode()
	start := opts.EffectiveStart()

	buildStart := time.Now()
	sv, err := sieve.New(opts.SieveLimit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	log.Info("sieve built",
		zap.Uint64("limit", opts.SieveLimit),
		zap.Int("primes", sv.Count()),
		zap.Duration("took", time.Since(buildStart)))

	// Fail fast when the sieve cannot cover the requested range plus the
	// correction search reach.
	if need := start + opts.Pairs + opts.MaxRadius + 1; sv.Count() < need {
		fmt.Fprintf(stderr,
			"error: sieve limit %d yields %d primes but %d pairs from index %d at radius %d need %d; raise --sieve-limit\n",
			opts.SieveLimit, sv.Count(), opts.Pairs, start, opts.MaxRadius, need)
		return ExitUsage
	}

	oc := oracle.New(sv)
	cls := anchor.NewClassifier(oc, opts.ScanCap)
	sr := correction.NewSearcher(sv.Primes(), cls, opts.MaxRadius)

	var ctrl *baseline.Control
	if mode != baseline.ModeOff {
		ctrl = baseline.New(mode, opts.ControlAttempts, opts.Seed, sv.Primes(), cls, opts.MaxRadius)
	}

	interval := 0
	if kind == KindDecay {
		interval = opts.Interval
		if interval == 0 {
			interval = cli.DefaultInterval
		}
	}

	// Writer goroutine for per-exception records, unless suppressed.
	var (
		recCh        chan<- pipeline.Record
		writeErr     <-chan error
		flushRecords func() error
	)
	visit := func(pipeline.Record) error { return nil }
	if !opts.SummaryOnly {
		bw := bufio.NewWriter(stdout)
		recCh, writeErr = writers.StartRecordWriter(bw, opts.Output, opts.Sort, opts.Header, 256)
		visit = func(r pipeline.Record) error {
			select {
			case recCh <- r:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		flushRecords = func() error { return bw.Flush() }
	}

	var lastProgress int64
	cfg := pipeline.Config{
		Start:         start,
		Count:         opts.Pairs,
		Threads:       opts.Threads,
		ChunkSize:     opts.ChunkSize,
		IntervalWidth: interval,
	}
	if opts.ProgressEvery > 0 {
		every := int64(opts.ProgressEvery)
		cfg.Progress = func(pairs, exceptions int64, maxRadius int) {
			if pairs-lastProgress < every {
				return
			}
			lastProgress = pairs - pairs%every
			log.Info("progress",
				zap.Int64("pairs", pairs),
				zap.Int64("exceptions", exceptions),
				zap.Int("max_radius", maxRadius))
		}
	}

	scanStart := time.Now()
	run, perr := pipeline.Run(ctx, cfg, sv.Primes(), cls, sr, ctrl, visit)

	if recCh != nil {
		close(recCh)
		if werr := <-writeErr; werr != nil {
			fmt.Fprintln(stderr, werr)
			return ExitIO
		}
		if err := flushRecords(); err != nil && !writers.IsBrokenPipe(err) {
			fmt.Fprintln(stderr, err)
			return ExitIO
		}
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return ExitCanceled
		}
		fmt.Fprintln(stderr, perr)
		if errors.Is(perr, oracle.ErrOutOfRange) || errors.Is(perr, anchor.ErrScanExhausted) {
			return ExitUsage
		}
		return ExitIO
	}
	log.Info("scan complete",
		zap.Int64("pairs", run.Pairs),
		zap.Int64("exceptions", run.Exceptions),
		zap.Int("max_radius", run.MaxRadius),
		zap.Duration("took", time.Since(scanStart)))

	return report(kind, opts, mode, run, stdout, stderr)
}

func report(kind Kind, opts *cli.Options, mode baseline.Mode, run *stats.Run, stdout, stderr io.Writer) int {
	// Each analysis reports only its own sections.
	if kind != KindMod6 {
		run.Mod6 = nil
	}
	if kind != KindDecay {
		run.Intervals = nil
	}
	sum := output.ToAPISummary(run, opts.SieveLimit, opts.EffectiveStart(), mode)

	// Keep stdout machine-readable for JSON formats: the human summary
	// moves to stderr, and a summary-only JSON run emits the summary
	// itself as JSON on stdout.
	summaryDst := stdout
	if opts.Output != output.FormatText {
		summaryDst = stderr
		if opts.SummaryOnly {
			if err := output.WriteJSONSummary(stdout, sum); err != nil {
				fmt.Fprintln(stderr, err)
				return ExitIO
			}
		}
	}
	if err := output.RenderSummary(summaryDst, sum, !opts.NoColor); err != nil && !writers.IsBrokenPipe(err) {
		fmt.Fprintln(stderr, err)
		return ExitIO
	}

	if sum.Verdict == output.VerdictFalsified {
		return ExitFalsified
	}
	return ExitOK
}

// RunSieve emits the prime sequence, one value per line.
func RunSieve(opts *cli.Options, stdout, stderr io.Writer) int {
	log := newLogger(opts, stderr)
	defer func() { _ = log.Sync() }()

	buildStart := time.Now()
	sv, err := sieve.New(opts.SieveLimit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	log.Info("sieve built",
		zap.Uint64("limit", opts.SieveLimit),
		zap.Int("primes", sv.Count()),
		zap.Duration("took", time.Since(buildStart)))

	bw := bufio.NewWriter(stdout)
	for _, p := range sv.Primes() {
		if _, err := fmt.Fprintln(bw, p); err != nil {
			if writers.IsBrokenPipe(err) {
				return ExitOK
			}
			fmt.Fprintln(stderr, err)
			return ExitIO
		}
	}
	if err := bw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		fmt.Fprintln(stderr, err)
		return ExitIO
	}
	return ExitOK
}
