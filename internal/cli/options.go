// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"panchor/internal/baseline"
	"panchor/internal/config"
	"panchor/internal/output"
)

// Defaults mirror the original study configuration: a sieve bound 20-30x
// the pair count, a generous radius cap and a 100-attempt control limit.
const (
	DefaultSieveLimit      = 3_000_000
	DefaultPairs           = 100_000
	DefaultMaxRadius       = 20
	DefaultScanCap         = 2_000
	DefaultControlAttempts = 100
	DefaultInterval        = 100_000
	DefaultProgressEvery   = 100_000
)

// Options holds all recognized run options after flag/config resolution.
type Options struct {
	SieveLimit uint64
	Pairs      int
	StartIndex int // 0 = auto (MaxRadius+1)
	MaxRadius  int
	ScanCap    uint64

	Threads   int
	ChunkSize int

	Control         string
	ControlAttempts int
	Seed            int64

	Output        string
	Sort          bool
	Header        bool // true unless --no-header
	SummaryOnly   bool
	NoColor       bool
	Quiet         bool
	Verbose       bool
	ProgressEvery int
	Interval      int // decay interval width; 0 = off

	ConfigPath string

	noHeader bool
}

// NewOptions returns the built-in defaults.
func NewOptions() *Options {
	return &Options{
		SieveLimit:      DefaultSieveLimit,
		Pairs:           DefaultPairs,
		MaxRadius:       DefaultMaxRadius,
		ScanCap:         DefaultScanCap,
		Control:         "off",
		ControlAttempts: DefaultControlAttempts,
		Seed:            1,
		Output:          output.FormatText,
		Header:          true,
		ProgressEvery:   DefaultProgressEvery,
	}
}

// Register binds the shared run flags onto a command.
func (o *Options) Register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Uint64Var(&o.SieveLimit, "sieve-limit", o.SieveLimit, "sieve of Eratosthenes upper bound")
	fs.IntVar(&o.Pairs, "pairs", o.Pairs, "number of consecutive prime pairs to test")
	fs.IntVar(&o.StartIndex, "start-index", o.StartIndex, "first pair index (0 = auto: max-radius+1)")
	fs.IntVar(&o.MaxRadius, "max-radius", o.MaxRadius, "correction search radius cap")
	fs.Uint64Var(&o.ScanCap, "scan-cap", o.ScanCap, "max nearest-prime scan distance")
	fs.IntVar(&o.Threads, "threads", 0, "worker threads (0 = all CPUs)")
	fs.IntVar(&o.ChunkSize, "chunk-size", 0, "pairs per worker chunk (0 = auto)")
	fs.StringVar(&o.Control, "control", o.Control, "random baseline mode: off | even | mod6")
	fs.IntVar(&o.ControlAttempts, "control-attempts", o.ControlAttempts, "random attempts per exception")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "control RNG seed")
	fs.StringVar(&o.Output, "output", o.Output, "record format: text | json | jsonl")
	fs.BoolVar(&o.Sort, "sort", o.Sort, "sort exception records by pair index")
	fs.BoolVar(&o.noHeader, "no-header", false, "suppress header line in text/TSV")
	fs.BoolVar(&o.SummaryOnly, "summary-only", o.SummaryOnly, "suppress per-exception records")
	fs.BoolVar(&o.NoColor, "no-color", false, "disable color in the summary")
	fs.BoolVar(&o.Quiet, "quiet", false, "suppress progress logging")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "debug logging")
	fs.IntVar(&o.ProgressEvery, "progress-every", o.ProgressEvery, "log progress every N pairs (0 = off)")
	fs.StringVar(&o.ConfigPath, "config", "", "YAML config file")
}

// RegisterInterval adds the decay interval flag (decay command only).
func (o *Options) RegisterInterval(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.Interval, "interval", DefaultInterval, "decay analysis interval width in pairs")
}

// Resolve applies the config file under flags that were not set
// explicitly, then validates. Call from RunE after flag parsing.
func (o *Options) Resolve(cmd *cobra.Command) error {
	if o.ConfigPath != "" {
		f, err := config.Load(o.ConfigPath)
		if err != nil {
			return err
		}
		o.applyFile(cmd, f)
	}
	o.Header = !o.noHeader
	return o.Validate()
}

func (o *Options) applyFile(cmd *cobra.Command, f *config.File) {
	fs := cmd.Flags()
	set := func(name string) bool { return fs.Changed(name) }

	if f.SieveLimit != 0 && !set("sieve-limit") {
		o.SieveLimit = f.SieveLimit
	}
	if f.Pairs != 0 && !set("pairs") {
		o.Pairs = f.Pairs
	}
	if f.StartIndex != 0 && !set("start-index") {
		o.StartIndex = f.StartIndex
	}
	if f.MaxRadius != 0 && !set("max-radius") {
		o.MaxRadius = f.MaxRadius
	}
	if f.ScanCap != 0 && !set("scan-cap") {
		o.ScanCap = f.ScanCap
	}
	if f.Threads != 0 && !set("threads") {
		o.Threads = f.Threads
	}
	if f.ChunkSize != 0 && !set("chunk-size") {
		o.ChunkSize = f.ChunkSize
	}
	if f.Control != "" && !set("control") {
		o.Control = f.Control
	}
	if f.ControlAttempts != 0 && !set("control-attempts") {
		o.ControlAttempts = f.ControlAttempts
	}
	if f.Seed != 0 && !set("seed") {
		o.Seed = f.Seed
	}
	if f.Output != "" && !set("output") {
		o.Output = f.Output
	}
	if f.Interval != 0 && !set("interval") && cmd.Flags().Lookup("interval") != nil {
		o.Interval = f.Interval
	}
	if f.ProgressEvery != 0 && !set("progress-every") {
		o.ProgressEvery = f.ProgressEvery
	}
}

// Validate rejects inconsistent option combinations before any work.
func (o *Options) Validate() error {
	if o.Pairs <= 0 {
		return errors.New("--pairs must be positive")
	}
	if o.MaxRadius < 1 {
		return errors.New("--max-radius must be >= 1")
	}
	if o.StartIndex != 0 && o.StartIndex <= o.MaxRadius {
		return fmt.Errorf("--start-index (%d) must exceed --max-radius (%d)", o.StartIndex, o.MaxRadius)
	}
	if o.Threads < 0 {
		return errors.New("--threads must be >= 0")
	}
	if o.ChunkSize < 0 {
		return errors.New("--chunk-size must be >= 0")
	}
	if o.Interval < 0 {
		return errors.New("--interval must be >= 0")
	}
	if o.ProgressEvery < 0 {
		return errors.New("--progress-every must be >= 0")
	}
	switch o.Output {
	case output.FormatText, output.FormatJSON, output.FormatJSONL:
	default:
		return fmt.Errorf("invalid --output %q", o.Output)
	}
	if _, err := baseline.ParseMode(o.Control); err != nil {
		return err
	}
	if o.ControlAttempts <= 0 {
		return errors.New("--control-attempts must be positive")
	}
	return nil
}

// EffectiveStart returns the first pair index actually scanned.
func (o *Options) EffectiveStart() int {
	if o.StartIndex > 0 {
		return o.StartIndex
	}
	return o.MaxRadius + 1
}

// ControlMode returns the parsed control mode; Validate must have passed.
func (o *Options) ControlMode() baseline.Mode {
	m, _ := baseline.ParseMode(o.Control)
	return m
}
