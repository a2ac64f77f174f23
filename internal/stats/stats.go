// Package stats accumulates run statistics as a value object merged via
// an associative, commutative reduction. Each pipeline worker owns a
// private Run; partials are merged once at the end. There is no shared
// mutable state anywhere in the hot path.
package stats

// UnresolvedRecord carries the full detail of a falsifying exception:
// the pair, its anchor, the exception prime and the composite distance.
type UnresolvedRecord struct {
	Index  int
	Pn     uint64
	Pn1    uint64
	Anchor uint64
	Q      uint64
	K      uint64
}

// Interval holds per-interval correction decay counters.
type Interval struct {
	Exceptions int64
	R1         int64 // corrected at radius 1
	R2         int64 // corrected at radius 2
}

// Run is the aggregate over any subset of pairs.
type Run struct {
	Pairs      int64
	Exceptions int64
	RadiusHist map[int]int64
	MaxRadius  int
	Unresolved []UnresolvedRecord

	// Mod-6 classifier bins: anchor%6 -> composite k -> count.
	Mod6 map[int]map[uint64]int64

	// Decay analysis: interval end index -> counters. Populated only when
	// an interval width is configured.
	Intervals map[int]Interval

	// Random-control counters.
	ControlTrials      int64
	ControlFixes       int64
	ControlAttempts    int64
	ControlFailures    int64
	ControlMaxAttempts int
}

// NewRun returns an empty accumulator.
func NewRun() *Run {
	return &Run{
		RadiusHist: make(map[int]int64),
		Mod6:       make(map[int]map[uint64]int64),
		Intervals:  make(map[int]Interval),
	}
}

// AddPair counts one processed pair.
func (r *Run) AddPair() { r.Pairs++ }

// AddException records a composite exception with anchor s and distance k.
func (r *Run) AddException(s, k uint64) {
	r.Exceptions++
	bin := int(s % 6)
	if r.Mod6[bin] == nil {
		r.Mod6[bin] = make(map[uint64]int64)
	}
	r.Mod6[bin][k]++
}

// AddResolved records a successful correction at the given radius.
func (r *Run) AddResolved(radius int) {
	r.RadiusHist[radius]++
	if radius > r.MaxRadius {
		r.MaxRadius = radius
	}
}

// AddUnresolved records a falsifying exception in full detail.
func (r *Run) AddUnresolved(rec UnresolvedRecord) {
	r.Unresolved = append(r.Unresolved, rec)
}

// AddIntervalException attributes an exception to a decay interval.
func (r *Run) AddIntervalException(intervalEnd int) {
	iv := r.Intervals[intervalEnd]
	iv.Exceptions++
	r.Intervals[intervalEnd] = iv
}

// AddIntervalResolved attributes a radius-1 or radius-2 correction to a
// decay interval; larger radii count only toward the histogram.
func (r *Run) AddIntervalResolved(intervalEnd, radius int) {
	iv := r.Intervals[intervalEnd]
	switch radius {
	case 1:
		iv.R1++
	case 2:
		iv.R2++
	}
	r.Intervals[intervalEnd] = iv
}

// AddControl records one control trial outcome.
func (r *Run) AddControl(fixed bool, attempts int) {
	r.ControlTrials++
	r.ControlAttempts += int64(attempts)
	if fixed {
		r.ControlFixes++
		if attempts > r.ControlMaxAttempts {
			r.ControlMaxAttempts = attempts
		}
	} else {
		r.ControlFailures++
	}
}

// Merge folds o into r. Merge is commutative and associative up to the
// ordering of Unresolved, which callers sort before reporting.
func (r *Run) Merge(o *Run) {
	r.Pairs += o.Pairs
	r.Exceptions += o.Exceptions
	for radius, n := range o.RadiusHist {
		r.RadiusHist[radius] += n
	}
	if o.MaxRadius > r.MaxRadius {
		r.MaxRadius = o.MaxRadius
	}
	r.Unresolved = append(r.Unresolved, o.Unresolved...)
	for bin, ks := range o.Mod6 {
		if r.Mod6[bin] == nil {
			r.Mod6[bin] = make(map[uint64]int64)
		}
		for k, n := range ks {
			r.Mod6[bin][k] += n
		}
	}
	for end, iv := range o.Intervals {
		cur := r.Intervals[end]
		cur.Exceptions += iv.Exceptions
		cur.R1 += iv.R1
		cur.R2 += iv.R2
		r.Intervals[end] = cur
	}
	r.ControlTrials += o.ControlTrials
	r.ControlFixes += o.ControlFixes
	r.ControlAttempts += o.ControlAttempts
	r.ControlFailures += o.ControlFailures
	if o.ControlMaxAttempts > r.ControlMaxAttempts {
		r.ControlMaxAttempts = o.ControlMaxAttempts
	}
}

// CleanPercent is the share of pairs whose anchors classified clean.
func (r *Run) CleanPercent() float64 {
	if r.Pairs == 0 {
		return 0
	}
	return 100 * float64(r.Pairs-r.Exceptions) / float64(r.Pairs)
}

// ResolvedAtMost returns corrections with radius <= max.
func (r *Run) ResolvedAtMost(max int) int64 {
	var n int64
	for radius, c := range r.RadiusHist {
		if radius <= max {
			n += c
		}
	}
	return n
}

// FixRateAtMost is the share of exceptions corrected within radius max.
func (r *Run) FixRateAtMost(max int) float64 {
	if r.Exceptions == 0 {
		return 0
	}
	return 100 * float64(r.ResolvedAtMost(max)) / float64(r.Exceptions)
}

// ControlFixRate is the share of control trials that found a fix.
func (r *Run) ControlFixRate() float64 {
	if r.ControlTrials == 0 {
		return 0
	}
	return 100 * float64(r.ControlFixes) / float64(r.ControlTrials)
}

// BiasAdvantage is the absolute percentage-point advantage of the anchor
// sequence's r<=2 fix rate over the random control fix rate.
func (r *Run) BiasAdvantage() float64 {
	return r.FixRateAtMost(2) - r.ControlFixRate()
}
