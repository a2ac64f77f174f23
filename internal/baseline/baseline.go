// Package baseline implements the random-control comparison: for each
// composite exception, random magnitude-matched anchors are tried against
// the same exception prime to measure how much of the correction effect
// is structural rather than neighborhood density.
package baseline

import (
	"fmt"
	"math/rand"

	"panchor/internal/anchor"
)

// Mode selects the control sequence shape.
type Mode int

const (
	ModeOff Mode = iota
	ModeEven
	ModeMod6
)

func (m Mode) String() string {
	switch m {
	case ModeEven:
		return "even"
	case ModeMod6:
		return "mod6"
	default:
		return "off"
	}
}

// ParseMode maps a CLI/config token to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "off":
		return ModeOff, nil
	case "even":
		return ModeEven, nil
	case "mod6":
		return ModeMod6, nil
	}
	return ModeOff, fmt.Errorf("invalid control mode %q (off|even|mod6)", s)
}

// gapWindow is the half-width of the local window used to estimate the
// average prime gap around an exception.
const gapWindow = 10

// Outcome reports one control trial.
type Outcome struct {
	Fixed    bool
	Attempts int // attempts consumed (== cap when not fixed)
}

// Control draws magnitude-matched random anchors. State is read-only;
// determinism under parallel workers comes from seeding per pair index,
// so results do not depend on scheduling.
type Control struct {
	mode      Mode
	attempts  int
	seed      int64
	primes    []uint64
	cls       *anchor.Classifier
	radiusCap int
}

// New builds a control sampler. attempts <= 0 selects 100, matching the
// generous search limit used in the original study.
func New(mode Mode, attempts int, seed int64, primes []uint64, cls *anchor.Classifier, radiusCap int) *Control {
	if attempts <= 0 {
		attempts = 100
	}
	return &Control{mode: mode, attempts: attempts, seed: seed, primes: primes, cls: cls, radiusCap: radiusCap}
}

// Mode returns the configured control mode.
func (c *Control) Mode() Mode { return c.mode }

// neighborhood estimates how far the random draw may stray from the
// anchor: local average gap times the radius cap, floored at 500.
func (c *Control) neighborhood(n int) int64 {
	lo, hi := n-gapWindow, n+gapWindow
	if lo < 0 || hi >= len(c.primes) {
		return 500
	}
	avgGap := float64(c.primes[hi]-c.primes[lo]) / float64(2*gapWindow)
	r := int64(avgGap * float64(c.radiusCap))
	if r <= 0 {
		r = 500
	}
	return r
}

// snap aligns a raw candidate to the control sequence: down to the next
// multiple of 6, or down to even.
func (c *Control) snap(v uint64) uint64 {
	switch c.mode {
	case ModeMod6:
		return v - v%6
	case ModeEven:
		return v - v%2
	default:
		return v
	}
}

// Try runs up to the configured number of random attempts to find a
// control anchor whose distance to q is clean. n is the exception's pair
// index; the RNG is seeded from it so replays are exact.
func (c *Control) Try(n int, s, q uint64) (Outcome, error) {
	if c.mode == ModeOff {
		return Outcome{}, fmt.Errorf("baseline: control mode is off")
	}
	rng := rand.New(rand.NewSource(c.seed ^ int64(uint64(n)*0x9E3779B97F4A7C15)))
	radius := c.neighborhood(n)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		off := rng.Int63n(2*radius+1) - radius
		base := int64(s) + off
		if base < 12 {
			base = 12
		}
		cand := c.snap(uint64(base))

		k := cand - q
		if q > cand {
			k = q - cand
		}
		clean, err := c.cls.CleanK(k)
		if err != nil {
			return Outcome{}, fmt.Errorf("baseline: pair %d attempt %d: %w", n, attempt, err)
		}
		if clean {
			return Outcome{Fixed: true, Attempts: attempt}, nil
		}
	}
	return Outcome{Fixed: false, Attempts: c.attempts}, nil
}
