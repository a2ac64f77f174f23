// Package anchor classifies consecutive-prime-pair anchors by their
// distance to the nearest prime.
//
// For a pair (p_n, p_{n+1}) the anchor is S = p_n + p_{n+1}. The nearest
// prime q to S is found by scanning offsets d = 1, 2, 3, ... and checking
// S-d before S+d, so ties resolve to the lower candidate. The distance
// k = |S - q| is clean when k == 1 or k is prime; a composite k is an
// exception handed to the correction searcher.
package anchor

import (
	"errors"
	"fmt"

	"panchor/internal/oracle"
)

// Class tags a classification outcome.
type Class int

const (
	Clean Class = iota
	CompositeException
)

func (c Class) String() string {
	if c == Clean {
		return "clean"
	}
	return "composite"
}

// Pair is an ordered pair of consecutive primes, indexed by its position
// in the ascending prime sequence (Pn = primes[N]).
type Pair struct {
	N   int
	Pn  uint64
	Pn1 uint64
}

// Sum returns the anchor value for the pair.
func (p Pair) Sum() uint64 { return p.Pn + p.Pn1 }

// Outcome is the classification of one pair's anchor.
type Outcome struct {
	Pair   Pair
	Anchor uint64
	Q      uint64 // nearest prime to Anchor
	K      uint64 // |Anchor - Q|
	Class  Class
}

// ErrScanExhausted means no prime was found within the configured scan
// distance. With a sanely sized sieve this indicates misconfiguration,
// not a property of the numbers.
var ErrScanExhausted = errors.New("nearest-prime scan exhausted")

// Classifier performs nearest-prime scans against a shared oracle.
// Safe for concurrent use.
type Classifier struct {
	oc      *oracle.Oracle
	scanCap uint64 // max |offset| tried before giving up
}

// NewClassifier builds a classifier. scanCap <= 0 selects a default large
// enough for any realistic prime gap in 64-bit territory.
func NewClassifier(oc *oracle.Oracle, scanCap uint64) *Classifier {
	if scanCap == 0 {
		scanCap = 2000
	}
	return &Classifier{oc: oc, scanCap: scanCap}
}

// NearestPrime returns the prime q closest to s and the distance k.
// At equal distance the lower candidate wins.
func (c *Classifier) NearestPrime(s uint64) (q, k uint64, err error) {
	for d := uint64(1); d <= c.scanCap; d++ {
		if s > d {
			ok, err := c.oc.IsPrime(s - d)
			if err != nil {
				return 0, 0, err
			}
			if ok {
				return s - d, d, nil
			}
		}
		ok, err := c.oc.IsPrime(s + d)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return s + d, d, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: no prime within %d of %d", ErrScanExhausted, c.scanCap, s)
}

// CleanK reports whether a distance is clean: exactly 1, or prime.
func (c *Classifier) CleanK(k uint64) (bool, error) {
	if k == 1 {
		return true, nil
	}
	return c.oc.IsPrime(k)
}

// Classify computes the pair's anchor, nearest prime and classification.
// The same pair always yields the same outcome for the same sieve bound.
func (c *Classifier) Classify(p Pair) (Outcome, error) {
	s := p.Sum()
	q, k, err := c.NearestPrime(s)
	if err != nil {
		return Outcome{}, fmt.Errorf("pair %d (anchor %d): %w", p.N, s, err)
	}
	out := Outcome{Pair: p, Anchor: s, Q: q, K: k, Class: CompositeException}
	clean, err := c.CleanK(k)
	if err != nil {
		return Outcome{}, fmt.Errorf("pair %d (anchor %d): %w", p.N, s, err)
	}
	if clean {
		out.Class = Clean
	}
	return out, nil
}
