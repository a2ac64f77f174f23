// Package correction resolves composite-exception anchors by searching
// neighbor anchors at expanding radii.
//
// The question asked at each neighbor is whether ITS distance to the
// original exception prime q is clean, not whether the neighbor is
// independently clean. At radius r the previous anchor S_{n-r} is tested
// before the next anchor S_{n+r}; the first success wins, so the radius
// returned is minimal.
package correction

import (
	"fmt"

	"panchor/internal/anchor"
)

// State is the terminal state of one correction search.
type State int

const (
	Resolved State = iota
	Unresolved
)

func (s State) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "unresolved"
}

// Side names which neighbor resolved an exception.
type Side int

const (
	SideNone Side = iota
	SidePrev
	SideNext
)

func (s Side) String() string {
	switch s {
	case SidePrev:
		return "prev"
	case SideNext:
		return "next"
	default:
		return ""
	}
}

// Result is the outcome of a correction search. Radius is meaningful only
// when State == Resolved; an Unresolved result is the falsifying outcome
// the whole run exists to detect and is never dropped.
type Result struct {
	State     State
	Radius    int
	Side      Side
	NewAnchor uint64
	NewK      uint64
}

// Searcher walks neighbor anchors of an exception. Safe for concurrent
// use; the prime sequence is shared read-only.
type Searcher struct {
	primes    []uint64
	cls       *anchor.Classifier
	maxRadius int
}

// NewSearcher builds a searcher over the ascending prime sequence.
// maxRadius bounds the search; exhausting it yields Unresolved.
func NewSearcher(primes []uint64, cls *anchor.Classifier, maxRadius int) *Searcher {
	if maxRadius <= 0 {
		maxRadius = 20
	}
	return &Searcher{primes: primes, cls: cls, maxRadius: maxRadius}
}

// MaxRadius returns the configured radius cap.
func (s *Searcher) MaxRadius() int { return s.maxRadius }

func (s *Searcher) anchorAt(i int) uint64 { return s.primes[i] + s.primes[i+1] }

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Resolve searches radii 1..MaxRadius around pair index n for a neighbor
// anchor whose distance to q is clean. The caller must guarantee
// n-MaxRadius >= 0 and n+MaxRadius+1 within the prime sequence; that is
// checked up front as a configuration error.
func (s *Searcher) Resolve(n int, q uint64) (Result, error) {
	if n-s.maxRadius < 0 || n+s.maxRadius+1 >= len(s.primes) {
		return Result{}, fmt.Errorf("correction: pair %d lacks ±%d neighbor coverage (have %d primes)",
			n, s.maxRadius, len(s.primes))
	}
	for r := 1; r <= s.maxRadius; r++ {
		for _, side := range [2]Side{SidePrev, SideNext} {
			idx := n - r
			if side == SideNext {
				idx = n + r
			}
			sa := s.anchorAt(idx)
			k := absDiff(sa, q)
			clean, err := s.cls.CleanK(k)
			if err != nil {
				return Result{}, fmt.Errorf("correction: pair %d radius %d: %w", n, r, err)
			}
			if clean {
				return Result{State: Resolved, Radius: r, Side: side, NewAnchor: sa, NewK: k}, nil
			}
		}
	}
	return Result{State: Unresolved}, nil
}
