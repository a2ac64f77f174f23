package sieve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// trialDivision is an independent ground truth for cross-checks.
func trialDivision(x uint64) bool {
	if x < 2 {
		return false
	}
	for d := uint64(2); d*d <= x; d++ {
		if x%d == 0 {
			return false
		}
	}
	return true
}

func TestNew_RejectsTinyLimit(t *testing.T) {
	for _, limit := range []uint64{0, 1} {
		if _, err := New(limit); err == nil {
			t.Fatalf("limit %d: expected error", limit)
		}
	}
}

func TestPrimes_FirstValues(t *testing.T) {
	s, err := New(100)
	require.NoError(t, err)

	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43,
		47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97}
	require.Equal(t, want, s.Primes())
	require.Equal(t, len(want), s.Count())
}

func TestContains_AgreesWithTrialDivision(t *testing.T) {
	const limit = 20000
	s, err := New(limit)
	require.NoError(t, err)

	for x := uint64(0); x <= limit; x++ {
		if got, want := s.Contains(x), trialDivision(x); got != want {
			t.Fatalf("Contains(%d)=%v, trial division says %v", x, got, want)
		}
	}
}

func TestContains_BeyondLimitIsFalse(t *testing.T) {
	s, err := New(50)
	require.NoError(t, err)
	if s.Contains(53) {
		t.Fatal("Contains must not claim primality beyond the limit")
	}
}

func TestPrimes_AscendingNoDuplicates(t *testing.T) {
	s, err := New(1_000_000)
	require.NoError(t, err)

	ps := s.Primes()
	for i := 1; i < len(ps); i++ {
		if ps[i] <= ps[i-1] {
			t.Fatalf("sequence not strictly ascending at %d: %d after %d", i, ps[i], ps[i-1])
		}
	}
	// pi(10^6) is a classical constant.
	require.Equal(t, 78498, s.Count())
}

func TestNew_SegmentBoundary(t *testing.T) {
	// Limit chosen past the first marking segment so boundary math is hit.
	const limit = 2*segmentOdds + 101
	s, err := New(limit)
	require.NoError(t, err)

	for x := uint64(limit - 200); x <= limit; x++ {
		if got, want := s.Contains(x), trialDivision(x); got != want {
			t.Fatalf("Contains(%d)=%v near segment boundary, want %v", x, got, want)
		}
	}
}
