// Package oracle answers primality queries against a sieve, with a trial
// division fallback for values past the sieve bound.
//
// The fallback is sound up to Limit^2: every composite below that has a
// prime factor inside the sieve. Past Limit^2 a query cannot be answered
// truthfully and surfaces ErrOutOfRange instead of a guess.
package oracle

import (
	"errors"
	"fmt"

	"panchor/internal/sieve"
)

// ErrOutOfRange marks a primality query that exceeds what the configured
// sieve can answer. It is a configuration failure, never masked.
var ErrOutOfRange = errors.New("primality query exceeds sieve coverage")

// Oracle wraps a sieve with bounded trial division. Safe for concurrent
// use; all state is read-only after New.
type Oracle struct {
	s *sieve.Sieve
}

// New builds an oracle over s.
func New(s *sieve.Sieve) *Oracle { return &Oracle{s: s} }

// Limit returns the direct-lookup bound.
func (o *Oracle) Limit() uint64 { return o.s.Limit() }

// IsPrime reports whether x is prime. Lookup is O(1) within the sieve
// bound; beyond it, trial division over sieved primes is used while
// x <= Limit^2, and ErrOutOfRange is returned past that.
func (o *Oracle) IsPrime(x uint64) (bool, error) {
	if x <= o.s.Limit() {
		return o.s.Contains(x), nil
	}
	if x%2 == 0 {
		return false, nil
	}
	for _, p := range o.s.Primes() {
		if p*p > x {
			return true, nil
		}
		if x%p == 0 {
			return false, nil
		}
	}
	// All sieved primes exhausted without reaching sqrt(x).
	return false, fmt.Errorf("%w: %d is past trial-division reach of sieve limit %d", ErrOutOfRange, x, o.s.Limit())
}
