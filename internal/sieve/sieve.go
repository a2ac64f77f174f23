// Package sieve generates primes with an odd-only sieve of Eratosthenes.
//
// The sieve is the single source of truth for primality within its bound;
// everything downstream (oracle, classifier, correction search) reads it
// through O(1) lookups or the ascending prime sequence.
package sieve

import (
	"fmt"
	"math"
)

// segmentOdds is the number of odd candidates marked per pass. Keeps the
// working set inside L2 for large bounds.
const segmentOdds = 1 << 18

// Sieve holds the composite bitset and the materialized prime sequence
// for all primes <= Limit. Immutable after New.
type Sieve struct {
	limit     uint64
	composite []uint64 // bit i set => 2i+1 is composite
	primes    []uint64 // ascending, no duplicates
}

// New sieves all primes in [2, limit]. limit must be at least 2.
func New(limit uint64) (*Sieve, error) {
	if limit < 2 {
		return nil, fmt.Errorf("sieve: limit %d is below 2", limit)
	}

	nOdds := (limit + 1) / 2 // count of odd numbers in [1, limit]
	s := &Sieve{
		limit:     limit,
		composite: make([]uint64, (nOdds+63)/64),
	}
	s.markBit(0) // 1 is not prime

	root := uint64(math.Sqrt(float64(limit)))
	for lo := uint64(0); lo < nOdds; lo += segmentOdds {
		hi := lo + segmentOdds
		if hi > nOdds {
			hi = nOdds
		}
		segMax := 2*hi - 1 // largest odd value covered by this segment
		for p := uint64(3); p <= root && p*p <= segMax; p += 2 {
			if s.bit((p - 1) / 2) {
				continue
			}
			// First odd multiple of p inside the segment, starting at p*p.
			start := p * p
			if segLow := 2*lo + 1; start < segLow {
				start = ((segLow + p - 1) / p) * p
				if start%2 == 0 {
					start += p
				}
			}
			for m := start; m <= segMax && m <= limit; m += 2 * p {
				s.markBit((m - 1) / 2)
			}
		}
	}

	// Materialize the ascending sequence.
	count := 1 // the prime 2
	for i := uint64(1); i < nOdds; i++ {
		if !s.bit(i) {
			count++
		}
	}
	s.primes = make([]uint64, 0, count)
	s.primes = append(s.primes, 2)
	for i := uint64(1); i < nOdds; i++ {
		if !s.bit(i) {
			s.primes = append(s.primes, 2*i+1)
		}
	}
	return s, nil
}

func (s *Sieve) markBit(i uint64) { s.composite[i/64] |= 1 << (i % 64) }
func (s *Sieve) bit(i uint64) bool {
	return s.composite[i/64]&(1<<(i%64)) != 0
}

// Limit returns the inclusive upper bound of sieve coverage.
func (s *Sieve) Limit() uint64 { return s.limit }

// Count returns the number of primes <= Limit.
func (s *Sieve) Count() int { return len(s.primes) }

// Primes returns the ascending prime sequence. Callers must treat the
// slice as read-only.
func (s *Sieve) Primes() []uint64 { return s.primes }

// Contains reports whether x is prime, valid only for x <= Limit.
func (s *Sieve) Contains(x uint64) bool {
	if x > s.limit {
		return false
	}
	if x == 2 {
		return true
	}
	if x < 2 || x%2 == 0 {
		return false
	}
	return !s.bit((x - 1) / 2)
}
