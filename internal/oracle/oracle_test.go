package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"panchor/internal/sieve"
)

func newOracle(t *testing.T, limit uint64) *Oracle {
	t.Helper()
	s, err := sieve.New(limit)
	require.NoError(t, err)
	return New(s)
}

func TestIsPrime_WithinSieve(t *testing.T) {
	o := newOracle(t, 1000)
	cases := []struct {
		x    uint64
		want bool
	}{
		{2, true}, {3, true}, {4, false}, {997, true}, {999, false}, {1, false}, {0, false},
	}
	for _, c := range cases {
		got, err := o.IsPrime(c.x)
		require.NoError(t, err)
		if got != c.want {
			t.Fatalf("IsPrime(%d)=%v want %v", c.x, got, c.want)
		}
	}
}

func TestIsPrime_FallbackPastLimit(t *testing.T) {
	o := newOracle(t, 100)

	// 101 and 4999 are prime, both past the sieve bound but under 100^2.
	for _, x := range []uint64{101, 4999} {
		got, err := o.IsPrime(x)
		require.NoError(t, err)
		require.True(t, got, "IsPrime(%d)", x)
	}
	for _, x := range []uint64{1001, 4997} { // 7*11*13, 19*263
		got, err := o.IsPrime(x)
		require.NoError(t, err)
		require.False(t, got, "IsPrime(%d)", x)
	}
}

func TestIsPrime_OutOfRangeSurfaces(t *testing.T) {
	o := newOracle(t, 100)
	// 10007 is prime and beyond 100^2; the oracle must refuse, not guess.
	_, err := o.IsPrime(10007)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestIsPrime_EvenPastLimitIsCheap(t *testing.T) {
	o := newOracle(t, 100)
	got, err := o.IsPrime(1 << 40) // even, way past coverage
	require.NoError(t, err)
	require.False(t, got)
}
