package baseline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"panchor/internal/anchor"
	"panchor/internal/oracle"
	"panchor/internal/sieve"
)

func newControl(t *testing.T, mode Mode, attempts int, seed int64) *Control {
	t.Helper()
	s, err := sieve.New(200000)
	require.NoError(t, err)
	cls := anchor.NewClassifier(oracle.New(s), 0)
	return New(mode, attempts, seed, s.Primes(), cls, 20)
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeOff, true},
		{"off", ModeOff, true},
		{"even", ModeEven, true},
		{"mod6", ModeMod6, true},
		{"random", ModeOff, false},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if c.ok {
			require.NoError(t, err, c.in)
			require.Equal(t, c.want, got, c.in)
		} else if err == nil {
			t.Fatalf("ParseMode(%q): expected error", c.in)
		}
	}
}

func TestSnap(t *testing.T) {
	c6 := newControl(t, ModeMod6, 10, 1)
	require.Equal(t, uint64(528), c6.snap(532))
	require.Equal(t, uint64(528), c6.snap(533))
	require.Equal(t, uint64(534), c6.snap(534))

	ce := newControl(t, ModeEven, 10, 1)
	require.Equal(t, uint64(532), ce.snap(533))
	require.Equal(t, uint64(532), ce.snap(532))
}

func TestTry_DeterministicUnderSameSeed(t *testing.T) {
	a := newControl(t, ModeMod6, 50, 42)
	b := newControl(t, ModeMod6, 50, 42)

	oa, err := a.Try(500, 7127, 7109)
	require.NoError(t, err)
	ob, err := b.Try(500, 7127, 7109)
	require.NoError(t, err)
	require.Equal(t, oa, ob)
}

func TestTry_SeedMixingStableAtLargeIndex(t *testing.T) {
	// The per-pair Weyl mixing multiplies the index in uint64 space and
	// wraps; it must stay well defined and replayable for any index.
	a := newControl(t, ModeMod6, 50, 7)
	b := newControl(t, ModeMod6, 50, 7)
	for _, n := range []int{21, 1000, 15000} {
		q := a.primes[n] + 2
		oa, err := a.Try(n, a.primes[n]+a.primes[n+1], q)
		require.NoError(t, err)
		ob, err := b.Try(n, b.primes[n]+b.primes[n+1], q)
		require.NoError(t, err)
		require.Equal(t, oa, ob, "index %d", n)
	}
}

func TestTry_IndependentOfCallOrder(t *testing.T) {
	c := newControl(t, ModeMod6, 50, 42)
	first, err := c.Try(600, 9000, 8971)
	require.NoError(t, err)
	// Interleave another pair, then repeat: per-pair seeding means the
	// outcome cannot drift with scheduling.
	_, err = c.Try(601, 9100, 9109)
	require.NoError(t, err)
	again, err := c.Try(600, 9000, 8971)
	require.NoError(t, err)
	require.Equal(t, first, again)
}

func TestTry_OffModeIsAnError(t *testing.T) {
	c := newControl(t, ModeOff, 10, 1)
	if _, err := c.Try(500, 7127, 7109); err == nil {
		t.Fatal("expected error in off mode")
	}
}

func TestTry_AttemptsBounded(t *testing.T) {
	c := newControl(t, ModeMod6, 7, 99)
	out, err := c.Try(500, 7127, 7109)
	require.NoError(t, err)
	require.LessOrEqual(t, out.Attempts, 7)
	if !out.Fixed {
		require.Equal(t, 7, out.Attempts)
	}
}
