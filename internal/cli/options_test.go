package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	o.Register(cmd)
	return cmd
}

func resolve(t *testing.T, args ...string) (*Options, error) {
	t.Helper()
	o := NewOptions()
	cmd := newCmd(o)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return o, o.Resolve(cmd)
}

func TestDefaults(t *testing.T) {
	o, err := resolve(t)
	require.NoError(t, err)
	require.Equal(t, uint64(DefaultSieveLimit), o.SieveLimit)
	require.Equal(t, DefaultPairs, o.Pairs)
	require.Equal(t, DefaultMaxRadius, o.MaxRadius)
	require.True(t, o.Header)
	require.Equal(t, "off", o.Control)
	require.Equal(t, DefaultMaxRadius+1, o.EffectiveStart())
}

func TestNoHeader(t *testing.T) {
	o, err := resolve(t, "--no-header")
	require.NoError(t, err)
	require.False(t, o.Header)
}

func TestValidationErrors(t *testing.T) {
	cases := [][]string{
		{"--pairs", "0"},
		{"--pairs", "-5"},
		{"--max-radius", "0"},
		{"--start-index", "5", "--max-radius", "20"},
		{"--threads", "-1"},
		{"--chunk-size", "-1"},
		{"--output", "xml"},
		{"--control", "random"},
		{"--control-attempts", "0"},
		{"--progress-every", "-1"},
	}
	for _, args := range cases {
		if _, err := resolve(t, args...); err == nil {
			t.Fatalf("args %v: expected validation error", args)
		}
	}
}

func TestExplicitStartIndexWins(t *testing.T) {
	o, err := resolve(t, "--start-index", "100")
	require.NoError(t, err)
	require.Equal(t, 100, o.EffectiveStart())
}

func TestConfigFileUnderFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panchor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pairs: 5000\nseed: 7\ncontrol: even\n"), 0o644))

	// Flag wins over file for pairs; file fills seed and control.
	o, err := resolve(t, "--config", path, "--pairs", "9000")
	require.NoError(t, err)
	require.Equal(t, 9000, o.Pairs)
	require.Equal(t, int64(7), o.Seed)
	require.Equal(t, "even", o.Control)
}

func TestConfigFileInvalidValueStillValidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panchor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: xml\n"), 0o644))
	_, err := resolve(t, "--config", path)
	require.Error(t, err)
}
