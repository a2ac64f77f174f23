// internal/app/commands.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"panchor/internal/cli"
	"panchor/internal/version"
)

// Execute assembles the command tree, runs it against argv, and returns
// a process exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	code := ExitOK

	root := &cobra.Command{
		Use:     "panchor",
		Short:   "panchor - prime anchor conjecture verifier",
		Version: version.String(),
		Long: `panchor tests the Prime Anchor System conjecture: for each pair of
consecutive primes the anchor S = p_n + p_n+1 is classified by its
distance k to the nearest prime (clean when k is 1 or prime), and every
composite exception is checked against the correction law by searching
neighbor anchors at expanding radii.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(verifyCmd(ctx, &code, stdout, stderr))
	root.AddCommand(decayCmd(ctx, &code, stdout, stderr))
	root.AddCommand(mod6Cmd(ctx, &code, stdout, stderr))
	root.AddCommand(sieveCmd(&code, stdout, stderr))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	return code
}

func verifyCmd(ctx context.Context, code *int, stdout, stderr io.Writer) *cobra.Command {
	opts := cli.NewOptions()
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Classify anchors and verify the correction law",
		Long: `Scan consecutive prime pairs, classify each anchor's distance to the
nearest prime, and resolve every composite exception through the radius
search. Exit code 1 flags a falsifying (uncorrectable) exception.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Resolve(cmd); err != nil {
				*code = ExitUsage
				return err
			}
			*code = Run(ctx, KindVerify, opts, stdout, stderr)
			return nil
		},
	}
	opts.Register(cmd)
	return cmd
}

func decayCmd(ctx context.Context, code *int, stdout, stderr io.Writer) *cobra.Command {
	opts := cli.NewOptions()
	opts.SummaryOnly = true
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Correction decay analysis over pair intervals",
		Long: `Run the verification scan and report, per interval of pairs, the share
of exceptions corrected at radius 1 and radius <= 2.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Resolve(cmd); err != nil {
				*code = ExitUsage
				return err
			}
			*code = Run(ctx, KindDecay, opts, stdout, stderr)
			return nil
		},
	}
	opts.Register(cmd)
	opts.RegisterInterval(cmd)
	return cmd
}

func mod6Cmd(ctx context.Context, code *int, stdout, stderr io.Writer) *cobra.Command {
	opts := cli.NewOptions()
	opts.SummaryOnly = true
	cmd := &cobra.Command{
		Use:   "mod6",
		Short: "Bin composite exceptions by anchor mod 6",
		Long: `Run the verification scan and bin every composite exception by the
anchor's residue mod 6, reporting the unique k-values per bin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Resolve(cmd); err != nil {
				*code = ExitUsage
				return err
			}
			*code = Run(ctx, KindMod6, opts, stdout, stderr)
			return nil
		},
	}
	opts.Register(cmd)
	return cmd
}

func sieveCmd(code *int, stdout, stderr io.Writer) *cobra.Command {
	opts := cli.NewOptions()
	cmd := &cobra.Command{
		Use:   "sieve",
		Short: "Emit the prime sequence, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = RunSieve(opts, stdout, stderr)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.Uint64Var(&opts.SieveLimit, "sieve-limit", opts.SieveLimit, "sieve of Eratosthenes upper bound")
	fs.BoolVar(&opts.Quiet, "quiet", false, "suppress timing log")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	return cmd
}
