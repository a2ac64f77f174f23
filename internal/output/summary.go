// internal/output/summary.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"panchor/internal/baseline"
	"panchor/internal/stats"
	"panchor/pkg/api"
)

// Verdict values for the aggregate report.
const (
	VerdictVerified   = "verified"   // all exceptions corrected, no control
	VerdictFalsified  = "falsified"  // unresolved exception exists
	VerdictStructural = "structural" // corrected everywhere, random control has holes
	VerdictArtifact   = "artifact"   // random control also corrects everything
)

// Verdict derives the run's terminal verdict. An unresolved exception
// dominates everything else.
func Verdict(run *stats.Run, controlMode baseline.Mode) string {
	if len(run.Unresolved) > 0 {
		return VerdictFalsified
	}
	if controlMode == baseline.ModeOff {
		return VerdictVerified
	}
	if run.ControlFailures > 0 {
		return VerdictStructural
	}
	return VerdictArtifact
}

// ToAPISummary converts merged statistics to the stable wire schema.
func ToAPISummary(run *stats.Run, sieveLimit uint64, startIndex int, controlMode baseline.Mode) api.SummaryV1 {
	sum := api.SummaryV1{
		SieveLimit:   sieveLimit,
		StartIndex:   startIndex,
		Pairs:        run.Pairs,
		Exceptions:   run.Exceptions,
		CleanPercent: run.CleanPercent(),
		MaxRadius:    run.MaxRadius,
		Verdict:      Verdict(run, controlMode),
	}

	radii := make([]int, 0, len(run.RadiusHist))
	for r := range run.RadiusHist {
		radii = append(radii, r)
	}
	sort.Ints(radii)
	for _, r := range radii {
		sum.RadiusHist = append(sum.RadiusHist, api.RadiusCountV1{Radius: r, Count: run.RadiusHist[r]})
	}

	for _, u := range run.Unresolved {
		sum.Unresolved = append(sum.Unresolved, api.UnresolvedV1{
			Index: u.Index, Pn: u.Pn, Pn1: u.Pn1, Anchor: u.Anchor, Q: u.Q, K: u.K,
		})
	}
	sort.Slice(sum.Unresolved, func(i, j int) bool { return sum.Unresolved[i].Index < sum.Unresolved[j].Index })

	if controlMode != baseline.ModeOff {
		sum.Control = &api.ControlV1{
			Mode:        controlMode.String(),
			Trials:      run.ControlTrials,
			Fixes:       run.ControlFixes,
			Failures:    run.ControlFailures,
			MaxAttempts: run.ControlMaxAttempts,
			FixRate:     run.ControlFixRate(),
			Advantage:   run.BiasAdvantage(),
		}
	}

	if len(run.Intervals) > 0 {
		ends := make([]int, 0, len(run.Intervals))
		for end := range run.Intervals {
			ends = append(ends, end)
		}
		sort.Ints(ends)
		for _, end := range ends {
			iv := run.Intervals[end]
			row := api.IntervalV1{End: end, Exceptions: iv.Exceptions}
			if iv.Exceptions > 0 {
				row.R1Percent = 100 * float64(iv.R1) / float64(iv.Exceptions)
				row.R2Percent = 100 * float64(iv.R1+iv.R2) / float64(iv.Exceptions)
			}
			sum.Intervals = append(sum.Intervals, row)
		}
	}

	if len(run.Mod6) > 0 {
		bins := make([]int, 0, len(run.Mod6))
		for b := range run.Mod6 {
			bins = append(bins, b)
		}
		sort.Ints(bins)
		for _, b := range bins {
			var total int64
			ks := make([]uint64, 0, len(run.Mod6[b]))
			for k, n := range run.Mod6[b] {
				total += n
				ks = append(ks, k)
			}
			sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
			sum.Mod6 = append(sum.Mod6, api.Mod6BinV1{
				Bin: b, Total: total, KValue: ks,
				Violations: mod6Violations(b, ks),
			})
		}
	}
	return sum
}

// mod6Violations returns the k-values breaking the bin's law: anchors
// with S%6 == 0 never produce k divisible by 3, anchors with S%6 == 2
// or 4 produce only k divisible by 3.
func mod6Violations(bin int, ks []uint64) []uint64 {
	var out []uint64
	for _, k := range ks {
		switch bin {
		case 0:
			if k%3 == 0 {
				out = append(out, k)
			}
		case 2, 4:
			if k%3 != 0 {
				out = append(out, k)
			}
		}
	}
	return out
}

// WriteJSONSummary writes the summary as pretty-indented JSON.
func WriteJSONSummary(w io.Writer, sum api.SummaryV1) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

// errWriter absorbs subsequent writes after the first failure so the
// report body can be emitted without per-line error plumbing.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// RenderSummary writes the human-readable report and returns the first
// write error. Verdict lines are emphasized with color when enabled
// (writers to JSON destinations and non-TTYs pass enabled=false).
func RenderSummary(out io.Writer, sum api.SummaryV1, enabled bool) error {
	w := &errWriter{w: out}
	green := color.New(color.FgHiGreen, color.Bold)
	red := color.New(color.FgHiRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	if !enabled {
		for _, c := range []*color.Color{green, red, yellow} {
			c.DisableColor()
		}
	}

	fmt.Fprintln(w, "==================== PRIME ANCHOR REPORT ====================")
	fmt.Fprintf(w, "Sieve limit:     %d\n", sum.SieveLimit)
	fmt.Fprintf(w, "Pairs tested:    %d (from index %d)\n", sum.Pairs, sum.StartIndex)
	fmt.Fprintf(w, "Exceptions:      %d (%.4f%% clean)\n", sum.Exceptions, sum.CleanPercent)
	fmt.Fprintf(w, "Max radius:      %d\n", sum.MaxRadius)

	if len(sum.RadiusHist) > 0 {
		fmt.Fprintln(w, "Radius histogram:")
		for _, rc := range sum.RadiusHist {
			pct := 0.0
			if sum.Exceptions > 0 {
				pct = 100 * float64(rc.Count) / float64(sum.Exceptions)
			}
			fmt.Fprintf(w, "  r=%-3d %10d  %6.2f%%\n", rc.Radius, rc.Count, pct)
		}
	}

	if sum.Control != nil {
		c := sum.Control
		fmt.Fprintf(w, "Control (%s):    %d trials, %d fixes (%.2f%%), %d failures, c_max=%d\n",
			c.Mode, c.Trials, c.Fixes, c.FixRate, c.Failures, c.MaxAttempts)
		fmt.Fprintf(w, "Advantage:       %+.2f%% (anchor r<=2 rate vs control)\n", c.Advantage)
	}

	if len(sum.Intervals) > 0 {
		fmt.Fprintln(w, "Decay intervals:")
		fmt.Fprintf(w, "  %-12s %12s %12s %12s\n", "end", "exceptions", "r=1 %", "r<=2 %")
		for _, iv := range sum.Intervals {
			fmt.Fprintf(w, "  %-12d %12d %11.2f%% %11.2f%%\n", iv.End, iv.Exceptions, iv.R1Percent, iv.R2Percent)
		}
	}

	if len(sum.Mod6) > 0 {
		fmt.Fprintln(w, "Mod-6 bins:")
		holds := true
		for _, b := range sum.Mod6 {
			sample := b.KValue
			if len(sample) > 20 {
				sample = sample[:20]
			}
			fmt.Fprintf(w, "  S%%6==%d  %d failures, unique k: %v\n", b.Bin, b.Total, sample)
			if len(b.Violations) > 0 {
				holds = false
				red.Fprintf(w, "    [ HYPOTHESIS FAILED ] violating k: %v\n", b.Violations)
			} else if b.Bin == 0 {
				fmt.Fprintln(w, "    verified: no k divisible by 3")
			} else {
				fmt.Fprintln(w, "    verified: all k divisible by 3")
			}
		}
		if holds {
			green.Fprintln(w, "[ MOD-6 LAW HOLDS ] bin 0 only k%3!=0; bins 2 and 4 only k%3==0")
		} else {
			red.Fprintln(w, "[ MOD-6 LAW BROKEN ] see violating bins above")
		}
	}

	switch sum.Verdict {
	case VerdictFalsified:
		red.Fprintln(w, "[ FALSIFIED ] uncorrectable exception(s) found:")
		for _, u := range sum.Unresolved {
			red.Fprintf(w, "  pair %d: (%d, %d) anchor=%d q=%d k=%d\n",
				u.Index, u.Pn, u.Pn1, u.Anchor, u.Q, u.K)
		}
	case VerdictStructural:
		green.Fprintln(w, "[ STRUCTURAL ] every exception corrected; random control has holes")
	case VerdictArtifact:
		yellow.Fprintln(w, "[ ARTIFACT ] random control also corrected every exception")
	default:
		green.Fprintln(w, "[ VERIFIED ] every exception corrected within the radius cap")
	}
	return w.err
}
