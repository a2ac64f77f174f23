// internal/output/records.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"panchor/internal/correction"
	"panchor/internal/pipeline"
	"panchor/pkg/api"
)

// SortRecords orders records by pair index for deterministic output.
func SortRecords(list []pipeline.Record) {
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
}

// ToAPIRecord converts a pipeline record to the stable wire schema (v1).
func ToAPIRecord(r pipeline.Record) api.RecordV1 {
	v := api.RecordV1{
		Index: r.Index, Pn: r.Pn, Pn1: r.Pn1,
		Anchor: r.Anchor, Q: r.Q, K: r.K,
		Status: r.Correction.State.String(),
	}
	if r.Correction.State == correction.Resolved {
		v.Radius = r.Correction.Radius
		v.Side = r.Correction.Side.String()
		v.NewAnchor = r.Correction.NewAnchor
		v.NewK = r.Correction.NewK
	}
	if r.HasControl {
		fixed := r.ControlFixed
		v.ControlFixed = &fixed
		v.ControlAttempts = r.ControlAttempts
	}
	return v
}

func writeRow(w io.Writer, r pipeline.Record) error {
	radius, side := "", ""
	newAnchor, newK := "", ""
	if r.Correction.State == correction.Resolved {
		radius = fmt.Sprintf("%d", r.Correction.Radius)
		side = r.Correction.Side.String()
		newAnchor = fmt.Sprintf("%d", r.Correction.NewAnchor)
		newK = fmt.Sprintf("%d", r.Correction.NewK)
	}
	_, err := fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
		r.Index, r.Pn, r.Pn1, r.Anchor, r.Q, r.K,
		r.Correction.State.String(), radius, side, newAnchor, newK)
	return err
}

// WriteText writes records as a tab-delimited table.
func WriteText(w io.Writer, list []pipeline.Record, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for _, r := range list {
		if err := writeRow(w, r); err != nil {
			return err
		}
	}
	return nil
}

// StreamText streams records from a channel as TSV rows. The channel is
// always drained: after the first write error the remaining records are
// discarded so producers never block on a dead sink, and the error is
// reported once at close.
func StreamText(w io.Writer, in <-chan pipeline.Record, header bool) error {
	var werr error
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			werr = err
		}
	}
	for r := range in {
		if werr != nil {
			continue // drain
		}
		if err := writeRow(w, r); err != nil {
			werr = err
		}
	}
	return werr
}

// WriteJSON writes a single pretty-indented JSON array of v1 records.
func WriteJSON(w io.Writer, list []pipeline.Record) error {
	out := make([]api.RecordV1, 0, len(list))
	for _, r := range list {
		out = append(out, ToAPIRecord(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
