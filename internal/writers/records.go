// Package writers turns exception records into serialized outputs.
//
// Writers own all presentation knowledge (TSV, JSON, JSONL); the
// pipeline stays orchestration-only. Each writer runs on its own
// goroutine fed by a channel and reports completion on an error channel.
package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"panchor/internal/jsonlutil"
	"panchor/internal/output"
	"panchor/internal/pipeline"
)

// StartRecordWriter starts a writer goroutine for the given format.
// Sorting buffers all records; without it, text and JSONL stream as
// records arrive. The JSON array format always buffers.
func StartRecordWriter(out io.Writer, format string, sortRecs, header bool, bufSize int) (chan<- pipeline.Record, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}

	switch format {
	case output.FormatJSONL:
		if !sortRecs {
			return jsonlutil.Start(out, bufSize,
				func(enc *json.Encoder, r pipeline.Record) error {
					return enc.Encode(output.ToAPIRecord(r))
				}, IsBrokenPipe)
		}
		return startBuffered(out, bufSize, func(w io.Writer, list []pipeline.Record) error {
			output.SortRecords(list)
			enc := json.NewEncoder(w)
			for _, r := range list {
				if err := enc.Encode(output.ToAPIRecord(r)); err != nil {
					return err
				}
			}
			return nil
		})

	case output.FormatJSON:
		return startBuffered(out, bufSize, func(w io.Writer, list []pipeline.Record) error {
			if sortRecs {
				output.SortRecords(list)
			}
			return output.WriteJSON(w, list)
		})

	case output.FormatText:
		if !sortRecs {
			in := make(chan pipeline.Record, bufSize)
			errCh := make(chan error, 1)
			go func() {
				err := output.StreamText(out, in, header)
				if IsBrokenPipe(err) {
					err = nil
				}
				errCh <- err
			}()
			return in, errCh
		}
		return startBuffered(out, bufSize, func(w io.Writer, list []pipeline.Record) error {
			output.SortRecords(list)
			return output.WriteText(w, list, header)
		})

	default:
		in := make(chan pipeline.Record, bufSize)
		errCh := make(chan error, 1)
		go func() {
			for range in {
			}
			errCh <- fmt.Errorf("writers: unknown format %q", format)
		}()
		return in, errCh
	}
}

func startBuffered(out io.Writer, bufSize int, write func(io.Writer, []pipeline.Record) error) (chan<- pipeline.Record, <-chan error) {
	in := make(chan pipeline.Record, bufSize)
	errCh := make(chan error, 1)
	go func() {
		list := make([]pipeline.Record, 0, 128)
		for r := range in {
			list = append(list, r)
		}
		err := write(out, list)
		if IsBrokenPipe(err) {
			err = nil
		}
		errCh <- err
	}()
	return in, errCh
}
