// Package jsonlutil provides a generic channel-fed JSONL writer goroutine.
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
)

// Start launches a writer goroutine that encodes each received value as
// one JSON line. The returned error channel yields exactly one value
// after the input channel is closed and drained. Errors matching ignore
// (e.g. broken pipes) are swallowed.
func Start[T any](out io.Writer, bufSize int, encode func(*json.Encoder, T) error, ignore func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	errCh := make(chan error, 1)
	go func() {
		bw := bufio.NewWriter(out)
		enc := json.NewEncoder(bw)
		var werr error
		for v := range in {
			if werr != nil {
				continue // drain
			}
			if err := encode(enc, v); err != nil {
				werr = err
			}
		}
		if werr == nil {
			werr = bw.Flush()
		}
		if werr != nil && ignore != nil && ignore(werr) {
			werr = nil
		}
		errCh <- werr
	}()
	return in, errCh
}
