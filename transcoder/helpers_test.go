package transcoder

import (
	"errors"
	"io"
	"testing"

	wasmstrings "github.com/wippyai/wasm-strings"
)

// chunkReader returns at most size bytes per Read. With stall set, every
// other Read returns (0, nil).
type chunkReader struct {
	data  []byte
	size  int
	stall bool
	calls int
	flip  bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.calls++
	if r.stall {
		r.flip = !r.flip
		if r.flip {
			return 0, nil
		}
	}
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), r.size, len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// errAfterReader returns data and then err.
type errAfterReader struct {
	data []byte
	err  error
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// dataWithErrReader returns all of data together with err, then io.EOF.
type dataWithErrReader struct {
	data []byte
	err  error
}

func (r *dataWithErrReader) Read(p []byte) (int, error) {
	if r.data == nil {
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = nil
	return n, r.err
}

type stallingReader struct{}

func (stallingReader) Read(p []byte) (int, error) { return 0, nil }

// recordingSink records writes, flushes and closes.
type recordingSink struct {
	data    []byte
	writes  []int
	flushes int
	closes  int

	// limit makes Write accept at most limit bytes without an error.
	limit int
}

func (s *recordingSink) Write(p []byte) (int, error) {
	n := len(p)
	if s.limit > 0 && n > s.limit {
		n = s.limit
	}
	s.writes = append(s.writes, n)
	s.data = append(s.data, p[:n]...)
	return n, nil
}

func (s *recordingSink) Flush() error {
	s.flushes++
	return nil
}

func (s *recordingSink) Close() error {
	s.closes++
	return nil
}

var errBoom = errors.New("boom")

type failingSink struct{}

func (failingSink) Write(p []byte) (int, error) { return 0, errBoom }

// readAllUnits drains r using a destination of bufSize units.
func readAllUnits(t *testing.T, r wasmstrings.UnitReader, bufSize int) ([]uint16, error) {
	t.Helper()
	buf := make([]uint16, bufSize)
	var out []uint16
	for i := 0; i < 1<<20; i++ {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
	t.Fatal("reader made no progress")
	return nil, nil
}
