package transcoder

import (
	"encoding/binary"
	"io"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

// UnitStreamReader reads UTF-16 code units serialized as two bytes each.
// Surrogates are passed through unchecked; pairing is validated by the
// consumer, typically an Encoder.
type UnitStreamReader struct {
	src   io.Reader
	order binary.ByteOrder
	buf   []byte

	// odd holds a byte whose partner has not arrived yet.
	odd      byte
	hasOdd   bool
	consumed int64

	// readErr is a source error deferred until the units read with it
	// have been returned.
	readErr error
}

var _ wasmstrings.UnitReader = (*UnitStreamReader)(nil)

// NewUnitStreamReader returns a reader decoding units in the given byte order.
func NewUnitStreamReader(src io.Reader, order binary.ByteOrder, opts DecoderOptions) *UnitStreamReader {
	bs := opts.BufferSize
	if bs < 0 {
		panic("transcoder: negative decoder BufferSize")
	}
	if bs == 0 {
		bs = DefaultDecodeBufferSize
	}
	if bs < 2 {
		bs = 2
	}
	return &UnitStreamReader{src: src, order: order, buf: make([]byte, bs)}
}

// Read decodes up to len(dst) units. An odd trailing byte at end of stream
// is a truncated-sequence error.
func (r *UnitStreamReader) Read(dst []uint16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if r.readErr != nil {
		err := r.readErr
		r.readErr = nil
		return 0, err
	}
	for empty := maxConsecutiveEmptyReads; empty > 0; {
		start := 0
		if r.hasOdd {
			r.buf[0] = r.odd
			start = 1
		}
		want := min(len(r.buf), 2*len(dst))
		n, err := r.src.Read(r.buf[start:want])
		r.consumed += int64(n)
		total := start + n
		units := total / 2
		for i := 0; i < units; i++ {
			dst[i] = r.order.Uint16(r.buf[2*i:])
		}
		r.hasOdd = total%2 == 1
		if r.hasOdd {
			r.odd = r.buf[total-1]
		}
		if err != nil && err != io.EOF {
			err = errors.Wrap(errors.PhaseRead, errors.KindIO, err, "source read failed")
			if units == 0 {
				return 0, err
			}
			r.readErr = err
		}
		if units > 0 {
			return units, nil
		}
		if err == io.EOF {
			if r.hasOdd {
				return 0, errors.New(errors.PhaseDecode, errors.KindTruncated).
					Offset(r.consumed-1).
					Value(1).
					Detail("odd byte count in utf-16 stream").
					Build()
			}
			return 0, io.EOF
		}
		if n == 0 {
			empty--
		}
	}
	return 0, io.ErrNoProgress
}

// UnitStreamWriter writes code units as two bytes each in a fixed byte order.
type UnitStreamWriter struct {
	byteSink
	order binary.ByteOrder
}

var _ wasmstrings.UnitWriter = (*UnitStreamWriter)(nil)

// NewUnitStreamWriter returns a writer encoding units in the given byte order.
func NewUnitStreamWriter(dst io.Writer, order binary.ByteOrder, opts EncoderOptions) *UnitStreamWriter {
	return &UnitStreamWriter{byteSink: newByteSink(dst, opts.bufferSize(2), opts.LeaveOpen), order: order}
}

// Write serializes src.
func (w *UnitStreamWriter) Write(src []uint16) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	i := 0
	for i < len(src) {
		if w.free() < 2 {
			if err := w.flushBuffer(); err != nil {
				return i, err
			}
		}
		chunk := min(len(src)-i, w.free()/2)
		for _, u := range src[i : i+chunk] {
			w.order.PutUint16(w.buf[w.n:], u)
			w.n += 2
		}
		i += chunk
	}
	return len(src), nil
}

// Flush writes buffered bytes and flushes the sink.
func (w *UnitStreamWriter) Flush() error {
	return w.flush()
}

// Close flushes and closes the sink unless LeaveOpen was set.
func (w *UnitStreamWriter) Close() error {
	if w.closed {
		return nil
	}
	return w.close(w.flush())
}
