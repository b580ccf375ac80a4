package transcoder

import (
	"io"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

// Latin1Decoder maps every source byte to the code unit of equal value.
type Latin1Decoder struct {
	src io.Reader
	buf []byte

	// readErr is a source error deferred until the units read with it
	// have been returned.
	readErr error
}

var _ wasmstrings.UnitReader = (*Latin1Decoder)(nil)

// NewLatin1Decoder returns a Latin1Decoder reading from src.
func NewLatin1Decoder(src io.Reader, opts DecoderOptions) *Latin1Decoder {
	bs := opts.BufferSize
	if bs < 0 {
		panic("transcoder: negative decoder BufferSize")
	}
	if bs == 0 {
		bs = DefaultDecodeBufferSize
	}
	return &Latin1Decoder{src: src, buf: make([]byte, bs)}
}

// Read decodes up to len(dst) units.
func (d *Latin1Decoder) Read(dst []uint16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if d.readErr != nil {
		err := d.readErr
		d.readErr = nil
		return 0, err
	}
	want := min(len(dst), len(d.buf))
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := d.src.Read(d.buf[:want])
		for j, b := range d.buf[:n] {
			dst[j] = uint16(b)
		}
		if err != nil && err != io.EOF {
			err = errors.Wrap(errors.PhaseRead, errors.KindIO, err, "source read failed")
			if n == 0 {
				return 0, err
			}
			d.readErr = err
		}
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			return 0, io.EOF
		}
	}
	return 0, io.ErrNoProgress
}

// Latin1Encoder writes code units up to 0xFF as single bytes.
type Latin1Encoder struct {
	byteSink
	written int64
}

var _ wasmstrings.UnitWriter = (*Latin1Encoder)(nil)

// NewLatin1Encoder returns a Latin1Encoder writing to dst.
func NewLatin1Encoder(dst io.Writer, opts EncoderOptions) *Latin1Encoder {
	return &Latin1Encoder{byteSink: newByteSink(dst, opts.bufferSize(1), opts.LeaveOpen)}
}

// Write encodes src. Units above 0xFF fail the whole call.
func (e *Latin1Encoder) Write(src []uint16) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	for i, u := range src {
		if u > latin1Max {
			e.err = errors.Unrepresentable(e.written+int64(i), u, "latin1")
			return 0, e.err
		}
	}

	i := 0
	for i < len(src) {
		if e.free() == 0 {
			if err := e.flushBuffer(); err != nil {
				e.written += int64(i)
				return i, err
			}
		}
		chunk := min(len(src)-i, e.free())
		for j, u := range src[i : i+chunk] {
			e.buf[e.n+j] = byte(u)
		}
		e.n += chunk
		i += chunk
	}
	e.written += int64(len(src))
	return len(src), nil
}

// Flush writes buffered bytes and flushes the sink.
func (e *Latin1Encoder) Flush() error {
	return e.flush()
}

// Close flushes and closes the sink unless LeaveOpen was set.
func (e *Latin1Encoder) Close() error {
	if e.closed {
		return nil
	}
	return e.close(e.flush())
}
