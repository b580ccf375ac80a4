package transcoder

import (
	"io"

	"go.uber.org/zap"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

const (
	// DefaultEncodeBufferSize is the size of the internal output buffer.
	DefaultEncodeBufferSize = 8192

	// DefaultFlushThreshold is the free space below which the buffer is
	// flushed before encoding the next chunk.
	DefaultFlushThreshold = 256

	// maxBytesPerUnit is the worst case expansion of one code unit: a trail
	// surrogate completing a pair emits all four bytes.
	maxBytesPerUnit = 4

	// minEncodeBufferSize is the smallest buffer the Encoder runs with.
	minEncodeBufferSize = 2 * maxBytesPerUnit
)

// EncoderOptions configures an Encoder. The zero value selects the defaults.
type EncoderOptions struct {
	// BufferSize is the size of the internal output buffer.
	//
	// Default is DefaultEncodeBufferSize. The Encoder raises smaller
	// values to 8 bytes.
	BufferSize int

	// FlushThreshold must be at least 4 and smaller than BufferSize. Only the
	// UTF-8 Encoder uses it.
	//
	// Default is DefaultFlushThreshold, clamped to BufferSize/2.
	FlushThreshold int

	// LeaveOpen keeps the sink open when the writer is closed, so several
	// writers can share one sink.
	LeaveOpen bool
}

// bufferSize applies the default buffer size and raises it to at least
// floor bytes.
func (o EncoderOptions) bufferSize(floor int) int {
	bs := o.BufferSize
	if bs < 0 {
		panic("transcoder: negative encoder BufferSize")
	}
	if bs == 0 {
		bs = DefaultEncodeBufferSize
	}
	return max(bs, floor)
}

// sizes applies defaults and validates the options of the UTF-8 Encoder.
func (o EncoderOptions) sizes() (bufSize, threshold int) {
	bufSize = o.bufferSize(minEncodeBufferSize)
	threshold = o.FlushThreshold
	if threshold == 0 {
		threshold = min(DefaultFlushThreshold, bufSize/2)
	}
	if threshold < maxBytesPerUnit || threshold >= bufSize {
		panic("transcoder: FlushThreshold must be in [4, BufferSize)")
	}
	return bufSize, threshold
}

// Encoder converts UTF-16 code units into UTF-8 and writes them to a sink.
//
// A lead surrogate at the end of one Write is held until the next Write
// supplies its trail. Unpaired surrogates are fatal for the Encoder.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	byteSink
	threshold int

	// written counts code units accepted so far.
	written int64

	hasLead bool
	lead    uint16
}

var _ wasmstrings.UnitWriter = (*Encoder)(nil)

// NewEncoder returns an Encoder writing UTF-8 to dst.
func NewEncoder(dst io.Writer, opts EncoderOptions) *Encoder {
	bs, th := opts.sizes()
	return &Encoder{
		byteSink:  newByteSink(dst, bs, opts.LeaveOpen),
		threshold: th,
	}
}

// Reset discards buffered output and state and switches to writing to dst.
func (e *Encoder) Reset(dst io.Writer) {
	e.reset(dst)
	e.written = 0
	e.hasLead = false
	e.lead = 0
}

// Buffered returns the number of bytes waiting to be flushed.
func (e *Encoder) Buffered() int {
	return e.n
}

// Write encodes src. It returns len(src) on success. When src contains an
// unpaired surrogate nothing from src is emitted and the Encoder is
// unusable.
func (e *Encoder) Write(src []uint16) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	if err := e.validate(src); err != nil {
		e.err = err
		Logger().Debug("unpaired surrogate", zap.Error(err))
		return 0, err
	}

	i := 0
	for i < len(src) {
		if e.free() < e.threshold {
			if err := e.flushBuffer(); err != nil {
				e.written += int64(i)
				return i, err
			}
		}
		chunk := min(len(src)-i, e.free()/maxBytesPerUnit)
		e.encodeChunk(src[i : i+chunk])
		i += chunk
	}
	e.written += int64(len(src))
	return len(src), nil
}

// validate checks surrogate pairing across src, starting from the pending
// lead state.
func (e *Encoder) validate(src []uint16) error {
	hasLead := e.hasLead
	for i, u := range src {
		off := e.written + int64(i)
		switch {
		case hasLead:
			if !isTrail(u) {
				return errors.InvalidSurrogate(off, u, "lead surrogate not followed by trail")
			}
			hasLead = false
		case isLead(u):
			hasLead = true
		case isTrail(u):
			return errors.InvalidSurrogate(off, u, "trail surrogate without lead")
		}
	}
	return nil
}

// encodeChunk encodes pre-validated units. The caller guarantees room for
// maxBytesPerUnit bytes per unit.
func (e *Encoder) encodeChunk(src []uint16) {
	buf, n := e.buf, e.n
	for _, u := range src {
		switch {
		case e.hasLead:
			cp := joinSurrogates(e.lead, u)
			e.hasLead = false
			buf[n] = byte(0xF0 | cp>>18)
			buf[n+1] = byte(0x80 | (cp>>12)&0x3F)
			buf[n+2] = byte(0x80 | (cp>>6)&0x3F)
			buf[n+3] = byte(0x80 | cp&0x3F)
			n += 4
		case u <= maxOneB:
			buf[n] = byte(u)
			n++
		case u <= maxTwoB:
			buf[n] = byte(0xC0 | u>>6)
			buf[n+1] = byte(0x80 | u&0x3F)
			n += 2
		case isLead(u):
			e.hasLead = true
			e.lead = u
		default:
			buf[n] = byte(0xE0 | u>>12)
			buf[n+1] = byte(0x80 | (u>>6)&0x3F)
			buf[n+2] = byte(0x80 | u&0x3F)
			n += 3
		}
	}
	e.n = n
}

// Flush writes any buffered bytes to the sink and flushes the sink when it
// implements wasmstrings.Flusher.
func (e *Encoder) Flush() error {
	return e.flush()
}

// Close flushes the Encoder and closes the sink unless LeaveOpen was set.
// A lead surrogate still waiting for its trail is reported as an error.
// The sink is closed even when flushing fails.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	err := e.flush()
	if err == nil && e.hasLead {
		err = errors.InvalidSurrogate(e.written-1, e.lead, "lead surrogate at end of input")
		e.err = err
	}
	return e.close(err)
}
