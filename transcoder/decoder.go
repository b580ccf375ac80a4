package transcoder

import (
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-strings/errors"
)

const (
	// DefaultDecodeBufferSize is the number of bytes read from the source at a time.
	DefaultDecodeBufferSize = 1024

	// Source reads returning (0, nil) this many times in a row fail with io.ErrNoProgress.
	maxConsecutiveEmptyReads = 100
)

// DecoderOptions configures a Decoder. The zero value selects the defaults.
type DecoderOptions struct {
	// BufferSize is the size of the internal byte buffer.
	//
	// Default is DefaultDecodeBufferSize.
	BufferSize int
}

// Decoder converts a UTF-8 byte stream into UTF-16 code units.
//
// Multi-byte sequences may be split across source reads; the partial
// sequence is carried between calls. A supplementary code point is always
// delivered as a complete surrogate pair within a single Read.
//
// Malformed and truncated input are fatal: once Read has returned such an
// error, every later call returns the same error.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	src     io.Reader
	err     error // sticky decode error
	readErr error // source error deferred until produced units are returned
	buf     []byte

	// consumed is the stream offset of buf[0].
	consumed int64
	pos      int
	end      int

	codePoint uint32
	state     uint8
	eof       bool

	pending      bool
	pendingLead  uint16
	pendingTrail uint16
}

// NewDecoder returns a Decoder reading UTF-8 from src.
func NewDecoder(src io.Reader, opts DecoderOptions) *Decoder {
	bs := opts.BufferSize
	if bs < 0 {
		panic("transcoder: negative decoder BufferSize")
	}
	if bs == 0 {
		bs = DefaultDecodeBufferSize
	}
	return &Decoder{
		src: src,
		buf: make([]byte, bs),
	}
}

// Reset discards all decoder state and switches to reading from src.
// The internal buffer is reused.
func (d *Decoder) Reset(src io.Reader) {
	buf := d.buf
	*d = Decoder{src: src, buf: buf}
}

// Offset returns the number of source bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.consumed + int64(d.pos)
}

// Read decodes up to len(dst) code units into dst.
//
// Read returns (0, io.EOF) once the source is exhausted and every unit has
// been delivered. A call that fails returns no units; units produced by
// earlier calls remain valid.
func (d *Decoder) Read(dst []uint16) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n := 0
	if d.pending {
		if len(dst) < 2 {
			return 0, nil
		}
		dst[0], dst[1] = d.pendingLead, d.pendingTrail
		d.pending = false
		n = 2
	}

	for n < len(dst) {
		if d.pos >= d.end {
			if d.readErr != nil {
				if n > 0 {
					return n, nil
				}
				err := d.readErr
				d.readErr = nil
				return 0, err
			}
			if d.eof {
				return d.finish(n)
			}
			d.fill()
			continue
		}

		b := d.buf[d.pos]
		if d.state == stateAccept && b < runeSelf {
			dst[n] = uint16(b)
			n++
			d.pos++
			continue
		}

		class := byteClass[b]
		if d.state == stateAccept {
			d.codePoint = uint32(0xFF>>class) & uint32(b)
		} else {
			d.codePoint = d.codePoint<<6 | uint32(b&0x3F)
		}
		d.state = transitions[d.state+class]

		switch d.state {
		case stateAccept:
			cp := d.codePoint
			d.codePoint = 0
			d.pos++
			if cp <= maxBMP {
				dst[n] = uint16(cp)
				n++
				continue
			}
			lead, trail := splitSupplementary(cp)
			if len(dst)-n < 2 {
				d.pending = true
				d.pendingLead, d.pendingTrail = lead, trail
				return n, nil
			}
			dst[n], dst[n+1] = lead, trail
			n += 2

		case stateReject:
			d.codePoint = 0
			d.err = errors.Malformed(d.Offset(), b)
			Logger().Debug("malformed utf-8",
				zap.Int64("offset", d.Offset()),
				zap.Uint8("byte", b))
			return 0, d.err

		default:
			d.pos++
		}
	}
	return n, nil
}

// fill refills the byte buffer from the source. It records end of stream
// and source errors instead of returning them.
func (d *Decoder) fill() {
	d.consumed += int64(d.end)
	d.pos, d.end = 0, 0

	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := d.src.Read(d.buf)
		if n < 0 || n > len(d.buf) {
			d.readErr = errors.New(errors.PhaseRead, errors.KindIO).
				Offset(d.consumed).
				Detail("source returned invalid count %d", n).
				Build()
			return
		}
		d.end = n
		if err == io.EOF {
			d.eof = true
			return
		}
		if err != nil {
			d.readErr = errors.New(errors.PhaseRead, errors.KindIO).
				Offset(d.consumed + int64(n)).
				Cause(err).
				Detail("source read failed").
				Build()
			return
		}
		if n > 0 {
			return
		}
	}
	d.readErr = io.ErrNoProgress
}

// finish handles end of stream.
func (d *Decoder) finish(n int) (int, error) {
	switch d.state {
	case stateAccept:
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	default:
		missing := pendingBytes(d.state)
		d.codePoint = 0
		d.err = errors.Truncated(d.Offset(), missing)
		Logger().Debug("truncated utf-8",
			zap.Int64("offset", d.Offset()),
			zap.Int("missing", missing))
		return 0, d.err
	}
}
