package guestmem

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
	"github.com/wippyai/wasm-strings/transcoder"
)

// CanonicalOptions holds the canonical ABI options for string transfer
type CanonicalOptions struct {
	Memory   api.Memory
	Realloc  wasmstrings.Allocator
	Encoding wasmstrings.StringEncoding
}

// LiftString reads a string from guest memory. length counts code units
// of opts.Encoding: bytes for UTF-8 and Latin-1, 16-bit units for UTF-16.
func LiftString(opts CanonicalOptions, ptr, length uint32) (string, error) {
	Logger().Debug("lift string",
		zap.Stringer("encoding", opts.Encoding),
		zap.Uint32("ptr", ptr),
		zap.Uint32("length", length))

	switch opts.Encoding {
	case wasmstrings.StringEncodingUTF8:
		r, err := NewReader(opts.Memory, ptr, length)
		if err != nil {
			return "", err
		}
		if err := validateUTF8(r, length); err != nil {
			return "", err
		}
		data, ok := opts.Memory.Read(ptr, length)
		if !ok {
			return "", errors.OutOfBounds(errors.PhaseLift, ptr, length)
		}
		return string(data), nil

	case wasmstrings.StringEncodingUTF16:
		if ptr%2 != 0 {
			return "", errors.New(errors.PhaseLift, errors.KindInvalidInput).
				Offset(int64(ptr)).
				Detail("utf-16 string pointer is not 2-byte aligned").
				Build()
		}
		byteLen := uint64(length) * 2
		if byteLen > uint64(^uint32(0)) {
			return "", errors.OutOfBounds(errors.PhaseLift, ptr, ^uint32(0))
		}
		r, err := NewReader(opts.Memory, ptr, uint32(byteLen))
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.Grow(int(length))
		src := transcoder.NewUnitStreamReader(r, binary.LittleEndian, transcoder.DecoderOptions{})
		return liftInto(&b, src)

	case wasmstrings.StringEncodingLatin1:
		r, err := NewReader(opts.Memory, ptr, length)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.Grow(int(length))
		return liftInto(&b, transcoder.NewLatin1Decoder(r, transcoder.DecoderOptions{}))
	}
	return "", errors.Unsupported(errors.PhaseLift, "string encoding "+opts.Encoding.String())
}

// validateUTF8 runs src through a Decoder using a fixed scratch buffer.
func validateUTF8(src io.Reader, length uint32) error {
	var scratch [256]uint16
	d := transcoder.NewDecoder(src, transcoder.DecoderOptions{
		BufferSize: int(min(max(length, 16), transcoder.DefaultDecodeBufferSize)),
	})
	for {
		_, err := d.Read(scratch[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func liftInto(b *strings.Builder, src wasmstrings.UnitReader) (string, error) {
	enc := transcoder.NewEncoder(b, transcoder.EncoderOptions{})
	if _, err := transcoder.Copy(enc, src); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// LowerString allocates guest memory through opts.Realloc and writes s in
// opts.Encoding. The returned length counts code units of the encoding.
// s must be valid UTF-8.
func LowerString(opts CanonicalOptions, s string) (ptr, length uint32, err error) {
	Logger().Debug("lower string",
		zap.Stringer("encoding", opts.Encoding),
		zap.Int("bytes", len(s)))

	if opts.Memory == nil {
		return 0, 0, errors.New(errors.PhaseLower, errors.KindNilMemory).Detail("nil memory").Build()
	}
	if opts.Realloc == nil {
		return 0, 0, errors.New(errors.PhaseLower, errors.KindAllocation).Detail("nil realloc").Build()
	}

	units, err := transcoder.DecodeString(s)
	if err != nil {
		return 0, 0, err
	}

	var (
		size, align uint32
		enc         func(w *Writer) wasmstrings.UnitWriter
	)
	switch opts.Encoding {
	case wasmstrings.StringEncodingUTF8:
		size, align, length = uint32(len(s)), 1, uint32(len(s))
	case wasmstrings.StringEncodingUTF16:
		size, align, length = uint32(2*len(units)), 2, uint32(len(units))
		enc = func(w *Writer) wasmstrings.UnitWriter {
			return transcoder.NewUnitStreamWriter(w, binary.LittleEndian, transcoder.EncoderOptions{})
		}
	case wasmstrings.StringEncodingLatin1:
		size, align, length = uint32(len(units)), 1, uint32(len(units))
		enc = func(w *Writer) wasmstrings.UnitWriter {
			return transcoder.NewLatin1Encoder(w, transcoder.EncoderOptions{})
		}
	default:
		return 0, 0, errors.Unsupported(errors.PhaseLower, "string encoding "+opts.Encoding.String())
	}

	if opts.Encoding == wasmstrings.StringEncodingLatin1 {
		// fail before allocating
		for i, u := range units {
			if u > 0xFF {
				return 0, 0, errors.Unrepresentable(int64(i), u, "latin1")
			}
		}
	}

	ptr, err = opts.Realloc.Alloc(size, align)
	if err != nil {
		e := errors.AllocationFailed(errors.PhaseLower, size, align)
		e.Cause = err
		return 0, 0, e
	}

	w, err := NewWriter(opts.Memory, ptr, size)
	if err != nil {
		return 0, 0, err
	}
	if enc == nil {
		if _, err := w.Write([]byte(s)); err != nil {
			return 0, 0, err
		}
		return ptr, length, nil
	}

	uw := enc(w)
	if _, err := uw.Write(units); err != nil {
		return 0, 0, err
	}
	if err := uw.Close(); err != nil {
		return 0, 0, err
	}
	return ptr, length, nil
}
