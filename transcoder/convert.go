package transcoder

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

// Copy moves code units from src to dst until src reports io.EOF, then
// flushes dst. It returns the number of units copied. dst is not closed.
func Copy(dst wasmstrings.UnitWriter, src wasmstrings.UnitReader) (int64, error) {
	bufp := getUnits()
	defer putUnits(bufp)
	buf := *bufp

	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, dst.Flush()
		}
		if err != nil {
			return total, err
		}
	}
}

// NewUnitReader returns a UnitReader decoding src in the given encoding.
// UTF-16 sources are little-endian, the layout of WASM linear memory.
func NewUnitReader(enc wasmstrings.StringEncoding, src io.Reader, opts DecoderOptions) (wasmstrings.UnitReader, error) {
	switch enc {
	case wasmstrings.StringEncodingUTF8:
		return NewDecoder(src, opts), nil
	case wasmstrings.StringEncodingUTF16:
		return NewUnitStreamReader(src, binary.LittleEndian, opts), nil
	case wasmstrings.StringEncodingLatin1:
		return NewLatin1Decoder(src, opts), nil
	}
	return nil, errors.Unsupported(errors.PhaseConfig, "string encoding "+enc.String())
}

// NewUnitWriter returns a UnitWriter encoding to dst in the given encoding.
// UTF-16 output is little-endian.
func NewUnitWriter(enc wasmstrings.StringEncoding, dst io.Writer, opts EncoderOptions) (wasmstrings.UnitWriter, error) {
	switch enc {
	case wasmstrings.StringEncodingUTF8:
		return NewEncoder(dst, opts), nil
	case wasmstrings.StringEncodingUTF16:
		return NewUnitStreamWriter(dst, binary.LittleEndian, opts), nil
	case wasmstrings.StringEncodingLatin1:
		return NewLatin1Encoder(dst, opts), nil
	}
	return nil, errors.Unsupported(errors.PhaseConfig, "string encoding "+enc.String())
}

// DecodeUTF8 decodes a complete UTF-8 byte slice into code units.
func DecodeUTF8(b []byte) ([]uint16, error) {
	return decodeAll(bytes.NewReader(b), len(b))
}

// DecodeString decodes a Go string into code units. Invalid UTF-8 in s is
// rejected, never replaced.
func DecodeString(s string) ([]uint16, error) {
	return decodeAll(strings.NewReader(s), len(s))
}

func decodeAll(r io.Reader, sizeHint int) ([]uint16, error) {
	bufp := getUnits()
	defer putUnits(bufp)
	buf := *bufp

	// a UTF-8 byte never yields more than one unit
	out := make([]uint16, 0, sizeHint)
	d := NewDecoder(r, DecoderOptions{BufferSize: min(max(sizeHint, 16), DefaultDecodeBufferSize)})
	for {
		n, err := d.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeUTF8 encodes code units into a UTF-8 byte slice.
func EncodeUTF8(units []uint16) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(len(units))
	e := NewEncoder(&b, EncoderOptions{LeaveOpen: true})
	if _, err := e.Write(units); err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EncodeString encodes code units into a Go string.
func EncodeString(units []uint16) (string, error) {
	b, err := EncodeUTF8(units)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
