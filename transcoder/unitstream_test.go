package transcoder

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"testing"
	"unicode/utf16"

	"github.com/google/go-cmp/cmp"
	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/wippyai/wasm-strings/errors"
)

func TestUnitStreamWriter_MatchesXText(t *testing.T) {
	units := utf16.Encode([]rune(mixedText))

	tests := []struct {
		name   string
		order  binary.ByteOrder
		oracle xunicode.Endianness
	}{
		{"little endian", binary.LittleEndian, xunicode.LittleEndian},
		{"big endian", binary.BigEndian, xunicode.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink bytes.Buffer
			w := NewUnitStreamWriter(&sink, tt.order, EncoderOptions{BufferSize: 16, FlushThreshold: 4})
			if _, err := w.Write(units); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			want, err := xunicode.UTF16(tt.oracle, xunicode.IgnoreBOM).NewEncoder().String(mixedText)
			if err != nil {
				t.Fatalf("oracle: %v", err)
			}
			if diff := cmp.Diff([]byte(want), sink.Bytes()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnitStreamReader_OddChunks(t *testing.T) {
	units := utf16.Encode([]rune(mixedText))
	data := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(data[2*i:], u)
	}

	for _, size := range []int{1, 3, 5, 64} {
		r := NewUnitStreamReader(&chunkReader{data: data, size: size, stall: true}, binary.BigEndian, DecoderOptions{BufferSize: 5})
		got, err := readAllUnits(t, r, 3)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if diff := cmp.Diff(units, got); diff != "" {
			t.Errorf("size %d (-want +got):\n%s", size, diff)
		}
	}
}

func TestUnitStreamReader_OddLength(t *testing.T) {
	r := NewUnitStreamReader(bytes.NewReader([]byte{'a', 0, 'b'}), binary.LittleEndian, DecoderOptions{})
	_, err := readAllUnits(t, r, 8)
	if !stderrors.Is(err, errors.ErrTruncated) {
		t.Fatalf("err = %v, want truncated", err)
	}
	var e *errors.Error
	stderrors.As(err, &e)
	if e.Offset != 2 {
		t.Errorf("Offset = %d, want 2", e.Offset)
	}
}

func TestUnitStreamReader_ErrorWithData(t *testing.T) {
	src := &dataWithErrReader{data: []byte{'a', 0, 'b', 0}, err: errBoom}
	r := NewUnitStreamReader(src, binary.LittleEndian, DecoderOptions{})

	got, err := readAllUnits(t, r, 8)
	if diff := cmp.Diff([]uint16{'a', 'b'}, got); diff != "" {
		t.Errorf("units before the error (-want +got):\n%s", diff)
	}
	if !stderrors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped errBoom", err)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Phase != errors.PhaseRead || e.Kind != errors.KindIO {
		t.Errorf("err = %v, want read phase io error", err)
	}
}
