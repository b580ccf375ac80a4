package transcoder

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasm-strings/errors"
)

func encodeAll(t *testing.T, units []uint16) []byte {
	t.Helper()
	b, err := EncodeUTF8(units)
	if err != nil {
		t.Fatalf("EncodeUTF8(%v): %v", units, err)
	}
	return b
}

func TestEncoder_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		units []uint16
		want  []byte
	}{
		{"ascii", []uint16{'A'}, []byte{0x41}},
		{"nul", []uint16{0}, []byte{0x00}},
		{"two byte min", []uint16{0x80}, []byte{0xC2, 0x80}},
		{"two byte max", []uint16{0x7FF}, []byte{0xDF, 0xBF}},
		{"three byte min", []uint16{0x800}, []byte{0xE0, 0xA0, 0x80}},
		{"euro", []uint16{0x20AC}, []byte{0xE2, 0x82, 0xAC}},
		{"below surrogates", []uint16{0xD7FF}, []byte{0xED, 0x9F, 0xBF}},
		{"above surrogates", []uint16{0xE000}, []byte{0xEE, 0x80, 0x80}},
		{"max bmp", []uint16{0xFFFF}, []byte{0xEF, 0xBF, 0xBF}},
		{"U+1F600", []uint16{0xD83D, 0xDE00}, []byte{0xF0, 0x9F, 0x98, 0x80}},
		{"U+10000", []uint16{0xD800, 0xDC00}, []byte{0xF0, 0x90, 0x80, 0x80}},
		{"U+10FFFF", []uint16{0xDBFF, 0xDFFF}, []byte{0xF4, 0x8F, 0xBF, 0xBF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, encodeAll(t, tt.units)); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncoder_MatchesGoStrings(t *testing.T) {
	got := encodeAll(t, utf16.Encode([]rune(mixedText)))
	if string(got) != mixedText {
		t.Errorf("got %q, want %q", got, mixedText)
	}
}

func TestEncoder_ASCIIIsOneToOne(t *testing.T) {
	var ascii []uint16
	for c := uint16(0); c < 0x80; c++ {
		ascii = append(ascii, c)
	}
	got := encodeAll(t, ascii)
	if len(got) != len(ascii) {
		t.Fatalf("len = %d, want %d", len(got), len(ascii))
	}
	for i, b := range got {
		if uint16(b) != ascii[i] {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", i, b, ascii[i])
		}
	}
}

func TestEncoder_LeadPendingAcrossWrites(t *testing.T) {
	var sink bytes.Buffer
	e := NewEncoder(&sink, EncoderOptions{})

	if n, err := e.Write([]uint16{'a', 0xD83D}); n != 2 || err != nil {
		t.Fatalf("first Write = (%d, %v)", n, err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := sink.String(); got != "a" {
		t.Errorf("after lead only, sink = %q, want %q", got, "a")
	}

	if n, err := e.Write([]uint16{0xDE00, 'b'}); n != 2 || err != nil {
		t.Fatalf("second Write = (%d, %v)", n, err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := sink.String(); got != "a😀b" {
		t.Errorf("sink = %q, want %q", got, "a😀b")
	}
}

func TestEncoder_InvalidSurrogate(t *testing.T) {
	tests := []struct {
		name   string
		writes [][]uint16
		offset int64
		unit   uint16
	}{
		{"lone trail", [][]uint16{{0xDC00}}, 0, 0xDC00},
		{"trail after text", [][]uint16{{'a', 'b', 0xDFFF}}, 2, 0xDFFF},
		{"lead then ascii", [][]uint16{{0xD800, 'A'}}, 1, 'A'},
		{"lead then lead", [][]uint16{{0xD800, 0xDBFF}}, 1, 0xDBFF},
		{"lead then ascii next write", [][]uint16{{'x', 0xD83D}, {'y'}}, 2, 'y'},
		{"two trails", [][]uint16{{0xD800, 0xDC00, 0xDC00}}, 2, 0xDC00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder(io.Discard, EncoderOptions{})
			var err error
			for _, w := range tt.writes {
				var n int
				n, err = e.Write(w)
				if err != nil {
					if n != 0 {
						t.Errorf("failed Write returned n = %d, want 0", n)
					}
					break
				}
			}
			if !stderrors.Is(err, errors.ErrInvalidSurrogate) {
				t.Fatalf("err = %v, want invalid surrogate", err)
			}
			var e2 *errors.Error
			stderrors.As(err, &e2)
			if e2.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", e2.Offset, tt.offset)
			}
			if e2.Value != tt.unit {
				t.Errorf("Value = %v, want 0x%04X", e2.Value, tt.unit)
			}

			if _, err := e.Write([]uint16{'z'}); err != e2 {
				t.Errorf("Write after failure err = %v, want sticky error", err)
			}
		})
	}
}

func TestEncoder_FailedWriteEmitsNothing(t *testing.T) {
	var sink bytes.Buffer
	e := NewEncoder(&sink, EncoderOptions{})

	if _, err := e.Write([]uint16{'o', 'k'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := e.Write([]uint16{'n', 'o', 0xDC00}); err == nil {
		t.Fatal("expected error")
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := sink.String(); got != "ok" {
		t.Errorf("sink = %q, want %q", got, "ok")
	}
}

func TestEncoder_LeadAtClose(t *testing.T) {
	sink := &recordingSink{}
	e := NewEncoder(sink, EncoderOptions{})

	if _, err := e.Write([]uint16{'a', 0xD800}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	err := e.Close()
	if !stderrors.Is(err, errors.ErrInvalidSurrogate) {
		t.Fatalf("Close err = %v, want invalid surrogate", err)
	}
	var e2 *errors.Error
	stderrors.As(err, &e2)
	if e2.Offset != 1 {
		t.Errorf("Offset = %d, want 1", e2.Offset)
	}
	if sink.closes != 1 {
		t.Errorf("sink closed %d times, want 1", sink.closes)
	}
	if string(sink.data) != "a" {
		t.Errorf("sink = %q, want %q", sink.data, "a")
	}
}

func TestEncoder_CloseOwnership(t *testing.T) {
	t.Run("owns sink", func(t *testing.T) {
		sink := &recordingSink{}
		e := NewEncoder(sink, EncoderOptions{})
		if _, err := e.Write([]uint16{'h', 'i'}); err != nil {
			t.Fatal(err)
		}
		if err := e.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if sink.closes != 1 || sink.flushes != 1 {
			t.Errorf("closes=%d flushes=%d, want 1 and 1", sink.closes, sink.flushes)
		}
		if string(sink.data) != "hi" {
			t.Errorf("sink = %q", sink.data)
		}
		// idempotent
		if err := e.Close(); err != nil || sink.closes != 1 {
			t.Errorf("second Close = %v, closes=%d", err, sink.closes)
		}
	})

	t.Run("leave open", func(t *testing.T) {
		sink := &recordingSink{}
		first := NewEncoder(sink, EncoderOptions{LeaveOpen: true})
		second := NewEncoder(sink, EncoderOptions{LeaveOpen: true})

		first.Write([]uint16{'1'})
		if err := first.Close(); err != nil {
			t.Fatal(err)
		}
		second.Write([]uint16{'2'})
		if err := second.Close(); err != nil {
			t.Fatal(err)
		}
		if sink.closes != 0 {
			t.Errorf("sink closed %d times, want 0", sink.closes)
		}
		if string(sink.data) != "12" {
			t.Errorf("sink = %q, want %q", sink.data, "12")
		}
	})
}

func TestEncoder_WriteAfterClose(t *testing.T) {
	e := NewEncoder(io.Discard, EncoderOptions{})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Write([]uint16{'a'}); !stderrors.Is(err, errors.ErrClosed) {
		t.Errorf("Write err = %v, want closed", err)
	}
	if err := e.Flush(); !stderrors.Is(err, errors.ErrClosed) {
		t.Errorf("Flush err = %v, want closed", err)
	}
}

func TestEncoder_FlushesNearCapacity(t *testing.T) {
	sink := &recordingSink{}
	e := NewEncoder(sink, EncoderOptions{BufferSize: 32, FlushThreshold: 8})

	text := strings.Repeat("a€😀", 50)
	units := utf16.Encode([]rune(text))
	if _, err := e.Write(units); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(sink.writes) == 0 {
		t.Fatal("expected transparent flushes before Flush")
	}
	for i, n := range sink.writes {
		if n > 32 {
			t.Errorf("write %d has %d bytes, more than the buffer", i, n)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
	if string(sink.data) != text {
		t.Errorf("sink content mismatch")
	}
}

func TestEncoder_SinkErrors(t *testing.T) {
	t.Run("short write", func(t *testing.T) {
		e := NewEncoder(&recordingSink{limit: 1}, EncoderOptions{})
		e.Write([]uint16{'a', 'b', 'c'})
		err := e.Flush()
		if !stderrors.Is(err, io.ErrShortWrite) {
			t.Fatalf("Flush err = %v, want io.ErrShortWrite", err)
		}
		if e.Buffered() != 2 {
			t.Errorf("Buffered = %d, want 2 unwritten bytes", e.Buffered())
		}
	})

	t.Run("write error is sticky", func(t *testing.T) {
		e := NewEncoder(failingSink{}, EncoderOptions{})
		e.Write([]uint16{'a'})
		if err := e.Flush(); !stderrors.Is(err, errBoom) {
			t.Fatalf("Flush err = %v, want errBoom", err)
		}
		if _, err := e.Write([]uint16{'b'}); !stderrors.Is(err, errBoom) {
			t.Errorf("Write err = %v, want errBoom", err)
		}
	})
}

func TestEncoder_Reset(t *testing.T) {
	e := NewEncoder(io.Discard, EncoderOptions{})
	e.Write([]uint16{0xDC00})

	var sink bytes.Buffer
	e.Reset(&sink)
	if _, err := e.Write([]uint16{'o', 'k'}); err != nil {
		t.Fatalf("Write after Reset: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
	if sink.String() != "ok" {
		t.Errorf("sink = %q", sink.String())
	}
}

func TestEncoderOptions_Invalid(t *testing.T) {
	tests := []EncoderOptions{
		{BufferSize: -1},
		{BufferSize: 16, FlushThreshold: 16},
		{BufferSize: 16, FlushThreshold: 2},
	}
	for _, opts := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewEncoder(%+v) did not panic", opts)
				}
			}()
			NewEncoder(io.Discard, opts)
		}()
	}
}

func TestWriters_SmallBufferDefaults(t *testing.T) {
	text := "a€😀é"
	units := utf16.Encode([]rune(text))
	latin1 := []uint16{'c', 'a', 'f', 0xE9}

	for size := 1; size <= 8; size++ {
		var out bytes.Buffer
		e := NewEncoder(&out, EncoderOptions{BufferSize: size})
		if _, err := e.Write(units); err != nil {
			t.Fatalf("size %d: Encoder.Write: %v", size, err)
		}
		if err := e.Close(); err != nil {
			t.Fatalf("size %d: Encoder.Close: %v", size, err)
		}
		if out.String() != text {
			t.Errorf("size %d: Encoder output %q, want %q", size, out.String(), text)
		}

		out.Reset()
		l := NewLatin1Encoder(&out, EncoderOptions{BufferSize: size})
		if _, err := l.Write(latin1); err != nil {
			t.Fatalf("size %d: Latin1Encoder.Write: %v", size, err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("size %d: Latin1Encoder.Close: %v", size, err)
		}
		if diff := cmp.Diff([]byte{'c', 'a', 'f', 0xE9}, out.Bytes()); diff != "" {
			t.Errorf("size %d: Latin1Encoder (-want +got):\n%s", size, diff)
		}

		out.Reset()
		w := NewUnitStreamWriter(&out, binary.LittleEndian, EncoderOptions{BufferSize: size})
		if _, err := w.Write(units); err != nil {
			t.Fatalf("size %d: UnitStreamWriter.Write: %v", size, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("size %d: UnitStreamWriter.Close: %v", size, err)
		}
		want := make([]byte, 0, 2*len(units))
		for _, u := range units {
			want = binary.LittleEndian.AppendUint16(want, u)
		}
		if diff := cmp.Diff(want, out.Bytes()); diff != "" {
			t.Errorf("size %d: UnitStreamWriter (-want +got):\n%s", size, diff)
		}
	}
}

// flakySink fails its first Write and accepts every later one.
type flakySink struct {
	writes int
	data   []byte
}

func (s *flakySink) Write(p []byte) (int, error) {
	s.writes++
	if s.writes == 1 {
		return 0, errBoom
	}
	s.data = append(s.data, p...)
	return len(p), nil
}

func TestEncoder_FlushAfterSinkFailure(t *testing.T) {
	sink := &flakySink{}
	e := NewEncoder(sink, EncoderOptions{})
	if _, err := e.Write([]uint16{'a', 'b'}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	first := e.Flush()
	if !stderrors.Is(first, errBoom) {
		t.Fatalf("Flush err = %v, want errBoom", first)
	}
	if second := e.Flush(); second != first {
		t.Errorf("second Flush err = %v, want the stored error", second)
	}
	if err := e.Close(); err != first {
		t.Errorf("Close err = %v, want the stored error", err)
	}
	if sink.writes != 1 || len(sink.data) != 0 {
		t.Errorf("sink saw %d writes and %q, want one failed write", sink.writes, sink.data)
	}
}
