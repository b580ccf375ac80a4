package wasmstrings

import (
	"strings"

	"github.com/wippyai/wasm-strings/errors"
)

// StringEncoding is a canonical ABI string encoding
type StringEncoding byte

const (
	StringEncodingUTF8 StringEncoding = iota
	StringEncodingUTF16
	StringEncodingLatin1
)

// String returns the canonical option name of the encoding.
func (e StringEncoding) String() string {
	switch e {
	case StringEncodingUTF8:
		return "utf8"
	case StringEncodingUTF16:
		return "utf16"
	case StringEncodingLatin1:
		return "latin1"
	default:
		return "unknown"
	}
}

// ParseStringEncoding parses an encoding name such as "utf8", "UTF-16" or
// "latin1". Separators and case are ignored.
func ParseStringEncoding(name string) (StringEncoding, error) {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, "-", "")
	n = strings.ReplaceAll(n, "_", "")
	switch n {
	case "utf8":
		return StringEncodingUTF8, nil
	case "utf16":
		return StringEncodingUTF16, nil
	case "latin1", "iso88591":
		return StringEncodingLatin1, nil
	}
	return 0, errors.Unsupported(errors.PhaseConfig, "string encoding "+name)
}

// UnitReader reads UTF-16 code units.
//
// Read fills at most len(dst) units. It returns io.EOF only when no units
// were produced and the underlying source is exhausted.
type UnitReader interface {
	Read(dst []uint16) (n int, err error)
}

// UnitWriter writes UTF-16 code units to an underlying byte sink.
type UnitWriter interface {
	Write(src []uint16) (n int, err error)
	Flush() error
	Close() error
}

// Flusher is implemented by byte sinks that buffer internally.
type Flusher interface {
	Flush() error
}

// Allocator allocates memory in WASM linear memory
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
}
