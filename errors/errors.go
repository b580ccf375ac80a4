package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode Phase = "decode" // bytes to code units
	PhaseEncode Phase = "encode" // code units to bytes
	PhaseRead   Phase = "read"   // byte source
	PhaseWrite  Phase = "write"  // byte sink
	PhaseLift   Phase = "lift"   // guest memory to Go
	PhaseLower  Phase = "lower"  // Go to guest memory
	PhaseConfig Phase = "config" // option and flag handling
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed        Kind = "malformed_sequence"
	KindTruncated        Kind = "truncated_sequence"
	KindInvalidSurrogate Kind = "invalid_surrogate"
	KindUnrepresentable  Kind = "unrepresentable"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindAllocation       Kind = "allocation"
	KindNilMemory        Kind = "nil_memory"
	KindUnsupported      Kind = "unsupported"
	KindClosed           Kind = "closed"
	KindIO               Kind = "io"
	KindInvalidInput     Kind = "invalid_input"
)

// Sentinels for errors.Is. Only Phase and Kind are compared.
var (
	ErrMalformed        = &Error{Phase: PhaseDecode, Kind: KindMalformed}
	ErrTruncated        = &Error{Phase: PhaseDecode, Kind: KindTruncated}
	ErrInvalidSurrogate = &Error{Phase: PhaseEncode, Kind: KindInvalidSurrogate}
	ErrUnrepresentable  = &Error{Phase: PhaseEncode, Kind: KindUnrepresentable}
	ErrClosed           = &Error{Phase: PhaseEncode, Kind: KindClosed}
)

// NoOffset marks an error that is not tied to a stream position.
const NoOffset int64 = -1

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Offset int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Offset sets the stream offset of the failure
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a malformed UTF-8 sequence error for the byte at offset
func Malformed(offset int64, b byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformed,
		Offset: offset,
		Value:  b,
		Detail: fmt.Sprintf("unexpected byte 0x%02x", b),
	}
}

// Truncated creates an error for a sequence cut short by end of stream.
// missing is the number of continuation bytes still expected.
func Truncated(offset int64, missing int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncated,
		Offset: offset,
		Value:  missing,
		Detail: fmt.Sprintf("end of stream with %d continuation byte(s) missing", missing),
	}
}

// InvalidSurrogate creates an unpaired surrogate error for the unit at offset
func InvalidSurrogate(offset int64, unit uint16, detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidSurrogate,
		Offset: offset,
		Value:  unit,
		Detail: fmt.Sprintf("%s (0x%04x)", detail, unit),
	}
}

// Unrepresentable creates an error for a unit the target encoding cannot hold
func Unrepresentable(offset int64, unit uint16, encoding string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnrepresentable,
		Offset: offset,
		Value:  unit,
		Detail: fmt.Sprintf("code unit 0x%04x has no %s form", unit, encoding),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Offset: NoOffset,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// OutOfBounds creates a guest memory bounds error
func OutOfBounds(phase Phase, ptr, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Offset: int64(ptr),
		Value:  length,
		Detail: fmt.Sprintf("%d bytes at ptr=%d out of bounds", length, ptr),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: NoOffset,
		Detail: what,
	}
}

// Closed creates an error for use of a closed writer
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Offset: NoOffset,
		Detail: "use of closed writer",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}
