// Package errors provides structured error types for the wasm-strings library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the stream offset of the failure, the offending value
// and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformed).
//		Offset(17).
//		Value(byte(0xC0)).
//		Detail("unexpected byte 0xc0").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(offset, b)
//	err := errors.InvalidSurrogate(offset, unit, "trail surrogate without lead")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two errors match under errors.Is when Phase and Kind are equal, so the
// exported sentinels (ErrMalformed, ErrTruncated, ...) can be used as targets.
package errors
