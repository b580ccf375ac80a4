// Package guestmem lifts and lowers strings between Go and the linear
// memory of a wazero module instance.
//
// Strings cross the boundary in one of the canonical ABI encodings:
//
//	Encoding   Length unit   Alignment
//	─────────────────────────────────
//	utf8       bytes         1
//	utf16      code units    2 (little-endian)
//	latin1     bytes         1
//
// Reader and Writer expose a region of guest memory as io.Reader and
// io.Writer so the streaming codecs of the transcoder package work on it
// directly.
//
// Lifting validates the guest data: malformed UTF-8, unpaired UTF-16
// surrogates and out-of-bounds regions are errors, never replaced.
// Lowering allocates through the guest's realloc (see WrapAllocator).
package guestmem
