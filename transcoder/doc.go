// Package transcoder provides streaming conversion between byte encodings
// and UTF-16 code units.
//
// # Components
//
//	Decoder            - UTF-8 bytes (io.Reader) → code units
//	Encoder            - code units → UTF-8 bytes (io.Writer)
//	Latin1Decoder      - Latin-1 bytes → code units
//	Latin1Encoder      - code units ≤ 0xFF → Latin-1 bytes
//	UnitStreamReader   - UTF-16 LE/BE bytes → code units
//	UnitStreamWriter   - code units → UTF-16 LE/BE bytes
//
// All readers implement wasmstrings.UnitReader and all writers implement
// wasmstrings.UnitWriter, so any pair can be joined with Copy.
//
// # UTF-8 Decoding
//
// The Decoder validates input with a table-driven DFA of nine states: one
// accept state, one reject state and seven states that expect more
// continuation bytes. Overlong forms, encoded surrogates (ED A0..BF) and
// code points above U+10FFFF all drive the DFA into the reject state.
//
// Sequences may be split at any byte boundary between source reads.
// ASCII bytes seen in the accept state bypass the table.
//
// Supplementary code points are produced as surrogate pairs. When the
// destination has a single free slot the pair is withheld and delivered
// first on the next Read, so a caller never sees half a pair.
//
// # Errors
//
// Errors use the structured types from the errors package:
//
//	[decode] malformed_sequence at offset 4: unexpected byte 0x80
//	[decode] truncated_sequence at offset 9: end of stream with 2 continuation byte(s) missing
//	[encode] invalid_surrogate at offset 0: trail surrogate without lead (0xdc00)
//
// Decode and encode errors are fatal for the instance; there is no
// replacement-character mode. A call that fails returns no units.
//
// # Buffering
//
// The Decoder reads the source in blocks of DecoderOptions.BufferSize
// bytes. The Encoder flushes to the sink when free space drops below
// EncoderOptions.FlushThreshold, leaving room for the worst case of four
// bytes per unit; the fixed-width writers flush only when full. Close
// flushes and closes the sink unless LeaveOpen is set.
//
// # Thread Safety
//
// Readers and writers hold mutable state and are NOT thread-safe.
// Use separate instances per goroutine.
package transcoder
