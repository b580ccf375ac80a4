// Package wasmstrings provides streaming string transcoding for hosts of
// WebAssembly components.
//
// Components exchange strings in one of three canonical ABI encodings
// (UTF-8, UTF-16 and Latin-1), while Go strings are UTF-8. This library
// converts between them without loading whole strings into intermediate
// buffers, and validates strictly: malformed UTF-8 and unpaired surrogates
// are errors, never replaced.
//
// # Architecture Overview
//
//	wasmstrings/       Root package with StringEncoding and the UnitReader,
//	│                  UnitWriter, Flusher and Allocator interfaces
//	├── transcoder/    UTF-8 DFA decoder, UTF-8 encoder, Latin-1 and
//	│                  UTF-16 byte stream codecs
//	├── guestmem/      String lifting/lowering against wazero linear memory
//	├── errors/        Structured error types for debugging
//	└── cmd/transcode  Command line converter and interactive inspector
//
// # Quick Start
//
// Decode a UTF-8 stream into UTF-16 code units:
//
//	d := transcoder.NewDecoder(r, transcoder.DecoderOptions{})
//	buf := make([]uint16, 512)
//	for {
//	    n, err := d.Read(buf)
//	    use(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Encode code units back to UTF-8:
//
//	e := transcoder.NewEncoder(w, transcoder.EncoderOptions{})
//	if _, err := e.Write(units); err != nil {
//	    log.Fatal(err)
//	}
//	err := e.Close()
//
// Move a string into a component that uses UTF-16:
//
//	opts := guestmem.CanonicalOptions{
//	    Memory:   mod.Memory(),
//	    Realloc:  guestmem.WrapAllocator(ctx, mod.ExportedFunction("cabi_realloc")),
//	    Encoding: wasmstrings.StringEncodingUTF16,
//	}
//	ptr, length, err := guestmem.LowerString(opts, "Hello, 世界")
//
// # Thread Safety
//
// Decoders and encoders are NOT thread-safe and should be used by a single
// goroutine, or access must be synchronized. Separate instances share no
// state.
package wasmstrings
