package guestmem

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero/api"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

// checkRegion verifies that [ptr, ptr+length) lies inside mem.
func checkRegion(phase errors.Phase, mem api.Memory, ptr, length uint32) error {
	if mem == nil {
		return errors.New(phase, errors.KindNilMemory).Detail("nil memory").Build()
	}
	if uint64(ptr)+uint64(length) > uint64(mem.Size()) {
		return errors.OutOfBounds(phase, ptr, length)
	}
	return nil
}

// Reader reads a fixed region of guest memory.
type Reader struct {
	mem api.Memory
	ptr uint32
	end uint32
}

// NewReader returns a Reader over [ptr, ptr+length).
func NewReader(mem api.Memory, ptr, length uint32) (*Reader, error) {
	if err := checkRegion(errors.PhaseLift, mem, ptr, length); err != nil {
		return nil, err
	}
	return &Reader{mem: mem, ptr: ptr, end: ptr + length}, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.ptr >= r.end {
		return 0, io.EOF
	}
	n := uint32(min(uint64(len(p)), uint64(r.end-r.ptr)))
	data, ok := r.mem.Read(r.ptr, n)
	if !ok {
		// memory can only grow, so this means the region was never valid
		return 0, errors.OutOfBounds(errors.PhaseLift, r.ptr, n)
	}
	copy(p, data)
	r.ptr += n
	return int(n), nil
}

// Writer writes into a fixed region of guest memory.
type Writer struct {
	mem   api.Memory
	start uint32
	ptr   uint32
	end   uint32
}

// NewWriter returns a Writer over [ptr, ptr+length).
func NewWriter(mem api.Memory, ptr, length uint32) (*Writer, error) {
	if err := checkRegion(errors.PhaseLower, mem, ptr, length); err != nil {
		return nil, err
	}
	return &Writer{mem: mem, start: ptr, ptr: ptr, end: ptr + length}, nil
}

// Write implements io.Writer. Bytes beyond the region are not written and
// the call fails with an out_of_bounds error.
func (w *Writer) Write(p []byte) (int, error) {
	room := w.end - w.ptr
	n := uint32(min(uint64(len(p)), uint64(room)))
	if n > 0 && !w.mem.Write(w.ptr, p[:n]) {
		return 0, errors.OutOfBounds(errors.PhaseLower, w.ptr, n)
	}
	w.ptr += n
	if int(n) < len(p) {
		return int(n), errors.OutOfBounds(errors.PhaseLower, w.ptr, uint32(len(p))-n)
	}
	return int(n), nil
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() uint32 {
	return w.ptr - w.start
}

// WrapAllocator wraps a guest cabi_realloc export as an Allocator.
func WrapAllocator(ctx context.Context, fn api.Function) wasmstrings.Allocator {
	if fn == nil {
		return nil
	}
	return &AllocatorWrapper{Ctx: ctx, Fn: fn}
}

// AllocatorWrapper adapts wazero api.Function (cabi_realloc) to wasmstrings.Allocator.
type AllocatorWrapper struct {
	Ctx context.Context
	Fn  api.Function
}

// Alloc allocates memory using cabi_realloc(0, 0, align, size).
func (a *AllocatorWrapper) Alloc(size, align uint32) (uint32, error) {
	results, err := a.Fn.Call(a.Ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	return uint32(results[0]), nil
}
