package transcoder

import (
	"io"

	"go.uber.org/zap"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
)

// byteSink is the output buffer shared by the unit writers.
type byteSink struct {
	dst io.Writer
	err error // sticky codec error

	// werr is the sticky sink write error. Once set, nothing more is
	// written to dst.
	werr      error
	buf       []byte
	n         int
	leaveOpen bool
	closed    bool
}

func newByteSink(dst io.Writer, size int, leaveOpen bool) byteSink {
	return byteSink{dst: dst, buf: make([]byte, size), leaveOpen: leaveOpen}
}

func (s *byteSink) reset(dst io.Writer) {
	s.dst = dst
	s.err = nil
	s.werr = nil
	s.n = 0
	s.closed = false
}

func (s *byteSink) free() int {
	return len(s.buf) - s.n
}

// check returns the error a new write must fail with, if any.
func (s *byteSink) check() error {
	if s.closed {
		return errors.Closed(errors.PhaseEncode)
	}
	if s.werr != nil {
		return s.werr
	}
	return s.err
}

// flushBuffer writes buffered bytes to dst without flushing dst.
// Write errors are sticky.
func (s *byteSink) flushBuffer() error {
	if s.werr != nil {
		return s.werr
	}
	if s.n == 0 {
		return nil
	}
	n, err := s.dst.Write(s.buf[:s.n])
	if n < s.n && err == nil {
		err = io.ErrShortWrite
	}
	if err != nil {
		if n > 0 && n < s.n {
			copy(s.buf[0:s.n-n], s.buf[n:s.n])
		}
		s.n -= n
		s.werr = errors.Wrap(errors.PhaseWrite, errors.KindIO, err, "sink write failed")
		return s.werr
	}
	Logger().Debug("flushed output buffer", zap.Int("bytes", s.n))
	s.n = 0
	return nil
}

func (s *byteSink) flush() error {
	if s.closed {
		return errors.Closed(errors.PhaseEncode)
	}
	if err := s.flushBuffer(); err != nil {
		return err
	}
	if f, ok := s.dst.(wasmstrings.Flusher); ok {
		if err := f.Flush(); err != nil {
			return errors.Wrap(errors.PhaseWrite, errors.KindIO, err, "sink flush failed")
		}
	}
	return nil
}

// close marks the sink closed and closes dst unless leaveOpen is set.
// err is the error from the caller's final flush; it takes precedence.
func (s *byteSink) close(err error) error {
	s.closed = true
	if s.leaveOpen {
		return err
	}
	if c, ok := s.dst.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.PhaseWrite, errors.KindIO, cerr, "sink close failed")
		}
	}
	return err
}
