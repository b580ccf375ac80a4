package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	wasmstrings "github.com/wippyai/wasm-strings"
	"github.com/wippyai/wasm-strings/errors"
	"github.com/wippyai/wasm-strings/guestmem"
	"github.com/wippyai/wasm-strings/transcoder"
)

func main() {
	var (
		from        = flag.String("from", "utf8", "Input encoding: utf8, utf16le, utf16be, latin1")
		to          = flag.String("to", "utf16le", "Output encoding: utf8, utf16le, utf16be, latin1")
		inFile      = flag.String("in", "", "Input file (default stdin)")
		outFile     = flag.String("out", "", "Output file (default stdout)")
		bufSize     = flag.Int("buffer", 0, "Codec buffer size in bytes (0 selects the default)")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	transcoder.SetLogger(log.Named("transcoder"))
	guestmem.SetLogger(log.Named("guestmem"))

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal on stdin")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := config{from: *from, to: *to, in: *inFile, out: *outFile, bufSize: *bufSize}
	if err := run(log, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

type config struct {
	from    string
	to      string
	in      string
	out     string
	bufSize int
}

// streamFormat is a byte stream layout the CLI can read or write.
type streamFormat struct {
	enc   wasmstrings.StringEncoding
	order binary.ByteOrder
}

func parseFormat(name string) (streamFormat, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "utf16le":
		return streamFormat{enc: wasmstrings.StringEncodingUTF16, order: binary.LittleEndian}, nil
	case "utf16be":
		return streamFormat{enc: wasmstrings.StringEncodingUTF16, order: binary.BigEndian}, nil
	}
	enc, err := wasmstrings.ParseStringEncoding(name)
	if err != nil {
		return streamFormat{}, err
	}
	return streamFormat{enc: enc, order: binary.LittleEndian}, nil
}

func (f streamFormat) reader(r io.Reader, opts transcoder.DecoderOptions) (wasmstrings.UnitReader, error) {
	if f.enc == wasmstrings.StringEncodingUTF16 {
		return transcoder.NewUnitStreamReader(r, f.order, opts), nil
	}
	return transcoder.NewUnitReader(f.enc, r, opts)
}

func (f streamFormat) writer(w io.Writer, opts transcoder.EncoderOptions) (wasmstrings.UnitWriter, error) {
	if f.enc == wasmstrings.StringEncodingUTF16 {
		return transcoder.NewUnitStreamWriter(w, f.order, opts), nil
	}
	return transcoder.NewUnitWriter(f.enc, w, opts)
}

func run(log *zap.Logger, cfg config) error {
	if cfg.bufSize < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("buffer size %d is negative", cfg.bufSize).
			Build()
	}
	from, err := parseFormat(cfg.from)
	if err != nil {
		return err
	}
	to, err := parseFormat(cfg.to)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if cfg.in != "" {
		f, err := os.Open(cfg.in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	leaveOpen := true
	if cfg.out != "" {
		f, err := os.Create(cfg.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		out = f
		leaveOpen = false
	}

	decOpts := transcoder.DecoderOptions{BufferSize: cfg.bufSize}
	encOpts := transcoder.EncoderOptions{BufferSize: cfg.bufSize, LeaveOpen: leaveOpen}

	src, err := from.reader(in, decOpts)
	if err != nil {
		return err
	}
	dst, err := to.writer(out, encOpts)
	if err != nil {
		return err
	}

	start := time.Now()
	n, err := transcoder.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("transcode after %d code units: %w", n, err)
	}

	log.Info("transcoded",
		zap.String("from", cfg.from),
		zap.String("to", cfg.to),
		zap.Int64("units", n),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
