// Package fuzle computes the playback duration of the xWMA audio stored in
// FUZ voice files, without decoding any audio. The duration comes from the
// "dpds" packet table, whose last entry is the size of the decoded stream.
//
// A FUZ file is laid out as:
//
//	"FUZE" | version u32 | lip size u32 | lip data | RIFF/XWMA stream
//
// All integers are little endian.
package fuzle

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Parser locates and decodes xWMA headers. A Parser holds no per-call state
// and may be shared between goroutines.
type Parser struct {
	mode Mode
	log  *slog.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithMode sets the strategy used to find the RIFF stream
func WithMode(mode Mode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// WithLogger sets the logger parse steps are reported to, at debug level
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// NewParser creates a new parser, in ModeAuto with logging discarded unless configured otherwise
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		mode: ModeAuto,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the locator strategy of the parser
func (p *Parser) Mode() Mode {
	return p.mode
}

// Parse locates the RIFF stream in buf and decodes its header. buf is not
// retained.
func (p *Parser) Parse(buf []byte) (*File, error) {
	loc, err := locate(buf, p.mode)
	if err != nil {
		p.log.Debug("could not locate RIFF stream", "mode", p.mode, "length", len(buf), "error", err)
		return nil, err
	}

	p.log.Debug("located RIFF stream",
		"mode", loc.mode,
		"riff_offset", loc.riffOffset,
		"lip_size", loc.lipSize)

	hdr, err := decodeHeader(newCursor(buf, loc.start), p.log)
	if err != nil {
		return nil, err
	}

	return &File{
		Mode:       loc.mode,
		LipOffset:  loc.lipOffset,
		LipSize:    loc.lipSize,
		RIFFOffset: loc.riffOffset,
		Header:     hdr,
	}, nil
}

// Duration returns the playback duration in seconds of the stream in buf
func (p *Parser) Duration(buf []byte) (float64, error) {
	f, err := p.Parse(buf)
	if err != nil {
		return 0, err
	}
	return f.Duration()
}

// DurationFromStream reads r to the end and returns the duration of its content
func (p *Parser) DurationFromStream(r io.Reader) (float64, error) {
	if r == nil {
		return 0, &Error{Kind: KindIO, Offset: -1, Details: "nil reader"}
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, &Error{Kind: KindIO, Offset: -1, Details: fmt.Sprintf("could not read entire stream, got %d bytes", len(buf)), Err: err}
	}
	return p.Duration(buf)
}

// DurationFromPath reads the file at path and returns the duration of its content
func (p *Parser) DurationFromPath(path string) (float64, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return 0, &Error{Kind: KindIO, Offset: -1, Details: "unable to read file " + path, Err: err}
	}
	return p.Duration(buf)
}

var defaultParser = NewParser()

// ComputeDurationFromBuffer returns the duration in seconds of the voice file held in buf
func ComputeDurationFromBuffer(buf []byte) (float64, error) {
	return defaultParser.Duration(buf)
}

// ComputeDurationFromStream reads r fully and returns the duration in seconds of its content
func ComputeDurationFromStream(r io.Reader) (float64, error) {
	return defaultParser.DurationFromStream(r)
}

// ComputeDurationFromPath returns the duration in seconds of the voice file at path
func ComputeDurationFromPath(path string) (float64, error) {
	return defaultParser.DurationFromPath(path)
}
