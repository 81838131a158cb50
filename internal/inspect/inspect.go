package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-audio/riff"

	"github.com/davidruble/fuzle/pkg/fuzle"
)

// Chunk is one entry of a RIFF chunk inventory
type Chunk struct {
	ID        string `json:"id" yaml:"id"`
	Offset    int    `json:"offset" yaml:"offset"` // of the chunk header, from the start of the RIFF stream
	Size      int    `json:"size" yaml:"size"`     // payload size including the pad byte
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Report describes the layout of a voice file
type Report struct {
	Path       string       `json:"path" yaml:"path"`
	Mode       string       `json:"mode" yaml:"mode"`
	LipSize    int          `json:"lip_size" yaml:"lip_size"`
	RIFFOffset int          `json:"riff_offset" yaml:"riff_offset"`
	Form       string       `json:"form" yaml:"form"`
	RIFFSize   uint32       `json:"riff_size" yaml:"riff_size"`
	Header     fuzle.Header `json:"header" yaml:"header"`
	Duration   float64      `json:"duration" yaml:"duration"`
	Chunks     []Chunk      `json:"chunks" yaml:"chunks"`
}

// Inspect parses buf with parser and lists the chunks of its RIFF stream
func Inspect(parser *fuzle.Parser, path string, buf []byte) (*Report, error) {
	f, err := parser.Parse(buf)
	if err != nil {
		return nil, err
	}
	d, err := f.Duration()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:       path,
		Mode:       f.Mode.String(),
		LipSize:    f.LipSize,
		RIFFOffset: f.RIFFOffset,
		Header:     f.Header,
		Duration:   d,
	}

	p := riff.New(bytes.NewReader(f.RIFF(buf)))
	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("error reading RIFF header: %w", err)
	}
	report.Form = string(p.Format[:])
	report.RIFFSize = p.Size

	report.Chunks, err = Chunks(p, len(f.RIFF(buf)))
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Chunks walks the chunks of a RIFF stream of the given length whose headers
// were already parsed
func Chunks(p *riff.Parser, length int) ([]Chunk, error) {
	var chunks []Chunk
	// RIFF id, size and form type
	offset := 12

	for {
		ch, err := p.NextChunk()
		// trailing bytes too short for a chunk header end the walk as well
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return chunks, fmt.Errorf("error reading chunk header at offset %d: %w", offset, err)
		}

		end := offset + 8 + ch.Size
		chunks = append(chunks, Chunk{
			ID:        string(ch.ID[:]),
			Offset:    offset,
			Size:      ch.Size,
			Truncated: end > length,
		})
		if end >= length {
			break
		}

		ch.Drain()
		offset = end
	}

	return chunks, nil
}

// String formats the report for terminals
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", r.Path)
	fmt.Fprintf(&sb, "  locator:     %s\n", r.Mode)
	if r.LipSize > 0 {
		fmt.Fprintf(&sb, "  lip data:    %d bytes\n", r.LipSize)
	}
	fmt.Fprintf(&sb, "  RIFF:        offset %d, size %d, form %q\n", r.RIFFOffset, r.RIFFSize, r.Form)
	fmt.Fprintf(&sb, "  format:      0x%04x, %d channels @ %d Hz / %d bits\n",
		r.Header.FormatCode, r.Header.Channels, r.Header.SampleRate, r.Header.BitsPerSample)
	fmt.Fprintf(&sb, "  byte rate:   %d, block align %d\n", r.Header.ByteRate, r.Header.BlockAlign)
	fmt.Fprintf(&sb, "  dpds:        %d entries, %d decoded bytes\n", len(r.Header.PacketTable), r.Header.DecodedBytes())
	fmt.Fprintf(&sb, "  duration:    %.3fs\n", r.Duration)
	sb.WriteString("  chunks:\n")
	for _, ch := range r.Chunks {
		fmt.Fprintf(&sb, "    %-4s  offset %-8d size %d", ch.ID, ch.Offset, ch.Size)
		if ch.Truncated {
			sb.WriteString("  (truncated)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
