package probe

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/davidruble/fuzle/pkg/fuzle"
)

// Voice file formats
const (
	FormatFUZ = "fuz"
	FormatXWM = "xwm"
	FormatWAV = "wav"
)

// Extensions lists the file extensions Probe knows about
var Extensions = []string{".fuz", ".xwm", ".wav"}

// Info describes a probed voice file
type Info struct {
	Path          string  `json:"path" yaml:"path"`
	Format        string  `json:"format" yaml:"format"`
	Duration      float64 `json:"duration" yaml:"duration"`
	Channels      int     `json:"channels" yaml:"channels"`
	SampleRate    int     `json:"sample_rate" yaml:"sample_rate"`
	BitsPerSample int     `json:"bits_per_sample" yaml:"bits_per_sample"`
	LipSize       int     `json:"lip_size,omitempty" yaml:"lip_size,omitempty"`
}

// Prober computes durations of voice files on disk
type Prober struct {
	mode fuzle.Mode
	log  *slog.Logger
}

// New creates a new prober. mode overrides the locator strategy picked from
// the file extension unless it is fuzle.ModeAuto.
func New(mode fuzle.Mode, log *slog.Logger) *Prober {
	if log == nil {
		log = slog.Default()
	}
	return &Prober{
		mode: mode,
		log:  log,
	}
}

// Probe reads the file at path and returns its duration and format
func (p *Prober) Probe(path string) (*Info, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &fuzle.Error{Kind: fuzle.KindIO, Offset: -1, Details: "unable to read file " + path, Err: err}
	}

	format := detectFormat(path, buf)
	p.log.Debug("probing voice file", "path", path, "format", format, "size", len(buf))

	if format == FormatWAV {
		return p.probeWAV(path, buf)
	}

	mode := p.mode
	if mode == fuzle.ModeAuto {
		switch format {
		case FormatFUZ:
			mode = fuzle.ModePrefixed
		case FormatXWM:
			mode = fuzle.ModeScan
		}
	}

	f, err := fuzle.NewParser(fuzle.WithMode(mode), fuzle.WithLogger(p.log)).Parse(buf)
	if err != nil {
		return nil, err
	}
	d, err := f.Duration()
	if err != nil {
		return nil, err
	}

	pcm := f.Header.Format()
	return &Info{
		Path:          path,
		Format:        format,
		Duration:      d,
		Channels:      pcm.NumChannels,
		SampleRate:    pcm.SampleRate,
		BitsPerSample: int(f.Header.BitsPerSample),
		LipSize:       f.LipSize,
	}, nil
}

// probeWAV computes the duration of an uncompressed PCM wav file from the size of its data chunk
func (p *Prober) probeWAV(path string, buf []byte) (*Info, error) {
	d := wav.NewDecoder(bytes.NewReader(buf))
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("error reading wav data chunk: %w", err)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("error reading wav header: %w", err)
	}

	bytesPerFrame := int(d.NumChans) * int(d.BitDepth/8)
	if bytesPerFrame == 0 || d.SampleRate == 0 {
		return nil, fmt.Errorf("invalid wav format: %d channels of %d bits at %d Hz: %w",
			d.NumChans, d.BitDepth, d.SampleRate, fuzle.ErrDivisionByZero)
	}

	p.log.Debug("wav data chunk", "path", path, "pcm_size", d.PCMSize)

	numSamples := float64(d.PCMSize) / float64(bytesPerFrame)
	format := d.Format()
	return &Info{
		Path:          path,
		Format:        FormatWAV,
		Duration:      numSamples / float64(d.SampleRate),
		Channels:      format.NumChannels,
		SampleRate:    format.SampleRate,
		BitsPerSample: int(d.BitDepth),
	}, nil
}

// detectFormat picks the format from the extension, falling back to the content
func detectFormat(path string, buf []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fuz":
		return FormatFUZ
	case ".xwm":
		return FormatXWM
	case ".wav":
		return FormatWAV
	}

	if fuzle.HasFuzMagic(buf) {
		return FormatFUZ
	}
	if len(buf) >= 12 && bytes.Equal(buf[:4], riff.RiffID[:]) && bytes.Equal(buf[8:12], riff.WavFormatID[:]) {
		return FormatWAV
	}
	return FormatXWM
}

// IsVoiceFile reports whether path has one of the known extensions
func IsVoiceFile(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
