package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-audio/riff"

	"github.com/davidruble/fuzle/pkg/fuzle"
)

// Encoder splits FUZ voice files into their parts and packs them back
type Encoder struct {
	log     *slog.Logger
	noWrite bool
}

// Extracted lists the files written by Extract
type Extracted struct {
	LipPath string // empty when the voice file has no lip-sync data
	XWMPath string
	File    *fuzle.File
}

// NewEncoder creates a new encoder
func NewEncoder(log *slog.Logger, noWrite bool) *Encoder {
	if log == nil {
		log = slog.Default()
	}
	return &Encoder{
		log:     log,
		noWrite: noWrite,
	}
}

// Extract writes the lip-sync data and the xWMA stream of a voice file to
// outputDir as <name>.lip and <name>.xwm
func (e *Encoder) Extract(inputFile, outputDir string) (*Extracted, error) {
	buf, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}

	f, err := fuzle.NewParser(fuzle.WithLogger(e.log)).Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(inputFile), err)
	}

	lipPath, xwmPath := ExtractPaths(inputFile, outputDir)
	out := &Extracted{
		XWMPath: xwmPath,
		File:    f,
	}
	if f.LipSize > 0 {
		out.LipPath = lipPath
	}

	e.log.Debug("extracting voice file",
		"input", inputFile,
		"lip_size", f.LipSize,
		"riff_offset", f.RIFFOffset)

	// If we're in no-write mode, just return
	if e.noWrite {
		return out, nil
	}

	if out.LipPath != "" {
		if err := os.WriteFile(out.LipPath, f.Lip(buf), 0644); err != nil {
			return nil, fmt.Errorf("error writing lip file: %w", err)
		}
	}
	if err := os.WriteFile(out.XWMPath, f.RIFF(buf), 0644); err != nil {
		return nil, fmt.Errorf("error writing xwm file: %w", err)
	}

	return out, nil
}

// ExtractPaths returns where Extract writes the parts of inputFile
func ExtractPaths(inputFile, outputDir string) (lipPath, xwmPath string) {
	baseName := cleanFilename(strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile)))
	return filepath.Join(outputDir, baseName+".lip"), filepath.Join(outputDir, baseName+".xwm")
}

// Pack builds a FUZ voice file from an xWMA stream and optional lip-sync data.
// lipFile may be empty.
func (e *Encoder) Pack(lipFile, xwmFile, outputFile string) error {
	var lip []byte
	if lipFile != "" {
		var err error
		if lip, err = os.ReadFile(lipFile); err != nil {
			return fmt.Errorf("error reading lip file: %w", err)
		}
	}

	stream, err := os.ReadFile(xwmFile)
	if err != nil {
		return fmt.Errorf("error reading xwm file: %w", err)
	}

	// The stream has to be a bare xWMA file, a RIFF header at offset 0
	f, err := fuzle.NewParser(fuzle.WithMode(fuzle.ModeScan), fuzle.WithLogger(e.log)).Parse(stream)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", filepath.Base(xwmFile), err)
	}
	if f.RIFFOffset != 0 {
		return fmt.Errorf("invalid xwm file: RIFF header at offset %d, expected 0", f.RIFFOffset)
	}

	if e.noWrite {
		return nil
	}

	return writeFile(outputFile, func(w io.Writer) error {
		return WriteFUZ(w, lip, stream)
	})
}

// writeFile creates path and fills it with write. The file is removed when
// anything fails so no partial output is left behind.
func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	err = write(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("error closing output file: %w", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// WriteFUZ writes a FUZ preamble, the lip-sync data and the xWMA stream to w
func WriteFUZ(w io.Writer, lip, stream []byte) error {
	header := FUZHeader{
		Magic:   [4]byte{'F', 'U', 'Z', 'E'},
		Version: fuzVersion,
		LipSize: uint32(len(lip)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("error writing FUZ header: %w", err)
	}
	if _, err := w.Write(lip); err != nil {
		return fmt.Errorf("error writing lip data: %w", err)
	}
	if _, err := w.Write(stream); err != nil {
		return fmt.Errorf("error writing xwm data: %w", err)
	}
	return nil
}

// WriteXWMA writes an xWMA stream with the format and packet table of hdr.
// A data chunk is appended when data is not nil. The RIFF and chunk sizes are
// derived from the content. A non zero FormatChunkSize is written as the
// declared fmt chunk size.
func WriteXWMA(w io.Writer, hdr *fuzle.Header, data []byte) error {
	fmtSize := hdr.FormatChunkSize
	if fmtSize == 0 {
		fmtSize = fmtChunkSize
	}
	dpdsSize := uint32(len(hdr.PacketTable) * 4)

	// the fmt payload written is always 18 bytes, whatever size it declares
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dpdsSize)
	if data != nil {
		riffSize += 8 + uint32(len(data)+len(data)%2)
	}

	header := XWMAHeader{
		RiffID:        riff.RiffID,
		RiffSize:      riffSize,
		XwmaID:        fuzle.XWMAID,
		FmtID:         riff.FmtID,
		FmtSize:       fmtSize,
		FormatTag:     hdr.FormatCode,
		NumChannels:   hdr.Channels,
		SampleRate:    hdr.SampleRate,
		ByteRate:      hdr.ByteRate,
		BlockAlign:    hdr.BlockAlign,
		BitsPerSample: hdr.BitsPerSample,
		ExtSize:       hdr.ExtraSize,
		DpdsID:        fuzle.DPDSID,
		DpdsSize:      dpdsSize,
	}

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("error writing xWMA header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, hdr.PacketTable); err != nil {
		return fmt.Errorf("error writing packet table: %w", err)
	}

	if data == nil {
		return nil
	}

	if _, err := w.Write(riff.DataFormatID[:]); err != nil {
		return fmt.Errorf("error writing data chunk: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("error writing data chunk size: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing audio data: %w", err)
	}
	// RIFF chunks are word aligned
	if len(data)%2 == 1 {
		if _, err := w.Write([]byte{0}); err != nil {
			return fmt.Errorf("error writing pad byte: %w", err)
		}
	}
	return nil
}

// BuildXWMA returns the bytes WriteXWMA would write
func BuildXWMA(hdr *fuzle.Header, data []byte) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes do not fail
	_ = WriteXWMA(&buf, hdr, data)
	return buf.Bytes()
}

// BuildFUZ returns the bytes WriteFUZ would write
func BuildFUZ(lip, stream []byte) []byte {
	var buf bytes.Buffer
	_ = WriteFUZ(&buf, lip, stream)
	return buf.Bytes()
}

var invalidFilenameChars = regexp.MustCompile(`[^0-9a-zA-Z\.,:%\-_#]+`)

// cleanFilename removes invalid characters from a filename (Windows-safe)
func cleanFilename(filename string) string {
	return invalidFilenameChars.ReplaceAllString(filename, "_")
}
