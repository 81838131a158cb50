package ffmpeg

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Converter transcodes xWMA streams to PCM wav files with ffmpeg
type Converter struct {
	ffmpegPath string
	log        *slog.Logger
}

// NewConverter creates a new converter using the ffmpeg binary found on the system
func NewConverter(log *slog.Logger) (*Converter, error) {
	ffmpegPath, err := findFFmpeg()
	if err != nil {
		return nil, err
	}
	return NewConverterWithPath(ffmpegPath, log), nil
}

// NewConverterWithPath creates a new converter running the given ffmpeg binary
func NewConverterWithPath(ffmpegPath string, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	return &Converter{
		ffmpegPath: ffmpegPath,
		log:        log,
	}
}

// findFFmpeg locates the ffmpeg binary on the system
func findFFmpeg() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	// Check common installation locations based on OS
	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/opt/local/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/ffmpeg/bin/ffmpeg",
		}
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("ffmpeg not found. Please install ffmpeg to convert xwm files to wav")
}

// wavArgs returns the ffmpeg arguments decoding in to 16 bit PCM at out
func wavArgs(in, out string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", in, // Input file
		"-c:a", "pcm_s16le", // 16 bit little endian PCM
		"-y", // Overwrite output file if it exists
		out,  // Output file
	}
}

// ConvertToWAV decodes an xwm file to a wav file next to it and returns its path
func (c *Converter) ConvertToWAV(xwmFile string) (string, error) {
	if _, err := os.Stat(xwmFile); err != nil {
		return "", fmt.Errorf("error reading input file: %w", err)
	}

	wavFile := strings.TrimSuffix(xwmFile, filepath.Ext(xwmFile)) + ".wav"

	var stderr bytes.Buffer
	cmd := exec.Command(c.ffmpegPath, wavArgs(xwmFile, wavFile)...)
	cmd.Stderr = &stderr

	c.log.Debug("running ffmpeg", "command", cmd.String())
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error converting %s to wav: %w: %s", filepath.Base(xwmFile), err, strings.TrimSpace(stderr.String()))
	}

	return wavFile, nil
}

// ConvertDirectory converts every xwm file under dir, recursively. A failed
// file does not stop the others; all failures are returned together.
func (c *Converter) ConvertDirectory(dir string) ([]string, error) {
	var converted []string
	var errs *multierror.Error

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.ToLower(filepath.Ext(path)) != ".xwm" {
			return nil
		}

		c.log.Debug("converting to wav", "path", path)
		wavFile, err := c.ConvertToWAV(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			return nil
		}
		converted = append(converted, wavFile)
		return nil
	})
	if err != nil {
		return converted, fmt.Errorf("error scanning directory: %w", err)
	}

	return converted, errs.ErrorOrNil()
}
