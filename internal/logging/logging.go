package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	// Level types
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	// Format types
	FormatJSON = "json"
	FormatText = "text"
)

// Opts holds logging configuration options.
type Opts struct {
	Level  string
	Format string
	// Writer defaults to stderr.
	Writer io.Writer
}

// NewLogger builds a logger from opts.
func NewLogger(opts *Opts) (*slog.Logger, error) {
	handler, err := getHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func getHandler(opts *Opts) (slog.Handler, error) {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	switch opts.Format {
	case FormatJSON:
		return slog.NewJSONHandler(writer, handlerOpts), nil
	case FormatText, "":
		return slog.NewTextHandler(writer, handlerOpts), nil
	default:
		return nil, fmt.Errorf("unrecognized log format: %s", opts.Format)
	}
}

var levelToSlogLevel = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

func parseLevel(level string) slog.Level {
	if l, ok := levelToSlogLevel[level]; ok {
		return l
	}
	return slog.LevelInfo
}
