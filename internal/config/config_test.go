package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidruble/fuzle/internal/logging"
	"github.com/davidruble/fuzle/pkg/fuzle"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuzle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "auto", cfg.Mode)
	require.Equal(t, fuzle.ModeAuto, cfg.ParsedMode())
	require.Equal(t, runtime.NumCPU(), cfg.Workers)
	require.Equal(t, []string{".fuz", ".xwm", ".wav"}, cfg.Extensions)
	require.Equal(t, OutputText, cfg.Output)
	require.Empty(t, cfg.ErrorsDir)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
mode: scan
workers: 3
extensions: [.fuz]
errors_dir: /tmp/broken
output: json
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, &Config{
		Mode:       "scan",
		Workers:    3,
		Extensions: []string{".fuz"},
		ErrorsDir:  "/tmp/broken",
		Output:     OutputJSON,
		LogLevel:   logging.LevelDebug,
		LogFormat:  logging.FormatJSON,
	}, cfg)
	require.Equal(t, fuzle.ModeScan, cfg.ParsedMode())
	require.Equal(t, &logging.Opts{Level: "debug", Format: "json"}, cfg.LogOpts())
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "mode: prefixed\n"))
	require.NoError(t, err)
	require.Equal(t, fuzle.ModePrefixed, cfg.ParsedMode())
	require.Equal(t, runtime.NumCPU(), cfg.Workers)
	require.Equal(t, OutputText, cfg.Output)
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "mdoe: scan\n", want: "field mdoe not found"},
		{name: "bad mode", content: "mode: guess\n", want: `unknown mode "guess"`},
		{name: "no workers", content: "workers: 0\n", want: "workers must be at least 1"},
		{name: "no extensions", content: "extensions: []\n", want: "at least one extension"},
		{name: "bad output", content: "output: csv\n", want: `unknown output "csv"`},
		{name: "bad log level", content: "log_level: degub\n", want: `unknown log level "degub"`},
		{name: "bad log format", content: "log_format: pretty\n", want: `unknown log format "pretty"`},
		{name: "not yaml", content: "mode: [\n", want: "error parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
