package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/davidruble/fuzle/internal/config"
	"github.com/davidruble/fuzle/internal/logging"
)

const VERSION = "1.0.0"

// errFailed signals that some inputs failed after their errors were reported
var errFailed = errors.New("some files could not be processed")

// app holds the state shared by the commands
type app struct {
	configPath string
	debug      bool

	// flag values, applied over the config when set
	mode       string
	output     string
	logLevel   string
	logFormat  string
	workers    int
	extensions []string
	errorsDir  string

	cfg *config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fuzle",
		Short: "Compute the duration of FUZ and xWMA voice files",
		Long: `fuzle reads the xWMA header of Skyrim FUZ voice files and computes their
playback duration from the dpds packet table, without decoding any audio.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.mode, "mode", "auto", "RIFF locator: auto, prefixed or scan")
	flags.StringVarP(&a.output, "output", "O", config.OutputText, "Output format: text, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", logging.LevelInfo, "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	flags.BoolVarP(&a.debug, "debug", "d", false, "Debug mode, same as --log-level debug")

	root.AddCommand(
		a.durationCommand(),
		a.inspectCommand(),
		a.extractCommand(),
		a.packCommand(),
		a.wavCommand(),
		versionCommand(),
	)
	return root
}

// setup loads the config file, applies the flags that were set over it and
// builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = a.mode
	}
	if flags.Changed("output") {
		cfg.Output = a.output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if flags.Changed("ext") {
		cfg.Extensions = a.extensions
	}
	if flags.Changed("errors-dir") {
		cfg.ErrorsDir = a.errorsDir
	}
	if a.debug {
		cfg.LogLevel = logging.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := cfg.LogOpts()
	opts.Writer = cmd.ErrOrStderr()
	log, err := logging.NewLogger(opts)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fuzle version %s\n", VERSION)
			return err
		},
	}
}
