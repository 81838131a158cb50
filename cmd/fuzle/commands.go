package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davidruble/fuzle/internal/batch"
	"github.com/davidruble/fuzle/internal/config"
	"github.com/davidruble/fuzle/internal/container"
	"github.com/davidruble/fuzle/internal/ffmpeg"
	"github.com/davidruble/fuzle/internal/inspect"
	"github.com/davidruble/fuzle/internal/probe"
	"github.com/davidruble/fuzle/pkg/fuzle"
)

// durationRecord is one line of the duration command output
type durationRecord struct {
	Path          string  `json:"path" yaml:"path"`
	Format        string  `json:"format,omitempty" yaml:"format,omitempty"`
	Duration      float64 `json:"duration" yaml:"duration"`
	Channels      int     `json:"channels,omitempty" yaml:"channels,omitempty"`
	SampleRate    int     `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	BitsPerSample int     `json:"bits_per_sample,omitempty" yaml:"bits_per_sample,omitempty"`
	LipSize       int     `json:"lip_size,omitempty" yaml:"lip_size,omitempty"`
	Error         string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *app) durationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration <file or directory>...",
		Short: "Print the duration in seconds of voice files",
		Long: `Print the duration in seconds of voice files. Directories are walked
recursively and the files matching --ext are processed concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDuration(cmd, args)
		},
	}

	defaults := config.Default()
	cmd.Flags().IntVarP(&a.workers, "workers", "j", defaults.Workers, "Number of files processed in parallel")
	cmd.Flags().StringSliceVar(&a.extensions, "ext", defaults.Extensions, "File extensions picked up in directories")
	cmd.Flags().StringVarP(&a.errorsDir, "errors-dir", "e", "", "Save a copy of files with errors to this directory")
	return cmd
}

func (a *app) runDuration(cmd *cobra.Command, args []string) error {
	prober := probe.New(a.cfg.ParsedMode(), a.log)
	runner := batch.NewRunner(prober, batch.Options{
		Workers:    a.cfg.Workers,
		Extensions: a.cfg.Extensions,
		ErrorDir:   a.cfg.ErrorsDir,
	}, a.log)

	summary, err := runner.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.cfg.Output == config.OutputText {
		for _, res := range summary.Results {
			if res.Err != nil {
				fmt.Fprintf(w, "%s\terror: %v\n", res.Path, res.Err)
				continue
			}
			fmt.Fprintf(w, "%s\t%.3f\n", res.Path, res.Info.Duration)
		}
	} else {
		records := make([]durationRecord, 0, len(summary.Results))
		for _, res := range summary.Results {
			records = append(records, newDurationRecord(res))
		}
		if err := a.encode(w, records); err != nil {
			return err
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errFailed, summary.Failed, len(summary.Results))
	}
	return nil
}

func newDurationRecord(res batch.Result) durationRecord {
	if res.Err != nil {
		return durationRecord{Path: res.Path, Error: res.Err.Error()}
	}
	return durationRecord{
		Path:          res.Path,
		Format:        res.Info.Format,
		Duration:      res.Info.Duration,
		Channels:      res.Info.Channels,
		SampleRate:    res.Info.SampleRate,
		BitsPerSample: res.Info.BitsPerSample,
		LipSize:       res.Info.LipSize,
	}
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the container layout, xWMA header and RIFF chunks of a voice file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			buf, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("error reading input file: %w", err)
			}

			parser := fuzle.NewParser(fuzle.WithMode(a.cfg.ParsedMode()), fuzle.WithLogger(a.log))
			report, err := inspect.Inspect(parser, path, buf)
			if err != nil {
				return err
			}

			if a.cfg.Output == config.OutputText {
				_, err := io.WriteString(cmd.OutOrStdout(), report.String())
				return err
			}
			return a.encode(cmd.OutOrStdout(), report)
		},
	}
}

func (a *app) extractCommand() *cobra.Command {
	var (
		outputDir string
		toWAV     bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file or directory>...",
		Short: "Split FUZ files into their .lip and .xwm parts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only FUZ files carry a lip-sync prefix worth splitting off
			runner := batch.NewRunner(nil, batch.Options{Extensions: []string{".fuz"}}, a.log)
			files, err := runner.Collect(args)
			if err != nil {
				return err
			}

			var converter *ffmpeg.Converter
			if toWAV && !dryRun {
				if converter, err = ffmpeg.NewConverter(a.log); err != nil {
					return err
				}
			}

			enc := container.NewEncoder(a.log, dryRun)
			w := cmd.OutOrStdout()
			var errs *multierror.Error
			// xwm path -> input it was extracted from
			extracted := make(map[string]string)
			for _, file := range files {
				// keep the folder layout of the inputs, voice types reuse file names
				dir := filepath.Join(outputDir, file.RelDir)
				_, xwmPath := container.ExtractPaths(file.Path, dir)
				if prev, ok := extracted[xwmPath]; ok {
					errs = multierror.Append(errs, fmt.Errorf("%s: output %s already extracted from %s", file.Path, xwmPath, prev))
					continue
				}
				extracted[xwmPath] = file.Path

				if !dryRun {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("error creating output directory: %w", err)
					}
				}

				out, err := enc.Extract(file.Path, dir)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				if out.LipPath != "" {
					fmt.Fprintf(w, "%s -> %s\n", file.Path, out.LipPath)
				}
				fmt.Fprintf(w, "%s -> %s\n", file.Path, out.XWMPath)

				if converter == nil {
					continue
				}
				wavFile, err := converter.ConvertToWAV(out.XWMPath)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				fmt.Fprintf(w, "%s -> %s\n", file.Path, wavFile)
			}
			return errs.ErrorOrNil()
		},
	}

	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&toWAV, "wav", false, "Also convert the xwm stream to wav (requires ffmpeg)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the inputs without writing any file")
	return cmd
}

func (a *app) packCommand() *cobra.Command {
	var (
		lipFile    string
		outputFile string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "pack <file.xwm>",
		Short: "Build a FUZ file from an xwm stream and optional lip-sync data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xwmFile := args[0]
			if outputFile == "" {
				outputFile = strings.TrimSuffix(xwmFile, filepath.Ext(xwmFile)) + ".fuz"
			}

			enc := container.NewEncoder(a.log, dryRun)
			if err := enc.Pack(lipFile, xwmFile, outputFile); err != nil {
				return err
			}
			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", xwmFile, outputFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lipFile, "lip", "", "Lip-sync data to prepend")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file (defaults to the input name with a .fuz extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the inputs without writing any file")
	return cmd
}

func (a *app) wavCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wav <file.xwm or directory>...",
		Short: "Convert xwm streams to wav with ffmpeg",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converter, err := ffmpeg.NewConverter(a.log)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			var errs *multierror.Error
			for _, input := range args {
				info, err := os.Stat(input)
				if err != nil {
					errs = multierror.Append(errs, fmt.Errorf("error reading input path: %w", err))
					continue
				}

				var converted []string
				if info.IsDir() {
					converted, err = converter.ConvertDirectory(input)
				} else {
					var wavFile string
					if wavFile, err = converter.ConvertToWAV(input); err == nil {
						converted = append(converted, wavFile)
					}
				}
				for _, wavFile := range converted {
					fmt.Fprintln(w, wavFile)
				}
				errs = multierror.Append(errs, err)
			}
			return errs.ErrorOrNil()
		},
	}
}

// encode writes v to w as JSON or YAML, following the output setting
func (a *app) encode(w io.Writer, v any) error {
	switch a.cfg.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output %q", a.cfg.Output)
	}
}
