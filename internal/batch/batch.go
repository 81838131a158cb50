package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/davidruble/fuzle/internal/probe"
)

// Options represents the batch options
type Options struct {
	Workers    int
	Extensions []string // files found in directories are kept when their extension is listed
	ErrorDir   string   // failed inputs are copied here when set
	NoWrite    bool
}

// Result is the outcome of probing one file
type Result struct {
	Path string
	Info *probe.Info
	Err  error
}

// Summary holds the results of a run, sorted by path
type Summary struct {
	Results []Result
	Failed  int
	Elapsed time.Duration
}

// Err returns every failure of the run as a single error, or nil
func (s *Summary) Err() error {
	var errs *multierror.Error
	for _, res := range s.Results {
		if res.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
		}
	}
	return errs.ErrorOrNil()
}

// Runner computes the durations of many voice files concurrently
type Runner struct {
	options Options
	prober  *probe.Prober
	log     *slog.Logger
}

// NewRunner creates a new runner
func NewRunner(prober *probe.Prober, options Options, log *slog.Logger) *Runner {
	if options.Workers < 1 {
		options.Workers = 1
	}
	if len(options.Extensions) == 0 {
		options.Extensions = probe.Extensions
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		options: options,
		prober:  prober,
		log:     log,
	}
}

// File is an input found by Collect
type File struct {
	Path string
	// RelDir is the folder of Path relative to the directory it was found
	// under, or "" for files given directly
	RelDir string
}

// Collect expands paths into the list of files to probe, sorted by path.
// Directories are walked recursively and filtered by extension, files are
// kept as given.
func (r *Runner) Collect(paths []string) ([]File, error) {
	seen := make(map[string]bool)
	var files []File
	add := func(path, relDir string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, File{Path: path, RelDir: relDir})
		}
	}

	for _, input := range paths {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("error reading input path: %w", err)
		}
		if !info.IsDir() {
			add(input, "")
			continue
		}

		r.log.Debug("scanning directory", "path", input)
		err = filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !probe.IsVoiceFile(path, r.options.Extensions) {
				return nil
			}
			relDir, err := filepath.Rel(input, filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("error calculating relative path: %w", err)
			}
			if relDir == "." {
				relDir = ""
			}
			add(path, relDir)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error scanning directory: %w", err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Run probes every file found under paths. Failures of individual files are
// reported in the summary; the returned error is only set when the inputs
// could not be listed or ctx was cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	files, err := r.Collect(paths)
	if err != nil {
		return nil, err
	}

	r.log.Info("planning to process voice files", "count", len(files), "workers", r.options.Workers)
	startTime := time.Now()

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.options.Workers)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.probeFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Results: results,
		Elapsed: time.Since(startTime),
	}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
		}
	}

	r.log.Info("processed voice files",
		"ok", len(files)-summary.Failed,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)
	return summary, nil
}

func (r *Runner) probeFile(file File) Result {
	path := file.Path
	info, err := r.prober.Probe(path)
	if err != nil {
		r.log.Warn("could not compute duration", "path", path, "error", err)
		if r.options.ErrorDir != "" {
			if err := r.saveErrorFile(file); err != nil {
				r.log.Error("could not save failed file", "path", path, "error", err)
			}
		}
		return Result{Path: path, Err: err}
	}

	r.log.Debug("computed duration", "path", path, "duration", info.Duration)
	return Result{Path: path, Info: info}
}

// saveErrorFile saves a copy of a file that caused an error, in the same
// relative folder it was found in
func (r *Runner) saveErrorFile(file File) error {
	if r.options.NoWrite {
		return nil
	}

	// Create error directory if it doesn't exist
	errorDir := filepath.Join(r.options.ErrorDir, file.RelDir)
	if err := os.MkdirAll(errorDir, 0755); err != nil {
		return fmt.Errorf("error creating error directory: %w", err)
	}

	inFile, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("error opening file for error copy: %w", err)
	}
	defer inFile.Close()

	errorFilePath := filepath.Join(errorDir, filepath.Base(file.Path))
	outFile, err := os.Create(errorFilePath)
	if err != nil {
		return fmt.Errorf("error creating error file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, inFile); err != nil {
		return fmt.Errorf("error copying file content: %w", err)
	}
	return outFile.Close()
}
