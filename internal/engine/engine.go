// Package engine drives a documentation pass over a dbt project.
// It walks the model and macro directories, parses every SQL file and hands
// one assembled result per directory to a Sink.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/dbtdoc/internal/config"
	"github.com/leapstack-labs/dbtdoc/internal/docs"
	"github.com/leapstack-labs/dbtdoc/internal/fragment"
	"github.com/leapstack-labs/dbtdoc/internal/loader"
	"github.com/leapstack-labs/dbtdoc/internal/parser"
)

// Engine runs documentation passes over one project.
type Engine struct {
	projectDir string
	project    *config.ProjectConfig
	firstOnly  bool
	logger     *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// ProjectDir is the directory holding dbt_project.yml.
	ProjectDir string
	// ModelPaths and MacroPaths override the project file when set.
	ModelPaths []string
	MacroPaths []string
	// FirstOnly stops a pass after the first directory.
	FirstOnly bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New loads the project configuration and returns an engine for it.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	project, err := config.LoadProject(cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	if len(cfg.ModelPaths) > 0 {
		project.ModelPaths = cfg.ModelPaths
	}
	if len(cfg.MacroPaths) > 0 {
		project.MacroPaths = cfg.MacroPaths
	}

	logger.Debug("initializing engine",
		"project_dir", cfg.ProjectDir,
		"model_paths", project.ModelPaths,
		"macro_paths", project.MacroPaths)

	return &Engine{
		projectDir: cfg.ProjectDir,
		project:    project,
		firstOnly:  cfg.FirstOnly,
		logger:     logger,
	}, nil
}

// Project returns the loaded project configuration.
func (e *Engine) Project() *config.ProjectConfig {
	return e.project
}

// ProjectDir returns the project root.
func (e *Engine) ProjectDir() string {
	return e.projectDir
}

// Summary describes a finished (or stopped) pass.
type Summary struct {
	RunID       string
	Directories int
	Files       int
	Skipped     int
	Records     int
	Duration    time.Duration
}

// Run performs one pass. Directories are processed strictly in order and
// each result is written to sink before the next directory is read. The
// first error stops the pass; results already written stay written.
func (e *Engine) Run(ctx context.Context, sink Sink) (*Summary, error) {
	start := time.Now()
	run := RunInfo{
		ID:         uuid.NewString(),
		ProjectDir: e.projectDir,
		StartedAt:  start,
	}
	logger := e.logger.With("run_id", run.ID)
	summary := &Summary{RunID: run.ID}

	observer, _ := sink.(RunObserver)
	if observer != nil {
		if err := observer.BeginRun(ctx, run); err != nil {
			return summary, fmt.Errorf("failed to begin run: %w", err)
		}
	}

	logger.Info("starting generation", "project_dir", e.projectDir)
	runErr := e.run(ctx, sink, logger, summary)
	summary.Duration = time.Since(start)

	if observer != nil {
		if err := observer.EndRun(ctx, run, summary, runErr); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to end run: %w", err))
		}
	}
	if runErr != nil {
		logger.Error("generation failed", "error", runErr)
		return summary, runErr
	}

	logger.Info("generation completed",
		"directories", summary.Directories,
		"files", summary.Files,
		"records", summary.Records,
		"duration_ms", summary.Duration.Milliseconds())
	return summary, nil
}

func (e *Engine) run(ctx context.Context, sink Sink, logger *slog.Logger, summary *Summary) error {
	dirs, err := loader.Enumerate(e.projectDir, e.project.Directories(), logger)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := e.scanDirectory(dir, logger, summary)
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, result); err != nil {
			return fmt.Errorf("failed to write %s: %w", dir, err)
		}

		summary.Directories++
		summary.Records += len(result.Records)

		if e.firstOnly {
			logger.Debug("stopping after first directory", "dir", dir)
			break
		}
	}
	return nil
}

// ScanDirectory assembles the result of a single directory without writing it.
func (e *Engine) ScanDirectory(dir string) (*docs.DirectoryResult, error) {
	return e.scanDirectory(dir, e.logger, &Summary{})
}

func (e *Engine) scanDirectory(dir string, logger *slog.Logger, summary *Summary) (*docs.DirectoryResult, error) {
	listing, err := loader.ListSources(dir)
	if err != nil {
		return nil, err
	}

	for _, path := range listing.Skipped {
		logger.Info("skipping non-sql file", "path", path)
	}
	summary.Skipped += len(listing.Skipped)

	result := docs.NewDirectoryResult(dir)
	for _, path := range listing.Sources {
		if err := e.scanFile(path, result, logger); err != nil {
			return nil, err
		}
		summary.Files++
	}
	result.Finalize()

	logger.Debug("directory scanned",
		"dir", dir,
		"kind", result.Kind.String(),
		"records", len(result.Records))
	return result, nil
}

func (e *Engine) scanFile(path string, result *docs.DirectoryResult, logger *slog.Logger) error {
	content, err := loader.ReadSource(path)
	if err != nil {
		return err
	}

	units := parser.Split(content)
	for _, unit := range units {
		rec, err := parser.Classify(unit, filepath.Base(path))
		if err != nil {
			return withFile(err, path)
		}

		var frag *fragment.Node
		if unit.HasFragment {
			frag, err = fragment.Parse(unit.Fragment)
			if err != nil {
				return withFile(err, path)
			}
		}

		result.Add(path, rec, unit, frag)
	}

	logger.Debug("file scanned", "path", path, "units", len(units))
	return nil
}

// withFile records path on the typed parse errors so their message names
// the offending file.
func withFile(err error, path string) error {
	var mh *parser.MalformedHeaderError
	if errors.As(err, &mh) {
		mh.File = path
		return err
	}
	var mf *fragment.MalformedFragmentError
	if errors.As(err, &mf) {
		mf.File = path
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
