package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/cli/config"
	"github.com/leapstack-labs/dbtdoc/internal/cli/output"
	"github.com/leapstack-labs/dbtdoc/internal/docs"
	"github.com/leapstack-labs/dbtdoc/internal/engine"
	"github.com/leapstack-labs/dbtdoc/internal/state"
	"github.com/spf13/cobra"
)

// DefaultCatalogFile is the catalog used by index when no path is configured.
// It is created in the project directory.
const DefaultCatalogFile = ".dbtdoc.db"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the command context from the values the root
// command stored in cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}
}

// projectDirArg returns the absolute project directory named by args,
// defaulting to the working directory.
func projectDirArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid project directory %s: %w", dir, err)
	}
	return abs, nil
}

// NewEngine creates an engine for projectDir from the current configuration.
func (c *CommandContext) NewEngine(projectDir string) (*engine.Engine, error) {
	return engine.New(engine.Config{
		ProjectDir: projectDir,
		ModelPaths: c.Cfg.ModelPaths,
		MacroPaths: c.Cfg.MacroPaths,
		FirstOnly:  c.Cfg.FirstOnly,
		Logger:     c.Logger,
	})
}

// NewWriter creates the output writer from the current configuration.
func (c *CommandContext) NewWriter() *docs.Writer {
	w := docs.NewWriter(c.Logger)
	w.SchemaFile = c.Cfg.SchemaFile
	w.DocFile = c.Cfg.DocFile
	w.SchemaPath = c.Cfg.Schema
	w.DocPath = c.Cfg.Doc
	w.Backup = c.Cfg.Backup
	w.QuoteStrings = c.Cfg.QuoteString
	return w
}

// CatalogPath resolves the configured catalog path against projectDir.
// When fallback is false and no path is configured it returns "".
func (c *CommandContext) CatalogPath(projectDir string, fallback bool) string {
	path := c.Cfg.CatalogPath
	if path == "" {
		if !fallback {
			return ""
		}
		path = DefaultCatalogFile
	}
	if path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

// OpenCatalog opens (creating if needed) the catalog at path.
func (c *CommandContext) OpenCatalog(path string) (*state.SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create catalog directory: %w", err)
			}
		}
	}
	store, err := state.OpenCatalog(path, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	return store, nil
}

// relPath shortens path for display.
func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func toRunSummary(s *engine.Summary) output.RunSummary {
	if s == nil {
		return output.RunSummary{}
	}
	return output.RunSummary{
		RunID:       s.RunID,
		Directories: s.Directories,
		Files:       s.Files,
		Skipped:     s.Skipped,
		Records:     s.Records,
		DurationMS:  s.Duration.Milliseconds(),
	}
}

// directoryInfo converts a result for JSON output.
func directoryInfo(result *docs.DirectoryResult, w *docs.Writer) output.DirectoryInfo {
	info := output.DirectoryInfo{
		Path:      result.Path,
		Kind:      result.Kind.String(),
		Resources: make([]output.ResourceInfo, 0, len(result.Records)),
	}
	if w != nil {
		info.SchemaFile = w.SchemaPathFor(result.Path)
		info.DocFile = w.DocPathFor(result.Path)
	}
	for _, rec := range result.Records {
		ri := output.ResourceInfo{
			Name:        rec.Name,
			Keyword:     rec.Keyword.String(),
			Source:      rec.Source,
			Description: rec.Description,
		}
		if rec.DocName != "" {
			ri.Doc, _ = result.Descriptions.Get(rec.DocName)
		}
		ri.Properties, _ = rec.PropertiesYAML()
		info.Resources = append(info.Resources, ri)
	}
	return info
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// withContext returns ctx or Background when cobra has none.
func withContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
