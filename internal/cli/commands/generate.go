package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/dbtdoc/internal/cli/output"
	"github.com/leapstack-labs/dbtdoc/internal/docs"
	"github.com/leapstack-labs/dbtdoc/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [dbt_dir]",
		Aliases: []string{"gen"},
		Short:   "Generate schema and docs files from SQL doc comments",
		Long: `Generate dbt_schema.yml and docs.md in every model and macro directory.

Doc comments in .sql files become descriptions; a fenced YAML block
(` + "```dbt ... ```" + `) supplies columns (models) or arguments (macros).
Existing outputs are overwritten, or renamed first with --backup.

This is also what runs when dbtdoc is given a directory and no command.`,
		Example: `  # Regenerate in the current project
  dbtdoc generate .

  # Same, as the default action
  dbtdoc path/to/dbt

  # Keep the previous files
  dbtdoc generate -b path/to/dbt

  # Also record the run in a catalog
  dbtdoc generate --catalog .dbtdoc.db path/to/dbt`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunGenerate,
	}

	AddGenerateFlags(cmd.Flags())
	return cmd
}

// AddGenerateFlags registers the generation flags on fs.
func AddGenerateFlags(fs *pflag.FlagSet) {
	fs.BoolP("backup", "b", false, "Back up existing schema and doc files before writing")
	fs.StringP("doc", "d", "", "Write docs to this file instead of each directory's doc file")
	fs.StringP("schema", "s", "", "Write the schema to this file instead of each directory's schema file")
	fs.Bool("quote-string", true, "Double-quote strings taken from doc comments")
	fs.Bool("first-only", false, "Stop after the first directory")
	fs.String("catalog", "", "Record the run in this SQLite catalog")
}

// RunGenerate runs a generation pass for the project named by args.
func RunGenerate(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	dir, err := projectDirArg(args)
	if err != nil {
		return err
	}

	r := cc.Renderer
	var progress engine.Sink
	if r.EffectiveMode() == output.ModeText {
		progress = engine.SinkFunc(func(_ context.Context, result *docs.DirectoryResult) error {
			r.StatusLine(relPath(dir, result.Path), "success",
				fmt.Sprintf("%s, %d records", result.Kind, len(result.Records)))
			return nil
		})
	}

	res, err := cc.generate(withContext(cmd.Context()), dir, progress)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(res.jsonOutput())
	case output.ModeMarkdown:
		res.markdown(r, dir)
	default:
		r.Println("")
		r.Success(fmt.Sprintf("Generated %d records in %d directories (%dms)",
			res.summary.Records, res.summary.Directories, res.summary.Duration.Milliseconds()))
		if res.catalog != "" {
			r.Muted("Run " + res.summary.RunID + " recorded in " + res.catalog)
		}
	}
	return nil
}

type generateResult struct {
	summary *engine.Summary
	results []*docs.DirectoryResult
	writer  *docs.Writer
	catalog string
}

// generate runs one pass that writes the outputs, records the run when a
// catalog is configured and reports each directory to progress.
func (c *CommandContext) generate(ctx context.Context, projectDir string, progress engine.Sink) (*generateResult, error) {
	eng, err := c.NewEngine(projectDir)
	if err != nil {
		return nil, err
	}

	res := &generateResult{writer: c.NewWriter()}
	collector := &engine.Collector{}
	sinks := engine.MultiSink{res.writer}

	if path := c.CatalogPath(projectDir, false); path != "" {
		store, err := c.OpenCatalog(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		sinks = append(sinks, store)
		res.catalog = path
	}

	sinks = append(sinks, collector)
	if progress != nil {
		sinks = append(sinks, progress)
	}

	res.summary, err = eng.Run(ctx, sinks)
	res.results = collector.Results
	if err != nil {
		return res, err
	}
	return res, nil
}

func (g *generateResult) jsonOutput() output.GenerateOutput {
	out := output.GenerateOutput{
		Directories: make([]output.DirectoryInfo, 0, len(g.results)),
		Summary:     toRunSummary(g.summary),
		Catalog:     g.catalog,
	}
	for _, result := range g.results {
		out.Directories = append(out.Directories, directoryInfo(result, g.writer))
	}
	return out
}

func (g *generateResult) markdown(r *output.Renderer, projectDir string) {
	r.Println(output.FormatHeader(1, "Generated documentation"))
	r.Println("")
	r.Println(output.FormatKeyValue("Run", g.summary.RunID))
	r.Println(output.FormatKeyValue("Directories", strconv.Itoa(g.summary.Directories)))
	r.Println(output.FormatKeyValue("Records", strconv.Itoa(g.summary.Records)))
	if g.catalog != "" {
		r.Println(output.FormatKeyValue("Catalog", g.catalog))
	}
	r.Println("")

	for _, result := range g.results {
		r.Println(output.FormatHeader(2, relPath(projectDir, result.Path)))
		r.Println(output.FormatKeyValue("Kind", result.Kind.String()))
		r.Println(output.FormatKeyValue("Schema", relPath(projectDir, g.writer.SchemaPathFor(result.Path))))
		r.Println(output.FormatKeyValue("Docs", relPath(projectDir, g.writer.DocPathFor(result.Path))))
		r.Println(output.FormatKeyValue("Records", strconv.Itoa(len(result.Records))))
		r.Println("")
	}
}
