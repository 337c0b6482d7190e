package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dbtdoc/internal/cli/output"
	"github.com/leapstack-labs/dbtdoc/internal/state"
	"github.com/spf13/cobra"
)

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	var (
		runs int
		find string
	)

	cmd := &cobra.Command{
		Use:   "index [dbt_dir]",
		Short: "Record documented resources in the catalog",
		Long: `Scan the project and store every documented resource in a SQLite catalog
without writing schema or doc files.

The catalog defaults to .dbtdoc.db in the project directory; set --catalog
or catalog_path to use another file. Each index run is kept, so earlier runs
can be listed with --runs and searched with --find.`,
		Example: `  # Index the current project
  dbtdoc index

  # Show the last 5 runs
  dbtdoc index --runs 5

  # Find a resource across runs
  dbtdoc index --find orders`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			dir, err := projectDirArg(args)
			if err != nil {
				return err
			}

			path := cc.CatalogPath(dir, true)
			store, err := cc.OpenCatalog(path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := withContext(cmd.Context())
			switch {
			case runs > 0:
				return showRuns(ctx, cc.Renderer, store, path, runs)
			case find != "":
				return findResources(ctx, cc.Renderer, store, path, find)
			default:
				return runIndex(ctx, cc, store, path, dir)
			}
		},
	}

	cmd.Flags().String("catalog", "", "Catalog file (default: <dbt_dir>/"+DefaultCatalogFile+")")
	cmd.Flags().Bool("first-only", false, "Stop after the first directory")
	cmd.Flags().IntVar(&runs, "runs", 0, "List the most recent runs instead of indexing")
	cmd.Flags().StringVar(&find, "find", "", "Find resources by name instead of indexing")
	return cmd
}

func runIndex(ctx context.Context, cc *CommandContext, store *state.SQLiteStore, path, dir string) error {
	eng, err := cc.NewEngine(dir)
	if err != nil {
		return err
	}

	summary, err := eng.Run(ctx, store)
	if err != nil {
		return err
	}

	run, err := store.GetRun(ctx, summary.RunID)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		cr := catalogRun(run)
		return r.JSON(output.IndexOutput{Catalog: path, Run: &cr})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Indexed"))
		r.Println("")
		r.Println(output.FormatKeyValue("Catalog", path))
		r.Println(output.FormatKeyValue("Run", run.ID))
		r.Println(output.FormatKeyValue("Directories", strconv.Itoa(run.Directories)))
		r.Println(output.FormatKeyValue("Records", strconv.Itoa(run.Records)))
	default:
		r.Success(fmt.Sprintf("Indexed %d records from %d directories", run.Records, run.Directories))
		r.Muted("Run " + run.ID + " in " + path)
	}
	return nil
}

func showRuns(ctx context.Context, r *output.Renderer, store *state.SQLiteStore, path string, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	out := make([]output.CatalogRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, catalogRun(run))
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.IndexOutput{Catalog: path, Runs: out})
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Status", "Started", "Directories", "Records", "Error"})
	for _, run := range out {
		t.AppendRow(table.Row{run.ID, run.Status, run.StartedAt, run.Directories, run.Records,
			output.Truncate(run.Error, docPreviewLen)})
	}
	renderTable(r, t, fmt.Sprintf("Runs (%d)", len(out)))
	return nil
}

func findResources(ctx context.Context, r *output.Renderer, store *state.SQLiteStore, path, name string) error {
	resources, err := store.FindResources(ctx, name)
	if err != nil {
		return err
	}

	out := make([]output.CatalogResource, 0, len(resources))
	for _, res := range resources {
		out = append(out, output.CatalogResource{
			RunID:       res.RunID,
			Directory:   res.Directory,
			Name:        res.Name,
			Kind:        res.Kind,
			Keyword:     res.Keyword,
			Source:      res.SourcePath,
			Description: res.Description,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.IndexOutput{Catalog: path, Resources: out})
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Kind", "Keyword", "Directory", "Source"})
	for _, res := range out {
		t.AppendRow(table.Row{res.RunID, res.Kind, res.Keyword, res.Directory, res.Source})
	}
	renderTable(r, t, fmt.Sprintf("%s (%d matches)", name, len(out)))
	return nil
}

// renderTable prints t with a heading in the renderer's mode.
func renderTable(r *output.Renderer, t table.Writer, title string) {
	r.Header(1, title)
	r.Println("")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return
	}
	t.SetStyle(table.StyleLight)
	r.Println(t.Render())
}

func catalogRun(run *state.Run) output.CatalogRun {
	cr := output.CatalogRun{
		ID:          run.ID,
		ProjectDir:  run.ProjectDir,
		Status:      string(run.Status),
		StartedAt:   formatTime(run.StartedAt),
		Directories: run.Directories,
		Records:     run.Records,
		Error:       run.Error,
	}
	if run.CompletedAt != nil {
		cr.CompletedAt = formatTime(*run.CompletedAt)
	}
	return cr
}
