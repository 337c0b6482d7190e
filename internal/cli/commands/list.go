package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dbtdoc/internal/cli/output"
	"github.com/leapstack-labs/dbtdoc/internal/docs"
	"github.com/leapstack-labs/dbtdoc/internal/engine"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// docPreviewLen bounds the doc text shown per row.
const docPreviewLen = 60

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dbt_dir]",
		Short: "List documented resources without writing files",
		Long: `List every resource dbtdoc would write, grouped by directory.

Nothing is written. Output adapts to environment:
  - Terminal: styled tables
  - Piped/Scripted: Markdown tables

Use --output to override: auto, text, markdown, json`,
		Example: `  # List resources of the current project
  dbtdoc list

  # As JSON
  dbtdoc list -o json path/to/dbt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}

	cmd.Flags().Bool("first-only", false, "Stop after the first directory")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	dir, err := projectDirArg(args)
	if err != nil {
		return err
	}

	eng, err := cc.NewEngine(dir)
	if err != nil {
		return err
	}

	collector := &engine.Collector{}
	summary, err := eng.Run(withContext(cmd.Context()), collector)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, collector.Results, summary)
	case output.ModeMarkdown:
		listMarkdown(r, dir, collector.Results, summary)
	default:
		listText(r, dir, collector.Results, summary)
	}
	return nil
}

func listJSON(r *output.Renderer, results []*docs.DirectoryResult, summary *engine.Summary) error {
	out := output.ListOutput{
		Directories: make([]output.DirectoryInfo, 0, len(results)),
		Summary:     toRunSummary(summary),
	}
	for _, result := range results {
		out.Directories = append(out.Directories, directoryInfo(result, nil))
	}
	return r.JSON(out)
}

func listMarkdown(r *output.Renderer, projectDir string, results []*docs.DirectoryResult, summary *engine.Summary) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Resources (%d total)", summary.Records)))
	r.Println("")

	for _, result := range results {
		r.Println(output.FormatHeader(2, relPath(projectDir, result.Path)))
		r.Println(output.FormatKeyValue("Kind", result.Kind.String()))
		r.Println("")
		if len(result.Records) == 0 {
			r.Println("_No documented resources._")
			r.Println("")
			continue
		}
		t := resourceTable(result)
		r.Println(t.RenderMarkdown())
		r.Println("")
	}
}

func listText(r *output.Renderer, projectDir string, results []*docs.DirectoryResult, summary *engine.Summary) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Header(1, fmt.Sprintf("Resources (%d total)", summary.Records))
	r.Println("")

	for _, result := range results {
		r.Println(styles.Bold.Render(titleCaser.String(result.Kind.String())) + " " +
			styles.Path.Render(relPath(projectDir, result.Path)))
		if len(result.Records) == 0 {
			r.Muted("  (no documented resources)")
			r.Println("")
			continue
		}

		t := resourceTable(result)
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		r.Println("")
	}

	if summary.Skipped > 0 {
		r.Muted(fmt.Sprintf("%d non-SQL files skipped", summary.Skipped))
	}
}

func resourceTable(result *docs.DirectoryResult) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Keyword", "Source", "Doc"})

	for i, rec := range result.Records {
		doc := ""
		if rec.DocName != "" {
			doc, _ = result.Descriptions.Get(rec.DocName)
		}
		t.AppendRow(table.Row{
			i + 1,
			rec.Name,
			rec.Keyword.String(),
			filepath.Base(rec.Source),
			output.Truncate(oneLine(doc), docPreviewLen),
		})
	}
	return t
}

// oneLine collapses whitespace so a doc fits a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
