package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dbtdoc/internal/cli/config"
)

// generateConfigDocs writes the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Flag        string
	Description string
	Category    string // "output", "project", "cli"
}

// EnvVar returns the environment variable that sets the field.
func (f ConfigField) EnvVar() string {
	return config.EnvPrefix + strings.ToUpper(f.Name)
}

// DefaultCell renders the built-in default for a table cell.
func (f ConfigField) DefaultCell() string {
	v, ok := config.Defaults()[f.Name]
	if !ok {
		return "-"
	}
	return InlineCode(fmt.Sprint(v))
}

// getConfigSchema returns the configuration schema definition.
// Keep in sync with internal/cli/config/types.go.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "schema_file", Type: "string", Description: "File name of the generated schema in each directory", Category: "output"},
		{Name: "doc_file", Type: "string", Description: "File name of the generated docs in each directory", Category: "output"},
		{Name: "quote_string", Type: "bool", Flag: "--quote-string", Description: "Double-quote strings taken from doc comments", Category: "output"},
		{Name: "backup", Type: "bool", Flag: "--backup", Description: "Back up existing schema and doc files before writing", Category: "output"},
		{Name: "schema", Type: "string", Flag: "--schema", Description: "Single schema file used instead of each directory's schema file", Category: "output"},
		{Name: "doc", Type: "string", Flag: "--doc", Description: "Single doc file used instead of each directory's doc file", Category: "output"},
		{Name: "first_only", Type: "bool", Flag: "--first-only", Description: "Stop after the first directory", Category: "output"},
		{Name: "model_paths", Type: "[]string", Description: "Override model-paths from dbt_project.yml", Category: "project"},
		{Name: "macro_paths", Type: "[]string", Description: "Override macro-paths from dbt_project.yml", Category: "project"},
		{Name: "catalog_path", Type: "string", Flag: "--catalog", Description: "SQLite catalog recording each run", Category: "project"},
		{Name: "verbose", Type: "bool", Flag: "--verbose", Description: "Debug logging on stderr", Category: "cli"},
		{Name: "output", Type: "string", Flag: "--output", Description: "Output format: auto, text, markdown or json", Category: "cli"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "dbtdoc configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("dbtdoc reads an optional %s YAML file from the working directory, or the file given with %s.",
		InlineCode(config.DefaultConfigFile), InlineCode("--config")))

	sections := []struct {
		category string
		title    string
		intro    string
	}{
		{"output", "Output Settings", "Control the files written in each directory:"},
		{"project", "Project Settings", "Where dbtdoc looks for SQL files and records runs:"},
		{"cli", "CLI Settings", "Terminal behaviour:"},
	}

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Flag", "Description"}
	for _, sec := range sections {
		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			flag := "-"
			if f.Flag != "" {
				flag = InlineCode(f.Flag)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, f.DefaultCell(), flag, f.Description})
		}
		w.Header(2, sec.title)
		w.Paragraph(sec.intro)
		w.Table(headers, rows)
	}

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# .dbtdoc
schema_file: dbt_schema.yml
doc_file: docs.md
quote_string: true
backup: false
first_only: false

# Overrides for dbt_project.yml
model_paths:
  - models
macro_paths:
  - macros

catalog_path: .dbtdoc.db
output: auto`)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Each field can be set with %s and the upper-cased field name. List fields take comma-separated values:", InlineCode(config.EnvPrefix)))
	w.CodeBlock("bash", `export DBTDOC_QUOTE_STRING=false
export DBTDOC_MODEL_PATHS=models,staging`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
