package docs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/fragment"
	"gopkg.in/yaml.v3"
)

// Default output file names.
const (
	DefaultSchemaFile = "dbt_schema.yml"
	DefaultDocFile    = "docs.md"
)

const (
	docBanner    = "# This file was auto-generated by dbtdoc.\n# Don't manually update.\n"
	schemaBanner = docBanner + "---\n"

	// backupTimeFormat is an ISO timestamp with ':' replaced by '-'.
	backupTimeFormat = "2006-01-02T15-04-05.000000"
)

// Writer writes a DirectoryResult to disk.
type Writer struct {
	// SchemaFile and DocFile are the file names used inside each directory.
	SchemaFile string
	DocFile    string

	// SchemaPath and DocPath, when set, replace the per-directory paths.
	SchemaPath string
	DocPath    string

	// Backup renames existing outputs instead of overwriting them.
	Backup bool

	// QuoteStrings double-quotes every string taken from a doc comment.
	QuoteStrings bool

	Now    func() time.Time
	Logger *slog.Logger
}

// NewWriter returns a writer with default file names and quoting on.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{
		SchemaFile:   DefaultSchemaFile,
		DocFile:      DefaultDocFile,
		QuoteStrings: true,
		Logger:       logger,
	}
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// SchemaPathFor returns where the property file of dir is written.
func (w *Writer) SchemaPathFor(dir string) string {
	if w.SchemaPath != "" {
		return w.SchemaPath
	}
	name := w.SchemaFile
	if name == "" {
		name = DefaultSchemaFile
	}
	return filepath.Join(dir, name)
}

// DocPathFor returns where the markdown file of dir is written.
func (w *Writer) DocPathFor(dir string) string {
	if w.DocPath != "" {
		return w.DocPath
	}
	name := w.DocFile
	if name == "" {
		name = DefaultDocFile
	}
	return filepath.Join(dir, name)
}

// Write renders result and writes both output files.
func (w *Writer) Write(ctx context.Context, result *DirectoryResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	schema, err := w.RenderSchema(result)
	if err != nil {
		return fmt.Errorf("render schema for %s: %w", result.Path, err)
	}

	if err := w.writeFile(w.SchemaPathFor(result.Path), schema); err != nil {
		return err
	}
	if err := w.writeFile(w.DocPathFor(result.Path), RenderDocs(result)); err != nil {
		return err
	}

	w.logger().Debug("directory written",
		"dir", result.Path,
		"kind", result.Kind.String(),
		"records", len(result.Records),
		"descriptions", result.Descriptions.Len())
	return nil
}

func (w *Writer) writeFile(path string, content []byte) error {
	if w.Backup {
		if err := w.backup(path); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// backup renames an existing file at path to <stem>_<timestamp><ext>_.
func (w *Writer) backup(path string) error {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil
	}

	target := BackupName(path, w.now())
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	w.logger().Info("backed up existing file", "path", path, "backup", target)
	return nil
}

// BackupName returns the name an existing output is moved to.
func BackupName(path string, t time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return stem + "_" + t.Format(backupTimeFormat) + ext + "_"
}

// RenderSchema renders the property file. A result without records renders
// the banner only.
func (w *Writer) RenderSchema(result *DirectoryResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(schemaBanner)

	if len(result.Records) == 0 {
		return buf.Bytes(), nil
	}

	kind := result.Kind
	if kind == KindUnknown {
		kind = KindModels
	}

	records := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range result.Records {
		records.Content = append(records.Content, w.recordNode(rec))
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			fragment.StringNode("version", false),
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: "2"},
			fragment.StringNode(kind.String(), false),
			records,
		},
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Writer) recordNode(rec OutputRecord) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, fragment.StringNode(key, false), value)
	}

	add("name", fragment.StringNode(rec.Name, w.QuoteStrings))
	if rec.Description != "" {
		add("description", fragment.StringNode(rec.Description, w.QuoteStrings))
	}
	for _, f := range rec.Properties {
		add(f.Key, f.Value.YAML(w.QuoteStrings))
	}
	return m
}

// RenderDocs renders the markdown file: one docs block per description in
// insertion order.
func RenderDocs(result *DirectoryResult) []byte {
	var buf bytes.Buffer
	buf.WriteString(docBanner)

	for _, name := range result.Descriptions.Keys() {
		text, _ := result.Descriptions.Get(name)
		_, _ = fmt.Fprintf(&buf, "{%% docs %s %%}\n%s\n{%% enddocs %%}\n\n", name, text)
	}
	return buf.Bytes()
}
