package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Frontmatter("Title", "About")
	w.Header(9, "Deep")
	w.Table([]string{"A", "B"}, [][]string{{"x|y", "line\nbreak"}})
	w.Table([]string{"A"}, nil)
	w.CodeBlock("bash", "echo hi\n")

	out := w.String()
	assert.True(t, strings.HasPrefix(out, "---\ntitle: \"Title\"\n"))
	assert.Contains(t, out, "###### Deep\n")
	assert.Contains(t, out, "| x\\|y | line break |\n")
	assert.Equal(t, 1, strings.Count(out, "| A |"), "empty table is skipped")
	assert.Contains(t, out, "```bash\necho hi\n```\n")
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Stop after the first", cleanDescription("  stop after  the first "))
	assert.Equal(t, "-", cleanDescription("   "))
	assert.Equal(t, "Two words", cleanDescription("two\n  words"))
}

func TestCleanExample(t *testing.T) {
	in := "\n    dbtdoc .\n      dbtdoc list .\n"
	assert.Equal(t, "dbtdoc .\n  dbtdoc list .", cleanExample(in))
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, overviewFile))
	require.NoError(t, err)
	assert.Contains(t, string(index), generatedMarker)
	assert.Contains(t, string(index), "[`generate`](/cli/generate)")
	assert.Contains(t, string(index), "`DBTDOC_SCHEMA_FILE`")
	assert.Contains(t, string(index), "`--quote-string`")

	for _, name := range []string{"generate", "list", "index", "watch", "init", "version"} {
		assert.FileExists(t, filepath.Join(dir, name+".md"))
	}

	indexPage, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(indexPage), "# index")
	assert.NotContains(t, string(indexPage), "# CLI Reference")

	page, err := os.ReadFile(filepath.Join(dir, "generate.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "```bash\ndbtdoc generate")
	assert.Contains(t, string(page), "## Aliases")
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	page, err := os.ReadFile(filepath.Join(dir, "configuration.md"))
	require.NoError(t, err)
	for _, f := range getConfigSchema() {
		assert.Contains(t, string(page), "`"+f.Name+"`")
	}
	assert.Contains(t, string(page), "| `schema_file` | string | `dbt_schema.yml` |")
}
