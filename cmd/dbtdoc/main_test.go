// Package main provides tests for the dbtdoc CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbtdoc/internal/cli"
	"github.com/leapstack-labs/dbtdoc/internal/cli/output"
	"github.com/leapstack-labs/dbtdoc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command in a clean working directory.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func sampleProject(t *testing.T) string {
	t.Helper()
	return testutil.WriteProject(t, map[string]string{
		"dbt_project.yml":   testutil.DefaultProjectFile,
		"models/orders.sql": "/*\nOrders table\n```dbt\ncolumns:\n  - name: id\n    description: Key\n```\n*/\nselect 1",
		"macros/utils.sql":  "/* Converts cents */\n{% macro cents(col) %} {{ col }} / 100 {% endmacro %}",
	})
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dbtdoc v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"generate", "list", "index", "watch", "init", "version", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestNoArgsShowsHelp(t *testing.T) {
	out, _, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestDefaultActionGenerates(t *testing.T) {
	root := sampleProject(t)

	_, _, err := run(t, root)
	require.NoError(t, err)

	schema := testutil.ReadFile(t, root, "models/dbt_schema.yml")
	assert.Contains(t, schema, "version: 2")
	assert.Contains(t, schema, `name: "orders"`)
	assert.Contains(t, schema, `description: "{{ doc('orders') }}"`)
	assert.Contains(t, testutil.ReadFile(t, root, "models/docs.md"), "{% docs orders %}\nOrders table\n{% enddocs %}")
	assert.Contains(t, testutil.ReadFile(t, root, "macros/dbt_schema.yml"), "macros:")
}

func TestGenerateUnquoted(t *testing.T) {
	root := sampleProject(t)

	_, _, err := run(t, "generate", "--quote-string=false", root)
	require.NoError(t, err)

	schema := testutil.ReadFile(t, root, "models/dbt_schema.yml")
	assert.Contains(t, schema, "name: orders")
	assert.Contains(t, schema, "description: Key")
}

func TestGenerateJSON(t *testing.T) {
	root := sampleProject(t)

	out, _, err := run(t, "generate", "-o", "json", root)
	require.NoError(t, err)

	var got output.GenerateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Summary.Directories)
	assert.Equal(t, 2, got.Summary.Records)
	require.Len(t, got.Directories, 2)
	assert.Equal(t, "models", got.Directories[0].Kind)
	assert.Equal(t, filepath.Join(root, "models", "dbt_schema.yml"), got.Directories[0].SchemaFile)
}

func TestGenerateWithCatalog(t *testing.T) {
	root := sampleProject(t)
	catalog := filepath.Join(t.TempDir(), "catalog.db")

	out, _, err := run(t, "generate", "-o", "markdown", "--catalog", catalog, root)
	require.NoError(t, err)
	assert.Contains(t, out, "- **Catalog**: "+catalog)

	out, _, err = run(t, "index", "-o", "json", "--catalog", catalog, "--runs", "5", root)
	require.NoError(t, err)
	var got output.IndexOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Runs, 1)
	assert.Equal(t, "completed", got.Runs[0].Status)
	assert.Equal(t, 2, got.Runs[0].Records)
}

func TestGenerateMalformedHeader(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"dbt_project.yml":   testutil.DefaultProjectFile,
		"models/a.sql":      "/* A */ select 1",
		"macros/broken.sql": "/* Bad */\n{% macro 123 %} x {% endmacro %}",
	})

	err := cli.ExecuteArgs([]string{root, "-o", "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.sql")

	// The models directory came first and stays written.
	_, statErr := os.Stat(filepath.Join(root, "models", "dbt_schema.yml"))
	assert.NoError(t, statErr)
}

func TestGenerateMissingProject(t *testing.T) {
	_, _, err := run(t, "generate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbt_project.yml not found")
}

func TestListDoesNotWrite(t *testing.T) {
	root := sampleProject(t)

	out, _, err := run(t, "list", "-o", "markdown", root)
	require.NoError(t, err)
	assert.Contains(t, out, "# Resources (2 total)")
	assert.Contains(t, out, "## models")
	assert.Contains(t, out, "| orders |")

	_, statErr := os.Stat(filepath.Join(root, "models", "dbt_schema.yml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIndexCommand(t *testing.T) {
	root := sampleProject(t)

	out, _, err := run(t, "index", "-o", "json", root)
	require.NoError(t, err)

	var got output.IndexOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, filepath.Join(root, ".dbtdoc.db"), got.Catalog)
	require.NotNil(t, got.Run)
	assert.Equal(t, 2, got.Run.Records)

	out, _, err = run(t, "index", "-o", "json", "--find", "cents", root)
	require.NoError(t, err)
	got = output.IndexOutput{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Resources, 1)
	assert.Equal(t, "macros", got.Resources[0].Kind)

	// index writes no outputs
	_, statErr := os.Stat(filepath.Join(root, "models", "docs.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitExampleThenGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	_, _, err := run(t, "init", "--example", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".dbtdoc"))

	_, _, err = run(t, "generate", dir)
	require.NoError(t, err)

	macros := testutil.ReadFile(t, dir, "macros/dbt_schema.yml")
	assert.Contains(t, macros, `name: "cents_to_dollars"`)
	assert.Contains(t, macros, `name: "test_non_negative"`)
	assert.Contains(t, testutil.ReadFile(t, dir, "models/docs.md"), "{% docs orders %}")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "dbtdoc"))
}

func TestInvalidOutputFlag(t *testing.T) {
	_, _, err := run(t, "list", "-o", "xml", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}
