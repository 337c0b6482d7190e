package docs

import (
	"testing"

	"github.com/leapstack-labs/dbtdoc/internal/fragment"
	"github.com/leapstack-labs/dbtdoc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assemble runs the parsing stages over files the way the engine does.
func assemble(t *testing.T, files map[string]string, order ...string) *DirectoryResult {
	t.Helper()

	result := NewDirectoryResult("dir")
	for _, name := range order {
		for _, unit := range parser.Split(files[name]) {
			rec, err := parser.Classify(unit, name)
			require.NoError(t, err)

			var frag *fragment.Node
			if unit.HasFragment {
				frag, err = fragment.Parse(unit.Fragment)
				require.NoError(t, err)
			}
			result.Add(name, rec, unit, frag)
		}
	}
	result.Finalize()
	return result
}

func TestAssemble_ModelWithColumns(t *testing.T) {
	files := map[string]string{
		"orders.sql": "/* Orders table\n```dbt\ncolumns:\n  - name: id\n```\n*/\nselect 1;",
	}

	result := assemble(t, files, "orders.sql")

	assert.Equal(t, KindModels, result.Kind)
	assert.Equal(t, []string{"orders"}, result.Descriptions.Keys())
	text, _ := result.Descriptions.Get("orders")
	assert.Equal(t, "Orders table", text)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "orders", rec.Name)
	assert.Equal(t, "{{ doc('orders') }}", rec.Description)
	require.Len(t, rec.Properties, 1)
	assert.Equal(t, "columns", rec.Properties[0].Key)

	cols := rec.Properties[0].Value
	require.Equal(t, fragment.KindSequence, cols.Kind)
	name, ok := cols.Items[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, "id", name.Value)
	assert.True(t, name.Quoted)
}

func TestAssemble_Macro(t *testing.T) {
	files := map[string]string{
		"helpers.sql": "/* doc */ {% macro foo() %} select 1 {% endmacro %}",
	}

	result := assemble(t, files, "helpers.sql")

	assert.Equal(t, KindMacros, result.Kind)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "foo", result.Records[0].Name)
	assert.Equal(t, "{{ doc('foo') }}", result.Records[0].Description)
	assert.Empty(t, result.Records[0].Properties)
}

func TestAssemble_DuplicateNames(t *testing.T) {
	files := map[string]string{
		"a.sql": "/* first */ {% macro dup() %} 1 {% endmacro %}",
		"b.sql": "/* second */ {% macro dup() %} 2 {% endmacro %}",
	}

	result := assemble(t, files, "a.sql", "b.sql")

	assert.Equal(t, 1, result.Descriptions.Len())
	text, _ := result.Descriptions.Get("dup")
	assert.Equal(t, "second", text)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "dup", result.Records[0].Name)
	assert.Equal(t, "dup", result.Records[1].Name)
}

func TestAssemble_TestsAndMaterializationsReferenceBaseName(t *testing.T) {
	content := `/* Non-negative check */
{% test positive(model, column_name) %} select 1 {% endtest %}
/* Snowflake tables
` + "```dbt\narguments:\n  - name: sql\nextra: ignored\n```" + `
*/
{% materialization table, adapter='snowflake' %} {% endmaterialization %}`

	result := assemble(t, map[string]string{"custom.sql": content}, "custom.sql")

	require.Len(t, result.Records, 2)
	assert.Equal(t, "test_positive", result.Records[0].Name)
	assert.Equal(t, "{{ doc('positive') }}", result.Records[0].Description)

	assert.Equal(t, "materialization_table_snowflake", result.Records[1].Name)
	assert.Equal(t, "{{ doc('table') }}", result.Records[1].Description)
	require.Len(t, result.Records[1].Properties, 1)
	assert.Equal(t, "arguments", result.Records[1].Properties[0].Key)

	assert.Equal(t, []string{"positive", "table"}, result.Descriptions.Keys())
}

func TestAssemble_ModelWhitelist(t *testing.T) {
	content := "/* Customers\n```dbt\narguments: [x]\ndocs:\n  show: false\ncolumns:\n  - name: id\nconfig:\n  materialized: table\n```\n*/"

	result := assemble(t, map[string]string{"customers.sql": content}, "customers.sql")

	require.Len(t, result.Records, 1)
	var keys []string
	for _, p := range result.Records[0].Properties {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"columns", "docs"}, keys)
}

func TestAssemble_EmptyDescription(t *testing.T) {
	content := "/*\n```dbt\ncolumns:\n  - name: id\n```\n*/ select 1"

	result := assemble(t, map[string]string{"bare.sql": content}, "bare.sql")

	assert.Equal(t, 0, result.Descriptions.Len())
	require.Len(t, result.Records, 1)
	assert.Equal(t, "bare", result.Records[0].Name)
	assert.Empty(t, result.Records[0].Description)
	assert.Len(t, result.Records[0].Properties, 1)
}

func TestAssemble_EmptyCommentStillNamesModel(t *testing.T) {
	result := assemble(t, map[string]string{"empty.sql": "/* */ select 1"}, "empty.sql")

	assert.Equal(t, 0, result.Descriptions.Len())
	require.Len(t, result.Records, 1)
	assert.Equal(t, "empty", result.Records[0].Name)
	assert.Empty(t, result.Records[0].Description)
	assert.Empty(t, result.Records[0].Properties)
}

func TestAssemble_NonMappingFragmentContributesNothing(t *testing.T) {
	content := "/* List only\n```dbt\n- columns\n- docs\n```\n*/"

	result := assemble(t, map[string]string{"odd.sql": content}, "odd.sql")

	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Records[0].Properties)
}

func TestAssemble_UncommentedFileYieldsNothing(t *testing.T) {
	result := assemble(t, map[string]string{"raw.sql": "select 1"}, "raw.sql")

	assert.True(t, result.Empty())
	assert.Equal(t, KindModels, result.Kind)
}

func TestDirectoryResult_KindUnknownUntilFinalized(t *testing.T) {
	result := NewDirectoryResult("dir")
	assert.Equal(t, KindUnknown, result.Kind)
	assert.Equal(t, "unknown", result.Kind.String())

	result.Finalize()
	assert.Equal(t, KindModels, result.Kind)
}

func TestDescriptions_SetKeepsFirstPosition(t *testing.T) {
	d := NewDescriptions()
	d.Set("a", "1")
	d.Set("b", "2")
	d.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, d.Keys())
	v, _ := d.Get("a")
	assert.Equal(t, "3", v)
}

func TestOutputRecord_PropertiesYAML(t *testing.T) {
	result := assemble(t, map[string]string{
		"orders.sql": "/* Orders\n```dbt\ncolumns:\n  - name: id\n```\n*/",
	}, "orders.sql")

	rec := result.Records[0]
	assert.Equal(t, "orders", rec.DocName)

	out, err := rec.PropertiesYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "columns:\n")
	assert.Contains(t, out, "- name: id\n")

	empty, err := OutputRecord{Name: "x"}.PropertiesYAML()
	require.NoError(t, err)
	assert.Empty(t, empty)
}
