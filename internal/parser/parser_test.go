package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestSplit_NoComment(t *testing.T) {
	inputs := []string{
		"",
		"SELECT 1",
		"-- line comment only\nSELECT * FROM orders",
		"{% macro foo() %}select 1{% endmacro %}",
	}

	for _, in := range inputs {
		if units := Split(in); len(units) != 0 {
			t.Errorf("Split(%q) returned %d units, want 0", in, len(units))
		}
	}
}

func TestSplit_FenceDetection(t *testing.T) {
	units := Split("/* desc ```dbt\nkey: val\n``` */")
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}

	u := units[0]
	if u.Kind != WholeFile {
		t.Errorf("expected whole-file unit, got %s", u.Kind)
	}
	if u.Description != "desc" {
		t.Errorf("expected description %q, got %q", "desc", u.Description)
	}
	if !u.HasFragment {
		t.Fatal("expected fragment to be detected")
	}
	if strings.TrimSpace(u.Fragment) != "key: val" {
		t.Errorf("expected fragment %q, got %q", "key: val", u.Fragment)
	}
}

func TestSplit_WholeFileWithoutFence(t *testing.T) {
	content := `/*
  Orders table.

  One row per order.
*/
SELECT * FROM raw_orders`

	units := Split(content)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].HasFragment {
		t.Error("expected no fragment")
	}
	want := "Orders table.\n\n  One row per order."
	if units[0].Description != want {
		t.Errorf("expected description %q, got %q", want, units[0].Description)
	}
}

func TestSplit_OnlyFirstCommentIsUsed(t *testing.T) {
	content := "/* first */\nSELECT 1 /* second ```dbt\nkey: v\n``` */"

	units := Split(content)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Description != "first" {
		t.Errorf("expected description %q, got %q", "first", units[0].Description)
	}
	if units[0].HasFragment {
		t.Error("fence outside the first comment must be ignored")
	}
}

func TestSplit_CloseBeforeOpenIsIgnored(t *testing.T) {
	units := Split("SELECT '*/' AS odd /* doc */")
	if len(units) != 1 || units[0].Description != "doc" {
		t.Fatalf("expected description %q, got %+v", "doc", units)
	}
}

func TestSplit_UnclosedFence(t *testing.T) {
	units := Split("/* text ```dbt\ncolumns:\n  - name: id\n*/")
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if !units[0].HasFragment {
		t.Fatal("expected fragment")
	}
	if !strings.Contains(units[0].Fragment, "- name: id") {
		t.Errorf("unclosed fence should run to end of comment, got %q", units[0].Fragment)
	}
}

func TestSplit_ConstructsInOrder(t *testing.T) {
	content := `/* first macro */
{% macro alpha(x) %}
  {{ x }}
{% endmacro %}

/* second macro
` + "```dbt\narguments:\n  - name: y\n```" + `
*/
{% macro beta(y) %}
  {{ y }}
{% endmacro %}
`

	units := Split(content)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	if units[0].Description != "first macro" || units[1].Description != "second macro" {
		t.Errorf("unexpected descriptions: %q, %q", units[0].Description, units[1].Description)
	}
	if units[0].HasFragment {
		t.Error("first unit should have no fragment")
	}
	if !units[1].HasFragment {
		t.Error("second unit should have a fragment")
	}
	for i, u := range units {
		if u.Kind != Construct {
			t.Errorf("unit %d: expected construct, got %s", i, u.Kind)
		}
		if !strings.HasPrefix(u.Header, "macro ") {
			t.Errorf("unit %d: header should start at keyword, got %q", i, u.Header)
		}
		if !strings.HasSuffix(u.Raw, "endmacro") {
			t.Errorf("unit %d: raw span should end at end marker, got %q", i, u.Raw)
		}
	}
}

func TestSplit_EndMarkerMatchesKeyword(t *testing.T) {
	content := `/* a test */
{% test positive(model, column_name) %}
  select * from {{ model }} where {{ column_name }} < 0
{% endtest %}
/* a macro */
{% macro helper() %} 1 {% endmacro %}`

	units := Split(content)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if !strings.HasSuffix(units[0].Raw, "endtest") {
		t.Errorf("test construct should end at endtest, got %q", units[0].Raw)
	}
	if units[1].Description != "a macro" {
		t.Errorf("expected second description %q, got %q", "a macro", units[1].Description)
	}
}

func TestSplit_UnterminatedConstructFallsBackToFile(t *testing.T) {
	content := "/* model doc */\nselect 'a macro here' as txt"

	units := Split(content)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Kind != WholeFile {
		t.Errorf("expected whole-file unit, got %s", units[0].Kind)
	}
}

func TestSplit_KeywordInsideCommentIsNotAConstruct(t *testing.T) {
	content := "/* this macro endmacro talk */\nselect 1"

	units := Split(content)
	if len(units) != 1 || units[0].Kind != WholeFile {
		t.Fatalf("expected a single whole-file unit, got %+v", units)
	}
}

func TestSplit_KeywordInLineCommentBeforeTag(t *testing.T) {
	tests := []struct {
		name    string
		comment string
	}{
		{"keyword of same kind", "-- this macro is shared"},
		{"keyword without end marker", "-- used in test fixtures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "/* Converts cents. */\n" + tt.comment + "\n{% macro cents(col) %}\n  {{ col }} / 100\n{% endmacro %}\n"

			units := Split(content)
			if len(units) != 1 {
				t.Fatalf("expected 1 unit, got %d", len(units))
			}
			if units[0].Kind != Construct {
				t.Fatalf("expected construct unit, got %s", units[0].Kind)
			}
			if units[0].Description != "Converts cents." {
				t.Errorf("expected description %q, got %q", "Converts cents.", units[0].Description)
			}

			rec, err := Classify(units[0], "cents.sql")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if rec.Keyword != Macro || rec.BaseName != "cents" {
				t.Errorf("expected macro cents, got %s %s", rec.Keyword, rec.BaseName)
			}
		})
	}
}

func TestSplit_UnreadableHeaderStillSurfaces(t *testing.T) {
	content := "/* broken */\n{% macro %}\n select 1\n{% endmacro %}\n"

	units := Split(content)
	if len(units) != 1 || units[0].Kind != Construct {
		t.Fatalf("expected a single construct unit, got %+v", units)
	}

	_, err := Classify(units[0], "broken.sql")
	var mh *MalformedHeaderError
	if !errors.As(err, &mh) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
}
