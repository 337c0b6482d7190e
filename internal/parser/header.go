package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Keyword is the kind of resource a comment unit documents.
type Keyword int

// Resource keywords.
const (
	Model Keyword = iota
	Macro
	Test
	Materialization
)

func (k Keyword) String() string {
	switch k {
	case Macro:
		return "macro"
	case Test:
		return "test"
	case Materialization:
		return "materialization"
	default:
		return "model"
	}
}

// ConstructRecord identifies the resource behind a comment unit.
type ConstructRecord struct {
	Keyword  Keyword
	BaseName string
	// Connector is the adapter of a materialization, empty otherwise.
	Connector string
}

// OutputName is the resource name written to the property file.
func (r ConstructRecord) OutputName() string {
	switch r.Keyword {
	case Test:
		return "test_" + r.BaseName
	case Materialization:
		return "materialization_" + r.BaseName + "_" + r.Connector
	default:
		return r.BaseName
	}
}

// headerPattern matches "<keyword> <name>(" and
// "<keyword> <name>, adapter=<value>" at the start of a construct header.
var headerPattern = regexp.MustCompile(`^(macro|test|materialization)\s+([^\s(,]+)\s*(?:\(|,\s*adapter\s*=\s*([^\s,%)]+))`)

// Classify resolves the resource a unit documents. Whole-file units are
// models named after fileName without its .sql suffix; construct units are
// read from their header.
func Classify(unit CommentUnit, fileName string) (ConstructRecord, error) {
	if unit.Kind == WholeFile {
		return ConstructRecord{
			Keyword:  Model,
			BaseName: strings.TrimSuffix(filepath.Base(fileName), ".sql"),
		}, nil
	}
	return ParseHeader(unit.Header)
}

// ParseHeader reads a construct header starting at its keyword.
func ParseHeader(header string) (ConstructRecord, error) {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return ConstructRecord{}, &MalformedHeaderError{Header: headerSnippet(header)}
	}

	rec := ConstructRecord{BaseName: m[2]}
	switch m[1] {
	case "macro":
		rec.Keyword = Macro
	case "test":
		rec.Keyword = Test
	case "materialization":
		rec.Keyword = Materialization
		rec.Connector = strings.Trim(m[3], `'" `)
	}
	return rec, nil
}

// headerSnippet returns the first line of a header, shortened for messages.
func headerSnippet(header string) string {
	line, _, _ := strings.Cut(header, "\n")
	line = strings.TrimSpace(line)
	if len(line) > 60 {
		line = line[:60] + "..."
	}
	return line
}

// MalformedHeaderError reports a construct whose header is not
// "<keyword> <name>(" or "<keyword> <name>, adapter=<value>".
type MalformedHeaderError struct {
	File   string
	Header string
}

func (e *MalformedHeaderError) Error() string {
	msg := fmt.Sprintf("malformed construct header %q: expected \"<keyword> <name>(...)\" or \"<keyword> <name>, adapter=<adapter>\"", e.Header)
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}
