// Package docs assembles the documentation of one source directory and
// writes it out as a dbt property file and a docs-block markdown file.
package docs

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dbtdoc/internal/fragment"
	"github.com/leapstack-labs/dbtdoc/internal/parser"
	"gopkg.in/yaml.v3"
)

// TopLevelKind is the root key of a property file.
type TopLevelKind int

// Top-level kinds. A result is Unknown until finalized.
const (
	KindUnknown TopLevelKind = iota
	KindModels
	KindMacros
)

func (k TopLevelKind) String() string {
	switch k {
	case KindModels:
		return "models"
	case KindMacros:
		return "macros"
	default:
		return "unknown"
	}
}

// Property whitelists.
var (
	modelKeys     = []string{"columns", "docs"}
	constructKeys = []string{"arguments", "docs"}
)

// Whitelist returns the fragment keys copied into the record of a resource.
func Whitelist(kw parser.Keyword) []string {
	if kw == parser.Model {
		return modelKeys
	}
	return constructKeys
}

// DocRef returns the reference a property file uses to point at a docs block.
func DocRef(name string) string {
	return fmt.Sprintf("{{ doc('%s') }}", name)
}

// OutputRecord is one entry of the property file.
type OutputRecord struct {
	Name string
	// Description is the doc reference, empty when the unit had no text.
	Description string
	// DocName is the docs block Description points at.
	DocName string
	Keyword parser.Keyword
	// Source is the file the record came from.
	Source string
	// Properties are the whitelisted fragment fields, strings quoted.
	Properties []fragment.Field
}

// PropertiesYAML renders the whitelisted properties as a standalone YAML
// mapping, or "" when there are none.
func (r OutputRecord) PropertiesYAML() (string, error) {
	if len(r.Properties) == 0 {
		return "", nil
	}
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fragment.Map(r.Properties...).YAML(false)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Descriptions is an insertion-ordered name to text mapping. Setting an
// existing name replaces its text and keeps its position.
type Descriptions struct {
	keys   []string
	values map[string]string
}

// NewDescriptions returns an empty mapping.
func NewDescriptions() *Descriptions {
	return &Descriptions{values: make(map[string]string)}
}

// Set stores text under name.
func (d *Descriptions) Set(name, text string) {
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = text
}

// Get returns the text stored under name.
func (d *Descriptions) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Keys returns the names in first-insertion order.
func (d *Descriptions) Keys() []string {
	return d.keys
}

// Len returns the number of names.
func (d *Descriptions) Len() int {
	return len(d.keys)
}

// DirectoryResult collects everything documented in one directory.
type DirectoryResult struct {
	Path         string
	Descriptions *Descriptions
	Records      []OutputRecord
	Kind         TopLevelKind

	sawConstruct bool
}

// NewDirectoryResult returns an empty result for path.
func NewDirectoryResult(path string) *DirectoryResult {
	return &DirectoryResult{
		Path:         path,
		Descriptions: NewDescriptions(),
	}
}

// Add merges one classified unit. frag may be nil when the unit had no
// structured block.
//
// Every unit produces a record; names are not deduplicated. The description
// mapping and the record's description are only filled when the unit has
// text. Both are keyed by the base name, so a test "foo" is described by
// doc('foo') even though its record is named "test_foo".
func (r *DirectoryResult) Add(source string, rec parser.ConstructRecord, unit parser.CommentUnit, frag *fragment.Node) {
	if unit.Kind == parser.Construct {
		r.sawConstruct = true
	}

	out := OutputRecord{
		Name:    rec.OutputName(),
		Keyword: rec.Keyword,
		Source:  source,
	}

	if unit.Description != "" {
		r.Descriptions.Set(rec.BaseName, unit.Description)
		out.Description = DocRef(rec.BaseName)
		out.DocName = rec.BaseName
	}

	out.Properties = fragment.Quote(frag).Select(Whitelist(rec.Keyword)...)

	r.Records = append(r.Records, out)
}

// Finalize fixes the top-level kind: macros when any construct was added,
// models otherwise.
func (r *DirectoryResult) Finalize() {
	if r.sawConstruct {
		r.Kind = KindMacros
	} else {
		r.Kind = KindModels
	}
}

// Empty reports whether the result has nothing to write besides banners.
func (r *DirectoryResult) Empty() bool {
	return len(r.Records) == 0 && r.Descriptions.Len() == 0
}
