// Package parser extracts doc comments from dbt SQL files.
//
// A file either documents itself as a whole (a model: the first /* ... */
// comment in the file) or holds one or more named constructs (macro, test,
// materialization), each introduced by its own comment. Inside a comment the
// text before a "```dbt" fence is the description and the fenced text is a
// YAML block with structured properties.
package parser

import (
	"regexp"
	"strings"
)

const (
	commentOpen  = "/*"
	commentClose = "*/"

	// FenceOpen starts the structured block inside a doc comment.
	FenceOpen  = "```dbt"
	fenceClose = "```"
)

// UnitKind tells whether a comment documents the whole file or one construct.
type UnitKind int

// Unit kinds.
const (
	WholeFile UnitKind = iota
	Construct
)

func (k UnitKind) String() string {
	if k == Construct {
		return "construct"
	}
	return "file"
}

// CommentUnit is one documented region of a source file.
type CommentUnit struct {
	// Raw is the matched text: the comment for whole-file units, the span
	// from the comment to the end marker for constructs.
	Raw  string
	Kind UnitKind

	// Description is the trimmed text before the fence, empty when absent.
	Description string

	// Fragment is the text inside the ```dbt fence; HasFragment reports
	// whether the fence was present at all.
	Fragment    string
	HasFragment bool

	// Header is the construct text starting at its keyword
	// (e.g. "macro cents_to_dollars(col) %} ... endmacro"). Empty for
	// whole-file units.
	Header string
}

// keywordPattern finds a construct keyword standing as a word. The end
// marker is located separately so that "endtest" never closes a macro.
var keywordPattern = regexp.MustCompile(`\s(macro|test|materialization)\s`)

// Split extracts the comment units of one file in source order.
//
// Files containing constructs yield one unit per construct. Other files yield
// a single whole-file unit built from their first comment, or nothing when
// the file has no comment.
func Split(content string) []CommentUnit {
	if units := splitConstructs(content); len(units) > 0 {
		return units
	}

	raw, body, ok := firstComment(content)
	if !ok {
		return nil
	}

	unit := CommentUnit{Raw: raw, Kind: WholeFile}
	unit.Description, unit.Fragment, unit.HasFragment = splitBody(body)
	return []CommentUnit{unit}
}

// splitConstructs returns every non-overlapping comment+construct span.
func splitConstructs(content string) []CommentUnit {
	var units []CommentUnit

	pos := 0
	for pos < len(content) {
		start := strings.Index(content[pos:], commentOpen)
		if start < 0 {
			break
		}
		start += pos

		closeAt := strings.Index(content[start+len(commentOpen):], commentClose)
		if closeAt < 0 {
			break
		}
		afterComment := start + len(commentOpen) + closeAt + len(commentClose)

		kwStart, end, ok := findConstruct(content, afterComment)
		if !ok {
			break
		}

		span := content[start:end]
		_, body, _ := firstComment(span)

		unit := CommentUnit{
			Raw:    span,
			Kind:   Construct,
			Header: content[kwStart:end],
		}
		unit.Description, unit.Fragment, unit.HasFragment = splitBody(body)
		units = append(units, unit)

		pos = end
	}

	return units
}

// findConstruct picks the construct that follows a doc comment ending at
// from. Keyword occurrences are tried in order, so a keyword inside an
// ordinary SQL comment ("-- used in test fixtures") does not hide the real
// tag after it. The first occurrence with a readable header and an end marker
// wins. When no header is readable, the first terminated occurrence is
// returned so that Classify reports it as malformed.
func findConstruct(content string, from int) (kwStart, end int, ok bool) {
	fallbackStart, fallbackEnd := -1, -1

	pos := from
	for pos < len(content) {
		loc := keywordPattern.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		ks, ke := pos+loc[2], pos+loc[3]
		pos = ke

		// Later keywords sit inside the fallback construct's body or beyond.
		if fallbackEnd >= 0 && ks >= fallbackEnd {
			break
		}

		endMarker := "end" + content[ks:ke]
		rel := strings.Index(content[ke:], endMarker)
		if rel < 0 {
			continue
		}
		e := ke + rel + len(endMarker)

		if headerPattern.MatchString(content[ks:e]) {
			return ks, e, true
		}
		if fallbackStart < 0 {
			fallbackStart, fallbackEnd = ks, e
		}
	}

	if fallbackStart >= 0 {
		return fallbackStart, fallbackEnd, true
	}
	return 0, 0, false
}

// firstComment returns the first /* ... */ comment of text and its body.
// An unterminated comment runs to the end of text.
func firstComment(text string) (raw, body string, ok bool) {
	start := strings.Index(text, commentOpen)
	if start < 0 {
		return "", "", false
	}

	rest := text[start+len(commentOpen):]
	end := strings.Index(rest, commentClose)
	if end < 0 {
		return text[start:], rest, true
	}
	return text[start : start+len(commentOpen)+end+len(commentClose)], rest[:end], true
}

// splitBody separates a comment body into description and fenced block.
func splitBody(body string) (description, fragment string, hasFragment bool) {
	open := strings.Index(body, FenceOpen)
	if open < 0 {
		return strings.TrimSpace(body), "", false
	}

	description = strings.TrimSpace(body[:open])
	fragment = body[open+len(FenceOpen):]
	if end := strings.Index(fragment, fenceClose); end >= 0 {
		fragment = fragment[:end]
	}
	return description, fragment, true
}
