package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "md", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SchemaFile) == "" {
		return fmt.Errorf("schema_file must not be empty")
	}
	if strings.TrimSpace(c.DocFile) == "" {
		return fmt.Errorf("doc_file must not be empty")
	}
	// Per-directory outputs are plain file names; -s and -d take full paths.
	if filepath.Base(c.SchemaFile) != c.SchemaFile {
		return fmt.Errorf("schema_file must be a file name, got %q\nHint: use --schema to write to a fixed path", c.SchemaFile)
	}
	if filepath.Base(c.DocFile) != c.DocFile {
		return fmt.Errorf("doc_file must be a file name, got %q\nHint: use --doc to write to a fixed path", c.DocFile)
	}
	if !slices.Contains(validOutputs, strings.ToLower(c.Output)) {
		return fmt.Errorf("invalid output %q (want one of %s)", c.Output, strings.Join(validOutputs, ", "))
	}
	return nil
}
