package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// DefaultProjectFile is a minimal dbt_project.yml with the standard paths.
const DefaultProjectFile = "name: shop\nmodel-paths: [models]\nmacro-paths: [macros]\n"

// WriteProject creates a temporary project from a relative path to content
// map and returns its root. Parent directories are created as needed; a path
// ending in "/" creates an empty directory.
func WriteProject(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(path, 0o750); err != nil {
				t.Fatalf("create dir %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// ReadFile returns the content of root/rel, failing the test if unreadable.
func ReadFile(t testing.TB, root, rel string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel))) //nolint:gosec // test helper
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(content)
}
