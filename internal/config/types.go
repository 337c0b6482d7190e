// Package config loads the dbt project file that names the directories
// holding models and macros.
// This package is decoupled from CLI concerns; tool settings live in
// internal/cli/config.
package config

import "fmt"

// ProjectConfig is the part of dbt_project.yml that dbtdoc reads.
type ProjectConfig struct {
	Name       string   `koanf:"name"`
	ModelPaths []string `koanf:"model-paths"`
	MacroPaths []string `koanf:"macro-paths"`
}

// Directories returns the source paths to scan, models first.
func (c *ProjectConfig) Directories() []string {
	dirs := make([]string, 0, len(c.ModelPaths)+len(c.MacroPaths))
	dirs = append(dirs, c.ModelPaths...)
	dirs = append(dirs, c.MacroPaths...)
	return dirs
}

// MissingProjectConfigError reports a project directory without dbt_project.yml.
type MissingProjectConfigError struct {
	Dir string
}

func (e *MissingProjectConfigError) Error() string {
	return fmt.Sprintf("%s not found in %s", ProjectFileName, e.Dir)
}
