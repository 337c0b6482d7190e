// Package config provides configuration management for the dbtdoc CLI.
//
// Settings come from defaults, an optional .dbtdoc YAML file, DBTDOC_
// environment variables and command-line flags, in increasing precedence.
// Project layout (model and macro paths) is read separately by
// internal/config from dbt_project.yml.
package config

// Default values for tool settings.
const (
	DefaultConfigFile = ".dbtdoc"
	DefaultOutput     = "auto"
	EnvPrefix         = "DBTDOC_"
)

// Config holds all CLI configuration options.
type Config struct {
	SchemaFile  string   `koanf:"schema_file"`
	DocFile     string   `koanf:"doc_file"`
	QuoteString bool     `koanf:"quote_string"`
	Backup      bool     `koanf:"backup"`
	Schema      string   `koanf:"schema"`
	Doc         string   `koanf:"doc"`
	FirstOnly   bool     `koanf:"first_only"`
	ModelPaths  []string `koanf:"model_paths"`
	MacroPaths  []string `koanf:"macro_paths"`
	CatalogPath string   `koanf:"catalog_path"`
	Verbose     bool     `koanf:"verbose"`
	Output      string   `koanf:"output"`
}
