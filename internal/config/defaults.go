package config

// Default configuration values.
const (
	DefaultModelsDir = "models"
	DefaultMacrosDir = "macros"
)

// ApplyDefaults fills in the source paths dbt assumes when the project file
// leaves them out.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if len(c.ModelPaths) == 0 {
		c.ModelPaths = []string{DefaultModelsDir}
	}
	if len(c.MacroPaths) == 0 {
		c.MacroPaths = []string{DefaultMacrosDir}
	}
}
