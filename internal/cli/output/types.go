package output

// JSON output shapes for commands.

// ResourceInfo is one generated record.
type ResourceInfo struct {
	Name        string `json:"name"`
	Keyword     string `json:"keyword"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	Doc         string `json:"doc,omitempty"`
	Properties  string `json:"properties,omitempty"`
}

// DirectoryInfo groups the records of one directory.
type DirectoryInfo struct {
	Path       string         `json:"path"`
	Kind       string         `json:"kind"`
	SchemaFile string         `json:"schema_file,omitempty"`
	DocFile    string         `json:"doc_file,omitempty"`
	Resources  []ResourceInfo `json:"resources"`
}

// RunSummary describes a finished pass.
type RunSummary struct {
	RunID       string `json:"run_id"`
	Directories int    `json:"directories"`
	Files       int    `json:"files"`
	Skipped     int    `json:"skipped"`
	Records     int    `json:"records"`
	DurationMS  int64  `json:"duration_ms"`
}

// ListOutput is the JSON output of the list command.
type ListOutput struct {
	Directories []DirectoryInfo `json:"directories"`
	Summary     RunSummary      `json:"summary"`
}

// GenerateOutput is the JSON output of the generate command.
type GenerateOutput struct {
	Directories []DirectoryInfo `json:"directories"`
	Summary     RunSummary      `json:"summary"`
	Catalog     string          `json:"catalog,omitempty"`
}

// CatalogRun is a run stored in the catalog.
type CatalogRun struct {
	ID          string `json:"id"`
	ProjectDir  string `json:"project_dir"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Directories int    `json:"directories"`
	Records     int    `json:"records"`
	Error       string `json:"error,omitempty"`
}

// CatalogResource is a resource stored in the catalog.
type CatalogResource struct {
	RunID       string `json:"run_id"`
	Directory   string `json:"directory"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Keyword     string `json:"keyword"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

// IndexOutput is the JSON output of the index command.
type IndexOutput struct {
	Catalog   string            `json:"catalog"`
	Run       *CatalogRun       `json:"run,omitempty"`
	Runs      []CatalogRun      `json:"runs,omitempty"`
	Resources []CatalogResource `json:"resources,omitempty"`
}
