// Package state keeps a SQLite catalog of generation runs and the resources
// each run documented.
package state

import "time"

// RunStatus represents the status of a generation run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded generation pass.
type Run struct {
	ID          string
	ProjectDir  string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Directories int
	Records     int
	Error       string
}

// Resource is one documented resource as written in a run.
type Resource struct {
	RunID      string
	Directory  string
	Position   int
	Name       string
	Kind       string // models or macros
	Keyword    string // model, macro, test, materialization
	SourcePath string
	// Description is the doc reference, Doc the text it points at.
	Description string
	Doc         string
	// Properties is the whitelisted fragment as YAML.
	Properties string
}
