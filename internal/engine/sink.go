package engine

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/docs"
)

// Sink receives each directory result as soon as it is finalized.
type Sink interface {
	Write(ctx context.Context, result *docs.DirectoryResult) error
}

// RunInfo describes one generation pass.
type RunInfo struct {
	ID         string
	ProjectDir string
	StartedAt  time.Time
}

// RunObserver is implemented by sinks that track passes as a whole.
// EndRun receives the error that stopped the pass, nil on success.
type RunObserver interface {
	BeginRun(ctx context.Context, run RunInfo) error
	EndRun(ctx context.Context, run RunInfo, summary *Summary, runErr error) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, result *docs.DirectoryResult) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, result *docs.DirectoryResult) error {
	return f(ctx, result)
}

// MultiSink hands every result to each sink in order, stopping at the first
// error.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, result *docs.DirectoryResult) error {
	for _, s := range m {
		if err := s.Write(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun forwards to every sink that observes runs.
func (m MultiSink) BeginRun(ctx context.Context, run RunInfo) error {
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			if err := o.BeginRun(ctx, run); err != nil {
				return err
			}
		}
	}
	return nil
}

// EndRun forwards to every sink that observes runs. All observers are
// called; their errors are joined.
func (m MultiSink) EndRun(ctx context.Context, run RunInfo, summary *Summary, runErr error) error {
	var errs []error
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			errs = append(errs, o.EndRun(ctx, run, summary, runErr))
		}
	}
	return errors.Join(errs...)
}

// Collector keeps every result in memory.
type Collector struct {
	Results []*docs.DirectoryResult
}

// Write implements Sink.
func (c *Collector) Write(_ context.Context, result *docs.DirectoryResult) error {
	c.Results = append(c.Results, result)
	return nil
}

// Records returns the number of records across all collected results.
func (c *Collector) Records() int {
	n := 0
	for _, r := range c.Results {
		n += len(r.Records)
	}
	return n
}
