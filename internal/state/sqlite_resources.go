package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/dbtdoc/internal/docs"
)

// Write implements engine.Sink. The resources of result are stored under
// the active run in one transaction.
func (s *SQLiteStore) Write(ctx context.Context, result *docs.DirectoryResult) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	s.mu.Lock()
	runID := s.activeRun
	s.mu.Unlock()
	if runID == "" {
		return fmt.Errorf("no active run")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resources (run_id, directory, position, name, kind, keyword, source_path, description, doc, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range result.Records {
		props, err := rec.PropertiesYAML()
		if err != nil {
			return fmt.Errorf("failed to encode properties of %s: %w", rec.Name, err)
		}

		var doc string
		if rec.DocName != "" {
			doc, _ = result.Descriptions.Get(rec.DocName)
		}

		_, err = stmt.ExecContext(ctx,
			runID, result.Path, i, rec.Name, result.Kind.String(), rec.Keyword.String(), rec.Source,
			nullString(rec.Description), nullString(doc), nullString(props),
		)
		if err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resources: %w", err)
	}

	s.logger.Debug("resources stored", "run_id", runID, "dir", result.Path, "count", len(result.Records))
	return nil
}

const resourceColumns = `run_id, directory, position, name, kind, keyword, source_path, description, doc, properties`

// ListResources returns the resources of a run in write order.
func (s *SQLiteStore) ListResources(ctx context.Context, runID string) ([]*Resource, error) {
	return s.queryResources(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE run_id = ? ORDER BY rowid`, runID)
}

// FindResources returns every stored resource with the given name across
// runs, newest run first.
func (s *SQLiteStore) FindResources(ctx context.Context, name string) ([]*Resource, error) {
	return s.queryResources(ctx, `
		SELECT r.run_id, r.directory, r.position, r.name, r.kind, r.keyword, r.source_path, r.description, r.doc, r.properties
		FROM resources r JOIN runs ON runs.id = r.run_id
		WHERE r.name = ?
		ORDER BY runs.started_at DESC, r.rowid`, name)
}

func (s *SQLiteStore) queryResources(ctx context.Context, query string, args ...any) ([]*Resource, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Resource
	for rows.Next() {
		var (
			r                       Resource
			description, doc, props sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Directory, &r.Position, &r.Name, &r.Kind, &r.Keyword,
			&r.SourcePath, &description, &doc, &props); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		r.Description = description.String
		r.Doc = doc.String
		r.Properties = props.String
		out = append(out, &r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
