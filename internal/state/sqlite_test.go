package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/docs"
	"github.com/leapstack-labs/dbtdoc/internal/engine"
	"github.com/leapstack-labs/dbtdoc/internal/fragment"
	"github.com/leapstack-labs/dbtdoc/internal/parser"
	"github.com/leapstack-labs/dbtdoc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenCatalog(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult(dir string) *docs.DirectoryResult {
	result := docs.NewDirectoryResult(dir)
	result.Add(filepath.Join(dir, "orders.sql"),
		parser.ConstructRecord{Keyword: parser.Model, BaseName: "orders"},
		parser.CommentUnit{Kind: parser.WholeFile, Description: "Orders table"},
		fragment.Map(fragment.F("columns", fragment.Seq(fragment.Map(fragment.F("name", fragment.String("id")))))),
	)
	result.Add(filepath.Join(dir, "raw.sql"),
		parser.ConstructRecord{Keyword: parser.Model, BaseName: "raw"},
		parser.CommentUnit{Kind: parser.WholeFile},
		nil,
	)
	result.Finalize()
	return result
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "resources"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if assert.NoError(t, err, "table %s should exist", table) {
			_ = rows.Close()
		}
	}

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running migrations again is a no-op.
	require.NoError(t, store.InitSchema())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.EqualError(t, store.Migrate(), "database not opened")
	_, err := store.GetRun(ctx, "x")
	assert.EqualError(t, err, "database not opened")
	_, err = store.ListResources(ctx, "x")
	assert.EqualError(t, err, "database not opened")
	assert.EqualError(t, store.Write(ctx, docs.NewDirectoryResult("d")), "database not opened")
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	info := engine.RunInfo{ID: "run-1", ProjectDir: "/proj", StartedAt: started}
	require.NoError(t, store.BeginRun(ctx, info))

	run, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Equal(t, "/proj", run.ProjectDir)
	assert.True(t, run.StartedAt.Equal(started))
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, store.Write(ctx, sampleResult("/proj/models")))
	require.NoError(t, store.EndRun(ctx, info, &engine.Summary{Directories: 1, Records: 2}, nil))

	run, err = store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, 1, run.Directories)
	assert.Equal(t, 2, run.Records)
	assert.Empty(t, run.Error)

	resources, err := store.ListResources(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, resources, 2)

	orders := resources[0]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, "models", orders.Kind)
	assert.Equal(t, "model", orders.Keyword)
	assert.Equal(t, "{{ doc('orders') }}", orders.Description)
	assert.Equal(t, "Orders table", orders.Doc)
	assert.Contains(t, orders.Properties, "name: id")

	raw := resources[1]
	assert.Equal(t, "raw", raw.Name)
	assert.Equal(t, 1, raw.Position)
	assert.Empty(t, raw.Description)
	assert.Empty(t, raw.Properties)
}

func TestSQLiteStore_FailedRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	info := engine.RunInfo{ID: "run-f", ProjectDir: "/proj", StartedAt: time.Now()}
	require.NoError(t, store.BeginRun(ctx, info))
	require.NoError(t, store.EndRun(ctx, info, nil, errors.New("bad.sql: malformed construct header")))

	run, err := store.GetRun(ctx, "run-f")
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "bad.sql")
}

func TestSQLiteStore_WriteWithoutRun(t *testing.T) {
	store := setupTestStore(t)
	err := store.Write(context.Background(), sampleResult("/proj/models"))
	assert.EqualError(t, err, "no active run")
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetRun(context.Background(), "missing")
	assert.EqualError(t, err, "run not found: missing")

	err = store.CompleteRun(context.Background(), "missing", RunStatusCompleted, 0, 0, "")
	assert.EqualError(t, err, "run not found: missing")
}

func TestSQLiteStore_LatestRunAndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	latest, err := store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		info := engine.RunInfo{ID: id, ProjectDir: "/proj", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.BeginRun(ctx, info))
		require.NoError(t, store.Write(ctx, sampleResult("/proj/models")))
		require.NoError(t, store.EndRun(ctx, info, &engine.Summary{Directories: 1, Records: 2}, nil))
	}

	latest, err = store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)

	found, err := store.FindResources(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "new", found[0].RunID)
	assert.Equal(t, "old", found[1].RunID)
}

func TestSQLiteStore_AsEngineSink(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"dbt_project.yml":  testutil.DefaultProjectFile,
		"models/a.sql":     "/* A model */ select 1",
		"macros/utils.sql": "/* Helper */ {% macro h() %} 1 {% endmacro %}",
	})
	store := setupTestStore(t)

	e, err := engine.New(engine.Config{ProjectDir: root, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	summary, err := e.Run(context.Background(), engine.MultiSink{docs.NewWriter(nil), store})
	require.NoError(t, err)

	run, err := store.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Records)

	resources, err := store.ListResources(context.Background(), summary.RunID)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "a", resources[0].Name)
	assert.Equal(t, "models", resources[0].Kind)
	assert.Equal(t, "h", resources[1].Name)
	assert.Equal(t, "macros", resources[1].Kind)
	assert.Equal(t, "Helper", resources[1].Doc)
}
