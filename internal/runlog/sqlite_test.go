package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "applicants.csv", model.SourceIndeed)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "applicants.csv", got.File)
	assert.Equal(t, model.SourceIndeed, got.Source)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "drop.csv", model.SourceZipRecruiter)
	require.NoError(t, err)

	summary := &model.UploadSummary{ParsedRows: 14, TotalProcessed: 11, Created: 7, Updated: 4, Errors: 1}
	require.NoError(t, st.CompleteRun(ctx, run.ID, summary))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 14, got.ParsedRows, "rows the adapter dropped still count as parsed")
	assert.Equal(t, 7, got.Created)
	assert.Equal(t, 4, got.Updated)
	assert.Equal(t, 1, got.Errors)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "bad.csv", model.SourceHandshake)
	require.NoError(t, err)

	require.NoError(t, st.FailRun(ctx, run.ID, eris.New("fetch failed")))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "fetch failed")
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_CompleteRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "no-such-run", &model.UploadSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, "a.csv", model.SourceIndeed)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.csv", model.SourceHandshake)
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, r1.ID, &model.UploadSummary{ParsedRows: 1, TotalProcessed: 1, Created: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	handshake, err := st.ListRuns(ctx, RunFilter{Source: model.SourceHandshake})
	require.NoError(t, err)
	require.Len(t, handshake, 1)
	assert.Equal(t, "b.csv", handshake[0].File)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.CreateRun(ctx, "f.csv", model.SourceIndeed)
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLite_Failures(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "f.csv", model.SourceIndeed)
	require.NoError(t, err)

	f := model.RunFailure{
		ID:         "fail-1",
		RunID:      run.ID,
		Identifier: "+17045551234",
		Payload:    []byte(`{"name":"Jane Doe"}`),
		Error:      "status 503",
		ErrorType:  "transient",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, st.AddFailure(ctx, f))

	failures, err := st.ListFailures(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "+17045551234", failures[0].Identifier)
	assert.Equal(t, "transient", failures[0].ErrorType)
	assert.JSONEq(t, `{"name":"Jane Doe"}`, string(failures[0].Payload))
}

func TestSQLite_ListFailures_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	failures, err := st.ListFailures(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, failures)
}
