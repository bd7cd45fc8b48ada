package runlog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO ingest_runs`).
		WithArgs(pgxmock.AnyArg(), "drop.csv", "indeed", "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "drop.csv", model.SourceIndeed)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE ingest_runs SET status`).
		WithArgs("complete", 12, 6, 3, 1, pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &model.UploadSummary{
		ParsedRows: 12, TotalProcessed: 9, Created: 6, Updated: 3, Errors: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE ingest_runs SET status`).
		WithArgs("complete", 0, 0, 0, 0, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", &model.UploadSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, file, source, status`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Now().UTC()
	completed := started.Add(time.Minute)
	errMsg := ""
	rows := pgxmock.NewRows([]string{"id", "file", "source", "status", "parsed_rows", "created", "updated", "errors", "error", "started_at", "completed_at"}).
		AddRow("run-1", "drop.csv", "ziprecruiter", "complete", 8, 5, 3, 0, &errMsg, started, &completed)

	mock.ExpectQuery(`SELECT id, file, source, status`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceZipRecruiter, run.Source)
	assert.Equal(t, 5, run.Created)
	require.NotNil(t, run.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AddFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	f := model.RunFailure{
		ID:         "fail-1",
		RunID:      "run-1",
		Identifier: "jane@example.com",
		Payload:    []byte(`{"name":"Jane"}`),
		Error:      "status 422",
		ErrorType:  "permanent",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO run_failures`).
		WithArgs(f.ID, f.RunID, f.Identifier, f.Payload, f.Error, f.ErrorType, f.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.AddFailure(context.Background(), f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListFailures(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "run_id", "identifier", "payload", "error", "error_type", "created_at"}).
		AddRow("f1", "run-1", "+17045550000", []byte(`{}`), "status 503", "transient", now).
		AddRow("f2", "run-1", "a@b.com", []byte(`{}`), "status 422", "permanent", now)

	mock.ExpectQuery(`SELECT id, run_id, identifier, payload`).
		WithArgs("run-1").
		WillReturnRows(rows)

	failures, err := s.ListFailures(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "transient", failures[0].ErrorType)
	assert.Equal(t, "a@b.com", failures[1].Identifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}
