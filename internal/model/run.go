package model

import "time"

// RunStatus represents the state of one ingest run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// IngestRun is the audit record for one end-to-end ingestion.
type IngestRun struct {
	ID          string     `json:"id"`
	File        string     `json:"file"`
	Source      Source     `json:"source"`
	Status      RunStatus  `json:"status"`
	ParsedRows  int        `json:"parsed_rows"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Errors      int        `json:"errors"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunFailure records one candidate the upsert engine could not persist.
type RunFailure struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Identifier string    `json:"identifier"`
	Payload    []byte    `json:"payload"` // JSON-encoded CandidateRecord
	Error      string    `json:"error"`
	ErrorType  string    `json:"error_type"` // "transient" or "permanent"
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertAction says what the engine did with one record.
type UpsertAction string

const (
	UpsertCreated UpsertAction = "created"
	UpsertUpdated UpsertAction = "updated"
)

// UpsertedRecord identifies one store record touched during an upload.
type UpsertedRecord struct {
	ID         string       `json:"id"`
	Identifier string       `json:"identifier"`
	Action     UpsertAction `json:"action"`
}

// UploadSummary is returned to the caller after a full upload run. Counts are
// always present even when individual records failed. TotalProcessed counts
// records successfully created or updated; ParsedRows counts every row read
// from the file, including rows the adapter dropped, and is filled in by the
// caller that ran the pipeline.
type UploadSummary struct {
	ParsedRows     int              `json:"parsed_rows"`
	TotalProcessed int              `json:"total_processed"`
	Created        int              `json:"created"`
	Updated        int              `json:"updated"`
	Errors         int              `json:"errors"`
	Records        []UpsertedRecord `json:"records"`
}
