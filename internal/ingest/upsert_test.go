package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/resilience"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

// memStore is an in-memory stand-in for the record store. It resolves
// FindFirst by comparing the rendered formula against each stored record's
// phone and email, which is exactly the lookup the uploader issues.
type memStore struct {
	airtable.Client

	records     []airtable.Record
	nextID      int
	failOn      string // identifier whose create/update always fails
	failMsg     string // error message for failOn, default a 422
	findCalls   int
	createCalls int
}

func (m *memStore) FindFirst(_ context.Context, _ string, f airtable.Formula) (*airtable.Record, error) {
	m.findCalls++
	for i := range m.records {
		rec := &m.records[i]
		phone, _ := rec.Fields["Phone"].(string)
		email, _ := rec.Fields["Email"].(string)
		if phone != "" && f.String() == airtable.Eq("Phone", phone).String() {
			return rec, nil
		}
		if email != "" && f.String() == airtable.Eq("Email", email).String() {
			return rec, nil
		}
	}
	return nil, nil
}

func (m *memStore) Create(_ context.Context, _ string, fields map[string]any, _ bool) (*airtable.Record, error) {
	m.createCalls++
	if m.failing(fields) {
		return m.failErr()
	}
	m.nextID++
	rec := airtable.Record{ID: fmt.Sprintf("rec%03d", m.nextID), Fields: fields}
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *memStore) Update(_ context.Context, _ string, recordID string, fields map[string]any, _ bool) (*airtable.Record, error) {
	if m.failing(fields) {
		return m.failErr()
	}
	for i := range m.records {
		if m.records[i].ID == recordID {
			for k, v := range fields {
				m.records[i].Fields[k] = v
			}
			return &m.records[i], nil
		}
	}
	return nil, eris.Errorf("no record %s", recordID)
}

func (m *memStore) failing(fields map[string]any) bool {
	if m.failOn == "" {
		return false
	}
	return fields["Phone"] == m.failOn || fields["Email"] == m.failOn
}

func (m *memStore) failErr() (*airtable.Record, error) {
	if m.failMsg != "" {
		return nil, eris.New(m.failMsg)
	}
	return nil, eris.New("airtable: status 422")
}

type memSink struct {
	failures []model.RunFailure
}

func (s *memSink) AddFailure(_ context.Context, f model.RunFailure) error {
	s.failures = append(s.failures, f)
	return nil
}

func candidate(name, phone, email string, offices ...string) model.CandidateRecord {
	if len(offices) == 0 {
		offices = []string{"recNoOffice"}
	}
	return model.CandidateRecord{
		FullName:        name,
		Phone:           phone,
		Email:           email,
		Status:          model.StatusApplied,
		ReferredBy:      "Indeed",
		Source:          "Indeed",
		Applied:         true,
		OfficeRecordIDs: offices,
	}
}

func TestUploader_CreatesNewRecords(t *testing.T) {
	store := &memStore{}
	u := &Uploader{Client: store, Table: "MASTER"}

	summary, err := u.Upload(context.Background(), []model.CandidateRecord{
		candidate("Jane Doe", "+17045551234", "jane@example.com"),
		candidate("Bob Roe", "", "bob@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalProcessed)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Errors)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, model.UpsertCreated, summary.Records[0].Action)
	assert.Equal(t, "+17045551234", summary.Records[0].Identifier)
	assert.Equal(t, "bob@example.com", summary.Records[1].Identifier)
	assert.Len(t, store.records, 2)
}

func TestUploader_SecondRunUpdates(t *testing.T) {
	store := &memStore{}
	u := &Uploader{Client: store, Table: "MASTER"}
	recs := []model.CandidateRecord{
		candidate("Jane Doe", "+17045551234", "jane@example.com"),
	}

	_, err := u.Upload(context.Background(), recs)
	require.NoError(t, err)

	summary, err := u.Upload(context.Background(), recs)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Len(t, store.records, 1, "re-running the same file must not duplicate records")
}

func TestUploader_OfficeUnionMerge(t *testing.T) {
	store := &memStore{}
	u := &Uploader{Client: store, Table: "MASTER"}

	_, err := u.Upload(context.Background(), []model.CandidateRecord{
		candidate("Jane Doe", "+17045551234", "", "recCLT"),
	})
	require.NoError(t, err)

	summary, err := u.Upload(context.Background(), []model.CandidateRecord{
		candidate("Jane Doe", "+17045551234", "", "recDEN", "recCLT"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	rec := store.records[0]
	offices, _ := rec.Fields["Office Record"].([]string)
	assert.Equal(t, []string{"recCLT", "recDEN"}, offices)
}

func TestUploader_PartialFailure(t *testing.T) {
	store := &memStore{failOn: "bad@example.com"}
	sink := &memSink{}
	u := &Uploader{Client: store, Table: "MASTER", RunID: "run-1", Sink: sink}

	var recs []model.CandidateRecord
	for i := 0; i < 9; i++ {
		recs = append(recs, candidate("OK", fmt.Sprintf("+1704555%04d", i), ""))
	}
	recs = append(recs, candidate("Bad", "", "bad@example.com"))

	summary, err := u.Upload(context.Background(), recs)
	require.NoError(t, err, "individual failures must not abort the run")

	assert.Equal(t, 9, summary.TotalProcessed, "only created-or-updated records count as processed")
	assert.Equal(t, 9, summary.Created)
	assert.Equal(t, 1, summary.Errors)

	require.Len(t, sink.failures, 1)
	f := sink.failures[0]
	assert.Equal(t, "run-1", f.RunID)
	assert.Equal(t, "bad@example.com", f.Identifier)
	assert.Equal(t, "permanent", f.ErrorType)
	assert.NotEmpty(t, f.Payload)
}

func TestUploader_NotUpsertable(t *testing.T) {
	store := &memStore{}
	u := &Uploader{Client: store, Table: "MASTER"}

	summary, err := u.Upload(context.Background(), []model.CandidateRecord{
		{FullName: "No Contact", Status: model.StatusApplied, OfficeRecordIDs: []string{"recNoOffice"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Zero(t, summary.TotalProcessed)
	assert.Zero(t, store.findCalls, "records without contact info never hit the store")
}

func TestUploader_OneStoreCallPerRecord(t *testing.T) {
	// Transport-level retries belong to the client; the uploader must not
	// re-issue a failed record even when the error looks transient.
	store := &memStore{failOn: "bad@example.com", failMsg: "airtable: status 503"}
	u := &Uploader{Client: store, Table: "MASTER"}

	summary, err := u.Upload(context.Background(), []model.CandidateRecord{
		candidate("Bad", "", "bad@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, store.findCalls)
	assert.Equal(t, 1, store.createCalls)
}

func TestUnionMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{"disjoint", []string{"a"}, []string{"b"}, []string{"a", "b"}},
		{"overlap", []string{"a", "b"}, []string{"b", "c"}, []string{"a", "b", "c"}},
		{"empty existing", nil, []string{"a"}, []string{"a"}},
		{"drops blanks", []string{"", "a"}, []string{""}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unionMerge(tt.existing, tt.incoming))
		})
	}
}

func TestClassify_Transient(t *testing.T) {
	// The sink entry for a 503 should be retryable later.
	f := resilience.NewRunFailure("run-1", candidate("X", "+17045550000", ""), eris.New("airtable: status 503"))
	assert.Equal(t, "transient", f.ErrorType)
}
