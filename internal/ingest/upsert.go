package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/resilience"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

// FailureSink receives the audit entry for each record that could not be
// persisted. The runlog store satisfies it.
type FailureSink interface {
	AddFailure(ctx context.Context, failure model.RunFailure) error
}

// Uploader upserts candidate records into the MASTER table in rate-friendly
// batches.
type Uploader struct {
	Client     airtable.Client
	Table      string
	BatchSize  int
	BatchPause time.Duration

	// RunID and Sink are optional; when set, per-record failures are
	// persisted for later inspection.
	RunID string
	Sink  FailureSink
}

// officeField is the MASTER-table column linking a candidate to offices.
const officeField = "Office Record"

// Upload persists every record, looking each one up by phone (or email when
// the phone is missing) and updating the match or creating a fresh record.
// Records are written in batches of BatchSize with a pause between batches
// to stay under the store's rate cap. A failed record is counted and logged
// but never aborts the run; the summary always carries full counts, with
// TotalProcessed covering only the records actually created or updated.
func (u *Uploader) Upload(ctx context.Context, records []model.CandidateRecord) (*model.UploadSummary, error) {
	batchSize := u.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	summary := &model.UploadSummary{}
	for i, rec := range records {
		if i > 0 && i%batchSize == 0 && u.BatchPause > 0 {
			timer := time.NewTimer(u.BatchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return summary, ctx.Err()
			case <-timer.C:
			}
		}

		upserted, err := u.upsertOne(ctx, rec)
		if err != nil {
			summary.Errors++
			zap.L().Warn("upsert failed",
				zap.String("identifier", rec.Identifier()),
				zap.Error(err),
			)
			u.recordFailure(ctx, rec, err)
			continue
		}

		summary.TotalProcessed++
		switch upserted.Action {
		case model.UpsertCreated:
			summary.Created++
		case model.UpsertUpdated:
			summary.Updated++
		}
		summary.Records = append(summary.Records, *upserted)
	}

	zap.L().Info("upload complete",
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (u *Uploader) upsertOne(ctx context.Context, rec model.CandidateRecord) (*model.UpsertedRecord, error) {
	if !rec.Upsertable() {
		return nil, eris.New("ingest: record has no phone or email")
	}

	// The client retries transient statuses itself, so each store call here
	// is issued exactly once.
	existing, err := u.Client.FindFirst(ctx, u.Table, u.lookupFormula(rec))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: lookup")
	}

	fields := rec.Fields()

	if existing != nil {
		// Keep office links the record already has; the new run only adds.
		fields[officeField] = unionMerge(existing.StringSlice(officeField), rec.OfficeRecordIDs)

		updated, err := u.Client.Update(ctx, u.Table, existing.ID, fields, true)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: update")
		}
		return &model.UpsertedRecord{
			ID:         updated.ID,
			Identifier: rec.Identifier(),
			Action:     model.UpsertUpdated,
		}, nil
	}

	created, err := u.Client.Create(ctx, u.Table, fields, true)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create")
	}
	return &model.UpsertedRecord{
		ID:         created.ID,
		Identifier: rec.Identifier(),
		Action:     model.UpsertCreated,
	}, nil
}

// lookupFormula matches on phone when present, email otherwise.
func (u *Uploader) lookupFormula(rec model.CandidateRecord) airtable.Formula {
	if rec.Phone != "" {
		return airtable.Eq("Phone", rec.Phone)
	}
	return airtable.Eq("Email", rec.Email)
}

func (u *Uploader) recordFailure(ctx context.Context, rec model.CandidateRecord, err error) {
	if u.Sink == nil {
		return
	}
	failure := resilience.NewRunFailure(u.RunID, rec, err)
	if sinkErr := u.Sink.AddFailure(ctx, failure); sinkErr != nil {
		zap.L().Error("record failure entry not persisted",
			zap.String("identifier", rec.Identifier()),
			zap.Error(sinkErr),
		)
	}
}

// unionMerge combines two id lists preserving encounter order without
// duplicates.
func unionMerge(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, id := range existing {
		if id != "" && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range incoming {
		if id != "" && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}
