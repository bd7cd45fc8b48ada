package resilience

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/recruit-cli/internal/model"
)

// NewRunFailure builds the audit entry for one candidate the upsert engine
// could not persist. The full record payload is kept so the row can be
// inspected or re-submitted later.
func NewRunFailure(runID string, record model.CandidateRecord, err error) model.RunFailure {
	payload, marshalErr := json.Marshal(record)
	if marshalErr != nil {
		payload = nil
	}

	return model.RunFailure{
		ID:         uuid.New().String(),
		RunID:      runID,
		Identifier: record.Identifier(),
		Payload:    payload,
		Error:      err.Error(),
		ErrorType:  ClassifyError(err),
		CreatedAt:  time.Now().UTC(),
	}
}
