package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/normalize"
	"github.com/sells-group/recruit-cli/internal/office"
)

// indeedAdapter maps Indeed applicant exports. Indeed is the only source
// with a hard drop rule: rows without a parseable phone are excluded, since
// phone is the upsert identifier for this source.
type indeedAdapter struct{}

func (indeedAdapter) Source() model.Source { return model.SourceIndeed }

func (indeedAdapter) Map(row map[string]string, offices *office.Cache) (*model.CandidateRecord, bool) {
	phone, ok := normalize.Phone(row["phone"])
	if !ok {
		zap.L().Debug("dropping indeed row without parseable phone",
			zap.String("name", row["name"]),
		)
		return nil, false
	}

	dateApplied, err := normalize.Date(row["date"], normalize.LayoutIndeed)
	if err != nil {
		zap.L().Warn("indeed date did not parse",
			zap.String("raw", row["date"]),
			zap.Error(err),
		)
	}

	rec := &model.CandidateRecord{
		FullName:          row["name"],
		Email:             row["email"],
		Phone:             phone,
		JobTitle:          row["job title"],
		CurrentEmployment: row["current role"],
		JobLocation:       row["job location"],
		CandidateLocation: row["candidate location"],
		CurrentRole:       row["current role"],
		DateApplied:       dateApplied,
		Status:            model.StatusApplied,
		ReferredBy:        "Indeed",
		Source:            "Indeed",
		UTMID:             "Indeed",
		Applied:           true,
		OfficeRecordIDs:   offices.Match(row["job location"]),
	}
	if !minimallyMapped(rec) {
		return nil, false
	}
	return rec, true
}
