package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/normalize"
	"github.com/sells-group/recruit-cli/internal/office"
)

// zipRecruiterAdapter maps ZipRecruiter applicant exports. Unlike Indeed, a
// row with an unparseable phone is kept; it falls back to email as the
// upsert identifier.
type zipRecruiterAdapter struct{}

func (zipRecruiterAdapter) Source() model.Source { return model.SourceZipRecruiter }

func (zipRecruiterAdapter) Map(row map[string]string, offices *office.Cache) (*model.CandidateRecord, bool) {
	phone, _ := normalize.Phone(row["Phone Number"])

	dateApplied, err := normalize.Date(row["Apply Date"], normalize.LayoutZipRecruiter)
	if err != nil {
		zap.L().Warn("ziprecruiter date did not parse",
			zap.String("raw", row["Apply Date"]),
			zap.Error(err),
		)
	}

	rec := &model.CandidateRecord{
		FullName:        row["Name"],
		Email:           row["Email"],
		Phone:           phone,
		JobTitle:        row["Job"],
		JobLocation:     joinCityState(row["City"], row["State"]),
		DateApplied:     dateApplied,
		Status:          model.StatusApplied,
		ReferredBy:      "ZipRecruiter",
		Source:          "ZipRecruiter",
		UTMID:           "ZipRecruiter",
		Applied:         true,
		CandidateURL:    row["Candidate Overview"],
		ResumeURL:       row["Resume"],
		OfficeRecordIDs: offices.Match(row["Job Location"]),
	}
	if !minimallyMapped(rec) {
		return nil, false
	}
	return rec, true
}

// joinCityState composes "City, State", tolerating either side being empty.
func joinCityState(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
