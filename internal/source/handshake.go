package source

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/normalize"
	"github.com/sells-group/recruit-cli/internal/office"
)

// handshakeAdapter maps Handshake applicant exports. Handshake carries no
// phone and no location data, so records key on email and always get the
// no-office sentinel.
type handshakeAdapter struct{}

func (handshakeAdapter) Source() model.Source { return model.SourceHandshake }

func (handshakeAdapter) Map(row map[string]string, offices *office.Cache) (*model.CandidateRecord, bool) {
	fullName := strings.TrimSpace(row["Student First Name"] + " " + row["Student Last Name"])

	jobTitle := strings.TrimSpace(row["Applied To Name"])
	if jobTitle == "" {
		jobTitle = "Unspecified"
	}

	dateApplied, err := normalize.Date(row["Application Date"], normalize.LayoutHandshake)
	if err != nil {
		zap.L().Warn("handshake date did not parse",
			zap.String("raw", row["Application Date"]),
			zap.Error(err),
		)
	}

	rec := &model.CandidateRecord{
		FullName:        fullName,
		Email:           row["Student Email"],
		JobTitle:        jobTitle,
		DateApplied:     dateApplied,
		Status:          model.StatusApplied,
		ReferredBy:      "Handshake",
		Source:          "Handshake",
		UTMID:           "Handshake",
		Applied:         true,
		OfficeRecordIDs: []string{offices.NoOfficeID()},
	}
	if !minimallyMapped(rec) {
		return nil, false
	}
	return rec, true
}
