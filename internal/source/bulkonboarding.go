package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/normalize"
	"github.com/sells-group/recruit-cli/internal/office"
)

// bulkOnboardingAdapter maps internal bulk-onboarding sheets. These carry a
// start date instead of an application date and no location data.
type bulkOnboardingAdapter struct{}

func (bulkOnboardingAdapter) Source() model.Source { return model.SourceBulkOnboarding }

func (bulkOnboardingAdapter) Map(row map[string]string, offices *office.Cache) (*model.CandidateRecord, bool) {
	phone, _ := normalize.Phone(row["Phone"])

	startDate, err := normalize.Date(row["Start Date"], normalize.LayoutBulkOnboarding)
	if err != nil {
		zap.L().Warn("bulk onboarding start date did not parse",
			zap.String("raw", row["Start Date"]),
			zap.Error(err),
		)
	}

	rec := &model.CandidateRecord{
		FullName:         row["Full Name"],
		Email:            row["Email"],
		Phone:            phone,
		RoleAbbreviation: row["Role Abbreviation"],
		StartDate:        startDate,
		Status:           model.StatusBulkOnboarding,
		ReferredBy:       "Bulk Onboarding",
		Source:           "Bulk Onboarding",
		OptIn:            true,
		OfficeRecordIDs:  []string{offices.NoOfficeID()},
	}
	if !minimallyMapped(rec) {
		return nil, false
	}
	return rec, true
}
