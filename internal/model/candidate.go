package model

// Source identifies which system produced an ingested file.
type Source string

const (
	SourceIndeed         Source = "indeed"
	SourceHandshake      Source = "handshake"
	SourceZipRecruiter   Source = "ziprecruiter"
	SourceBulkOnboarding Source = "bulkonboarding"
)

// Candidate status labels as stored in the MASTER table.
const (
	StatusApplied        = "Applied"
	StatusBulkOnboarding = "Bulk Onboarding"
)

// CandidateRecord is the canonical, source-agnostic representation of one
// applicant. Adapters produce it, the upsert engine consumes it, and it is
// discarded after the run.
type CandidateRecord struct {
	FullName          string   `json:"full_name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"` // canonical +1XXXXXXXXXX form, or empty
	JobTitle          string   `json:"job_title,omitempty"`
	CurrentEmployment string   `json:"current_employment,omitempty"`
	JobLocation       string   `json:"job_location,omitempty"`
	CandidateLocation string   `json:"candidate_location,omitempty"`
	CurrentRole       string   `json:"current_role,omitempty"`
	DateApplied       string   `json:"date_applied,omitempty"` // YYYY-MM-DD
	Status            string   `json:"status"`
	ReferredBy        string   `json:"referred_by"`
	Source            string   `json:"source"`
	UTMID             string   `json:"utm_id,omitempty"`
	Applied           bool     `json:"applied,omitempty"`
	CandidateURL      string   `json:"candidate_url,omitempty"`
	ResumeURL         string   `json:"resume_url,omitempty"`
	RoleAbbreviation  string   `json:"role_abbreviation,omitempty"`
	StartDate         string   `json:"start_date,omitempty"` // YYYY-MM-DD
	OptIn             bool     `json:"opt_in,omitempty"`
	OfficeRecordIDs   []string `json:"office_record_ids"` // never empty after mapping
}

// Identifier returns the unique lookup key for upsert: phone if present,
// otherwise email. Empty means the record is not upsertable.
func (r CandidateRecord) Identifier() string {
	if r.Phone != "" {
		return r.Phone
	}
	return r.Email
}

// Upsertable reports whether the record carries at least one contact field.
func (r CandidateRecord) Upsertable() bool {
	return r.Phone != "" || r.Email != ""
}

// Fields converts the record to MASTER-table field names. Bulk onboarding
// rows carry a different column set from job-board applicants, so the key
// set follows the status label. Optional columns are present with empty
// values so formula-based lookups stay well-defined.
func (r CandidateRecord) Fields() map[string]any {
	f := map[string]any{
		"Full Name":     r.FullName,
		"Email":         r.Email,
		"Phone":         r.Phone,
		"Status":        r.Status,
		"Source":        r.Source,
		"Referred By":   r.ReferredBy,
		"Office Record": r.OfficeRecordIDs,
	}

	if r.Status == StatusBulkOnboarding {
		f["Role Abbreviation"] = r.RoleAbbreviation
		f["Start Date"] = r.StartDate
		f["Opt In"] = r.OptIn
		return f
	}

	f["Job Title"] = r.JobTitle
	f["Current Employment"] = r.CurrentEmployment
	f["Job Location"] = r.JobLocation
	f["Candidate Location"] = r.CandidateLocation
	f["Current Role"] = r.CurrentRole
	f["Date Applied"] = r.DateApplied
	f["utmId"] = r.UTMID
	f["Applied"] = r.Applied
	if r.Source == "ZipRecruiter" {
		// ZipRecruiter exports carry profile and resume links; the keys are
		// written even when blank so formula lookups stay well-defined.
		f["Candidate URL"] = r.CandidateURL
		f["Resume URL"] = r.ResumeURL
	}
	return f
}

// Office is one office-location record from the store, cached for the
// duration of a single pipeline run.
type Office struct {
	ID               string   `json:"id"`
	ListingLocations []string `json:"listing_locations"`
}
