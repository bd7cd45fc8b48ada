// Package source maps raw rows from each ingestion source into canonical
// candidate records.
package source

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/office"
)

// Adapter converts one parsed row (column name → raw value) into a canonical
// candidate record. ok=false means the row is dropped; adapters filter, they
// never fail.
type Adapter interface {
	Source() model.Source
	Map(row map[string]string, offices *office.Cache) (record *model.CandidateRecord, ok bool)
}

var adapters = map[model.Source]Adapter{
	model.SourceIndeed:         indeedAdapter{},
	model.SourceHandshake:      handshakeAdapter{},
	model.SourceZipRecruiter:   zipRecruiterAdapter{},
	model.SourceBulkOnboarding: bulkOnboardingAdapter{},
}

// For returns the adapter for a source name. An unknown name is a hard
// error; silently producing an empty result has eaten whole files before.
func For(name string) (Adapter, error) {
	a, ok := adapters[model.Source(name)]
	if !ok {
		return nil, eris.Errorf("source: unknown csv type %q", name)
	}
	return a, nil
}

// Names lists the registered source names.
func Names() []string {
	return []string{
		string(model.SourceIndeed),
		string(model.SourceHandshake),
		string(model.SourceZipRecruiter),
		string(model.SourceBulkOnboarding),
	}
}

// minimallyMapped reports whether a record is worth keeping: it needs a name
// or at least one contact field.
func minimallyMapped(r *model.CandidateRecord) bool {
	return r.FullName != "" || r.Upsertable()
}
