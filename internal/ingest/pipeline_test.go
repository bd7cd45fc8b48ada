package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/config"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

// officeListClient serves a fixed office-location table.
type officeListClient struct {
	airtable.Client
	offices []airtable.Record
}

func (c *officeListClient) SelectAll(_ context.Context, _ string, _ airtable.SelectOptions) ([]airtable.Record, error) {
	return c.offices, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Airtable: config.AirtableConfig{
			MasterTable:          "MASTER",
			OfficeTable:          "Office Locations",
			ListingLocationField: "Listing Location",
			NoOfficeRecordID:     "recNoOffice",
		},
		Ingest: config.IngestConfig{
			BatchSize:    10,
			BatchPauseMS: 200,
			CSVEncoding:  "utf-8",
			FTPTimeout:   30,
		},
	}
}

const indeedCSV = `name,email,phone,job title,current role,job location,candidate location,date
Jane Doe,jane@example.com,(704) 555-1234,Recruiter,Acme Inc,"Charlotte, NC",Charlotte,2024-03-01 09:30:00
No Phone,nophone@example.com,,Recruiter,Acme Inc,"Charlotte, NC",Charlotte,2024-03-01 10:00:00
Bob Roe,bob@example.com,17045559999,Sales,Widget Co,Unknown Town,Denver,2024-03-02 11:00:00
`

func writeTestCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "applicants.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestPipeline_ProcessIndeedCSV(t *testing.T) {
	client := &officeListClient{offices: []airtable.Record{
		{ID: "recCLT", Fields: map[string]any{"Listing Location": []any{"Charlotte, NC"}}},
	}}
	p := NewPipeline(client, testConfig())

	records, parsed, err := p.Process(context.Background(), writeTestCSV(t, indeedCSV), "indeed")
	require.NoError(t, err)

	// The row without a parseable phone is dropped for this source, but it
	// still counts toward the parsed-row total.
	assert.Equal(t, 3, parsed)
	require.Len(t, records, 2)

	jane := records[0]
	assert.Equal(t, "Jane Doe", jane.FullName)
	assert.Equal(t, "+17045551234", jane.Phone)
	assert.Equal(t, "2024-03-01", jane.DateApplied)
	assert.Equal(t, []string{"recCLT"}, jane.OfficeRecordIDs)

	bob := records[1]
	assert.Equal(t, "+17045559999", bob.Phone)
	assert.Equal(t, []string{"recNoOffice"}, bob.OfficeRecordIDs, "unmatched locations fall back to the sentinel office")
}

func TestPipeline_UnknownSource(t *testing.T) {
	p := NewPipeline(&officeListClient{}, testConfig())

	_, _, err := p.Process(context.Background(), writeTestCSV(t, indeedCSV), "linkedin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown csv type")
}

func TestPipeline_MissingFile(t *testing.T) {
	p := NewPipeline(&officeListClient{}, testConfig())

	_, _, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "indeed")
	require.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://drops.example.com/a.csv"))
	assert.True(t, isRemote("ftp://drops.example.com/a.csv"))
	assert.False(t, isRemote("/var/data/a.csv"))
	assert.False(t, isRemote("a.csv"))
}
