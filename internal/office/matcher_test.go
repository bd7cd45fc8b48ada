package office

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

const noOffice = "recNoOffice"

func charlotteCache() *Cache {
	return NewCache([]model.Office{
		{ID: "recCLT", ListingLocations: []string{"Charlotte, NC"}},
	}, noOffice)
}

func TestMatchExact(t *testing.T) {
	assert.Equal(t, []string{"recCLT"}, charlotteCache().Match("Charlotte, NC"))
}

func TestMatchStripsZip(t *testing.T) {
	c := charlotteCache()
	assert.Equal(t, []string{"recCLT"}, c.Match("Charlotte, NC 28218"))
	assert.Equal(t, []string{"recCLT"}, c.Match("Charlotte, NC 28218-1234"))
}

func TestMatchCommaInsertion(t *testing.T) {
	assert.Equal(t, []string{"recCLT"}, charlotteCache().Match("Charlotte NC"))
}

func TestMatchCommaStripped(t *testing.T) {
	c := NewCache([]model.Office{
		{ID: "recCLT", ListingLocations: []string{"Charlotte NC"}},
	}, noOffice)
	assert.Equal(t, []string{"recCLT"}, c.Match("Charlotte, NC"))
}

func TestMatchCaseAndWhitespace(t *testing.T) {
	c := charlotteCache()
	assert.Equal(t, []string{"recCLT"}, c.Match("  CHARLOTTE,   nc  "))
}

func TestMatchUnknownLocation(t *testing.T) {
	assert.Equal(t, []string{noOffice}, charlotteCache().Match("Nowhere, XX"))
}

func TestMatchEmptyInput(t *testing.T) {
	c := charlotteCache()
	assert.Equal(t, []string{noOffice}, c.Match(""))
	assert.Equal(t, []string{noOffice}, c.Match("   "))
}

func TestMatchMultipleOffices(t *testing.T) {
	c := NewCache([]model.Office{
		{ID: "recDEN1", ListingLocations: []string{"Denver, CO", "Aurora, CO"}},
		{ID: "recDEN2", ListingLocations: []string{"Denver, CO"}},
	}, noOffice)

	got := c.Match("Denver, CO")
	assert.Equal(t, []string{"recDEN1", "recDEN2"}, got)
}

func TestMatchDeduplicatesWithinOffice(t *testing.T) {
	// An office listing the same label twice still appears once.
	c := NewCache([]model.Office{
		{ID: "recDM", ListingLocations: []string{"Des Moines, IA", "des moines, ia"}},
	}, noOffice)

	assert.Equal(t, []string{"recDM"}, c.Match("Des Moines, IA"))
}

type fakeSelectClient struct {
	airtable.Client
	pages [][]airtable.Record
	calls int
}

func (f *fakeSelectClient) Select(_ context.Context, _ string, opts airtable.SelectOptions) ([]airtable.Record, string, error) {
	page := f.pages[f.calls]
	f.calls++
	if f.calls < len(f.pages) {
		return page, "itrNEXT", nil
	}
	return page, "", nil
}

func (f *fakeSelectClient) SelectAll(ctx context.Context, table string, opts airtable.SelectOptions) ([]airtable.Record, error) {
	var all []airtable.Record
	for {
		page, offset, err := f.Select(ctx, table, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if offset == "" {
			return all, nil
		}
	}
}

func TestFetchBuildsCacheAcrossPages(t *testing.T) {
	client := &fakeSelectClient{pages: [][]airtable.Record{
		{{ID: "rec1", Fields: map[string]any{"Listing Location": []any{"Charlotte, NC"}}}},
		{{ID: "rec2", Fields: map[string]any{"Listing Location": []any{"Denver, CO"}}}},
	}}

	cache, err := Fetch(context.Background(), client, "Office Locations", "Listing Location", noOffice)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, []string{"rec1"}, cache.Match("Charlotte, NC"))
	assert.Equal(t, []string{"rec2"}, cache.Match("Denver CO"))
}
