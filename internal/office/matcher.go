// Package office caches office-location records for one pipeline run and
// fuzzy-matches free-text job locations against their listing labels.
package office

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

var (
	// Trailing 5-digit zip, with optional +4: "Charlotte, NC 28218".
	zipSuffix = regexp.MustCompile(`\s+\d{5}(-\d{4})?$`)
	// Word followed by a 2-letter state token: "charlotte nc".
	cityState = regexp.MustCompile(`(\w+)\s+(\w{2})$`)
	// Comma plus any following whitespace.
	commaSpace = regexp.MustCompile(`,\s*`)
	// Internal whitespace runs.
	spaceRun = regexp.MustCompile(`\s+`)
)

// Cache holds the office locations fetched for a single run. There is no
// cross-run caching; every pipeline invocation sees a fresh list.
type Cache struct {
	offices    []model.Office
	noOfficeID string
}

// NewCache builds a cache from already-fetched offices. noOfficeID is the
// sentinel returned when nothing matches.
func NewCache(offices []model.Office, noOfficeID string) *Cache {
	return &Cache{offices: offices, noOfficeID: noOfficeID}
}

// Fetch loads the full office-location table, 100 records per page, keeping
// only the listing-location labels.
func Fetch(ctx context.Context, client airtable.Client, table, locationField, noOfficeID string) (*Cache, error) {
	records, err := client.SelectAll(ctx, table, airtable.SelectOptions{
		PageSize: 100,
		Fields:   []string{locationField},
	})
	if err != nil {
		return nil, eris.Wrap(err, "office: fetch locations")
	}

	offices := make([]model.Office, 0, len(records))
	for _, rec := range records {
		offices = append(offices, model.Office{
			ID:               rec.ID,
			ListingLocations: rec.StringSlice(locationField),
		})
	}

	zap.L().Debug("fetched office locations", zap.Int("count", len(offices)))
	return NewCache(offices, noOfficeID), nil
}

// NoOfficeID returns the sentinel identifier for unmatched locations.
func (c *Cache) NoOfficeID() string {
	return c.noOfficeID
}

// Len returns the number of cached offices.
func (c *Cache) Len() int {
	return len(c.offices)
}

// Match returns the office record ids whose listing labels equal the given
// job location, in encounter order and deduplicated. The listing-label field
// is multi-valued, so one input can legitimately match several offices. An
// empty input or no match yields the single sentinel id.
func (c *Cache) Match(jobLocation string) []string {
	normalized := normalizeLocation(jobLocation)
	if normalized == "" {
		return []string{c.noOfficeID}
	}

	// Handle both "charlotte, nc" and "charlotte nc" input shapes.
	withComma := cityState.ReplaceAllString(normalized, "${1}, ${2}")
	withoutComma := commaSpace.ReplaceAllString(normalized, " ")

	var matches []string
	seen := make(map[string]struct{})
	for _, office := range c.offices {
		for _, label := range office.ListingLocations {
			l := strings.ToLower(strings.TrimSpace(label))
			if l != normalized && l != withComma && l != withoutComma {
				continue
			}
			if _, dup := seen[office.ID]; !dup {
				seen[office.ID] = struct{}{}
				matches = append(matches, office.ID)
			}
			break
		}
	}

	if len(matches) == 0 {
		zap.L().Debug("no office match", zap.String("job_location", jobLocation))
		return []string{c.noOfficeID}
	}

	zap.L().Debug("matched offices",
		zap.String("job_location", jobLocation),
		zap.Int("count", len(matches)),
	)
	return matches
}

// normalizeLocation strips a trailing zip code, trims, lowercases, and
// collapses internal whitespace.
func normalizeLocation(s string) string {
	s = zipSuffix.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRun.ReplaceAllString(s, " ")
}
