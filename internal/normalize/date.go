package normalize

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Per-source date layouts. Sources disagree on date formats, so every
// adapter declares which layout its date column uses.
const (
	LayoutIndeed         = "2006-01-02 15:04:05"
	LayoutHandshake      = "2006-01-02 15:04:05 UTC"
	LayoutZipRecruiter   = "1/2/06"
	LayoutBulkOnboarding = "2-Jan" // day and month only, no year
)

// canonical is the calendar-date form consumers sort and filter by.
const canonical = "2006-01-02"

// Date parses a raw date string against the given layout and returns the
// canonical YYYY-MM-DD form. A mismatch is an error, never a silently
// coerced value: callers decide whether to drop the row or keep it with an
// empty date.
//
// Layouts without a year (bulk onboarding start dates) are completed with
// the current year.
func Date(raw, layout string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("normalize: empty date")
	}

	t, err := time.Parse(layout, raw)
	if err != nil {
		return "", eris.Wrapf(err, "normalize: date %q does not match layout %q", raw, layout)
	}

	if t.Year() == 0 {
		now := time.Now()
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	return t.Format(canonical), nil
}
