package airtable

import "time"

// Record is one row in an Airtable table.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// StringSlice reads a field as a list of strings. Linked-record fields come
// back from the API as []any; a missing or differently-typed field yields nil.
func (r *Record) StringSlice(field string) []string {
	raw, ok := r.Fields[field]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// String reads a field as a string, returning "" when absent or non-string.
func (r *Record) String(field string) string {
	if s, ok := r.Fields[field].(string); ok {
		return s
	}
	return ""
}
