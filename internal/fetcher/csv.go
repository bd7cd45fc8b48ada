package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures CSV parsing.
type CSVOptions struct {
	Delimiter rune   // default ','
	Encoding  string // IANA charset name; "" or "utf-8" reads as-is
}

// ReadCSVRows parses delimited content with the first row as header and
// returns one map per data row, keyed by header. Blank lines are skipped,
// rows shorter than the header get empty strings for the missing columns,
// and an all-empty row is dropped. Excel exports are frequently
// windows-1252; set Encoding to decode before parsing.
func ReadCSVRows(r io.Reader, opts CSVOptions) ([]map[string]string, error) {
	if opts.Encoding != "" && opts.Encoding != "utf-8" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: unknown encoding %q", opts.Encoding)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := mapRow(header, record)
		if allEmpty(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapRow pairs each header with the corresponding value in the record.
// Missing trailing values become empty strings.
func mapRow(header []string, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func allEmpty(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
