// Package csvfile reads credit and debit records from CSV exports of the
// budget sheet.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"cashflow/internal/sheets"
)

var _ sheets.RecordReader = (*Reader)(nil)

type Reader struct {
	Layout sheets.Layout
	// Comma overrides the field delimiter; zero means ','.
	Comma rune
}

func New(layout sheets.Layout) *Reader {
	return &Reader{Layout: layout}
}

// ReadRecords parses the CSV file at path.
func (r *Reader) ReadRecords(ctx context.Context, path string) (sheets.Records, error) {
	if err := ctx.Err(); err != nil {
		return sheets.Records{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return sheets.Records{}, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	return r.Parse(f)
}

// Parse reads CSV rows from in. Rows may have differing field counts.
func (r *Reader) Parse(in io.Reader) (sheets.Records, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return sheets.Records{}, fmt.Errorf("read csv: %w", err)
	}
	return sheets.ParseGrid(rows, r.Layout)
}
