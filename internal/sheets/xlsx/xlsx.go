// Package xlsx reads credit and debit records from Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cashflow/internal/sheets"
)

var _ sheets.RecordReader = (*Reader)(nil)

// Reader parses the first worksheet (or Sheet, when set) of a workbook.
type Reader struct {
	Layout sheets.Layout
	Sheet  string
}

func New(layout sheets.Layout) *Reader {
	return &Reader{Layout: layout}
}

// ReadRecords opens the workbook at path.
func (r *Reader) ReadRecords(ctx context.Context, path string) (sheets.Records, error) {
	if err := ctx.Err(); err != nil {
		return sheets.Records{}, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return sheets.Records{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return r.read(f)
}

// Parse reads a workbook from an in-memory stream.
func (r *Reader) Parse(in io.Reader) (sheets.Records, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return sheets.Records{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return r.read(f)
}

func (r *Reader) read(f *excelize.File) (sheets.Records, error) {
	sheet := strings.TrimSpace(r.Sheet)
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return sheets.Records{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}
	// Raw values keep numbers unformatted (no currency symbols or rounding).
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheets.Records{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	recs, err := sheets.ParseGrid(rows, r.Layout)
	if err != nil {
		return sheets.Records{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return recs, nil
}
