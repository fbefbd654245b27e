package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cashflow/internal/sheets"
	"cashflow/internal/sheets/csvfile"
	"cashflow/internal/sheets/google"
	"cashflow/internal/sheets/memory"
	"cashflow/internal/sheets/xlsx"
)

var _ sheets.RecordReader = (*SourceResolver)(nil)

// SourceResolver routes a source identifier to the adapter that can read it:
// .xlsx and .csv paths, gsheet:<id>[/<sheet>] and mem:<name>.
type SourceResolver struct {
	xlsx   sheets.RecordReader
	csv    sheets.RecordReader
	google sheets.RecordReader
	memory sheets.RecordReader
}

// NewSourceResolver builds a resolver for file sources using layout. The
// Google and memory readers are optional; sources needing a missing reader
// fail with sheets.ErrUnsupportedSource.
func NewSourceResolver(layout sheets.Layout, googleReader, memoryReader sheets.RecordReader) *SourceResolver {
	return &SourceResolver{
		xlsx:   xlsx.New(layout),
		csv:    csvfile.New(layout),
		google: googleReader,
		memory: memoryReader,
	}
}

// Reader returns the adapter for source.
func (r *SourceResolver) Reader(source string) (sheets.RecordReader, error) {
	src := strings.TrimSpace(source)
	var reader sheets.RecordReader
	switch {
	case strings.HasPrefix(src, google.SourcePrefix):
		reader = r.google
	case strings.HasPrefix(src, memory.SourcePrefix):
		reader = r.memory
	default:
		switch strings.ToLower(filepath.Ext(src)) {
		case ".xlsx":
			reader = r.xlsx
		case ".csv":
			reader = r.csv
		}
	}
	if reader == nil {
		return nil, fmt.Errorf("%w: %q", sheets.ErrUnsupportedSource, source)
	}
	return reader, nil
}

func (r *SourceResolver) ReadRecords(ctx context.Context, source string) (sheets.Records, error) {
	reader, err := r.Reader(source)
	if err != nil {
		return sheets.Records{}, err
	}
	return reader.ReadRecords(ctx, strings.TrimSpace(source))
}
