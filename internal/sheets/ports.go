package sheets

import (
	"context"
	"errors"

	"cashflow/internal/core"
)

// Records holds the two record groups read from one workbook.
type Records struct {
	Credits []core.RawRecord
	Debits  []core.RawRecord
}

// Ports for inbound adapters.
type (
	// RecordReader loads credit and debit records from a source such as a
	// file path or a spreadsheet identifier.
	RecordReader interface {
		ReadRecords(ctx context.Context, source string) (Records, error)
	}
)

var (
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrSourceNotFound    = errors.New("source not found")
)
