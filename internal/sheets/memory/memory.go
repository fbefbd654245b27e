package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/sheets"
)

// SourcePrefix selects a named in-memory workbook: mem:<name>.
const SourcePrefix = "mem:"

var _ sheets.RecordReader = (*Store)(nil)

// Store keeps named record sets in memory for tests and demos.
type Store struct {
	mu   sync.Mutex
	sets map[string]sheets.Records
}

func New() *Store {
	return &Store{sets: map[string]sheets.Records{}}
}

// NewWithSample returns a store holding the "sample" workbook used by the
// demo page.
func NewWithSample() *Store {
	s := New()
	s.Put("sample", sampleRecords())
	return s
}

// Put stores a copy of recs under name.
func (s *Store) Put(name string, recs sheets.Records) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[strings.TrimSpace(name)] = sheets.Records{
		Credits: slices.Clone(recs.Credits),
		Debits:  slices.Clone(recs.Debits),
	}
}

// Names lists stored record sets in insertion-independent sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sets))
	for name := range s.sets {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ReadRecords returns the set named by source, with or without the mem:
// prefix.
func (s *Store) ReadRecords(_ context.Context, source string) (sheets.Records, error) {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(source), SourcePrefix))
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, ok := s.sets[name]
	if !ok {
		return sheets.Records{}, fmt.Errorf("%w: %s%s", sheets.ErrSourceNotFound, SourcePrefix, name)
	}
	return sheets.Records{
		Credits: slices.Clone(recs.Credits),
		Debits:  slices.Clone(recs.Debits),
	}, nil
}

func sampleRecords() sheets.Records {
	rec := func(item string, day int, amount int64) core.RawRecord {
		d := day
		a := decimal.NewFromInt(amount)
		return core.RawRecord{Item: item, Day: &d, Amount: &a}
	}
	return sheets.Records{
		Credits: []core.RawRecord{
			rec("Paycheck", 1, 2500),
			rec("Paycheck", 15, 2500),
			rec("Freelance", 22, 600),
		},
		Debits: []core.RawRecord{
			rec("Rent", 3, 1800),
			rec("Utilities", 8, 160),
			rec("Groceries", 10, 420),
			rec("Car payment", 18, 380),
			rec("Insurance", 25, 140),
		},
	}
}
