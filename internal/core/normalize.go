package core

import (
	"fmt"
	"strings"
)

// Normalized is the output of Normalize: credits followed by debits, plus the
// number of incomplete records that were skipped.
type Normalized struct {
	Credits []Transaction
	Debits  []Transaction
	Dropped int
}

// Transactions returns credits then debits, the order that breaks same-date ties.
func (n Normalized) Transactions() []Transaction {
	out := make([]Transaction, 0, len(n.Credits)+len(n.Debits))
	out = append(out, n.Credits...)
	return append(out, n.Debits...)
}

// Normalize converts raw credit and debit records into signed, dated
// transactions for the period. Records missing an item, day or amount are
// skipped and counted. A day outside the month fails with ErrInvalidDate and
// a negative raw amount fails with ErrInvalidAmount.
func Normalize(credits, debits []RawRecord, p Period) (Normalized, error) {
	var out Normalized

	cr, dropped, err := normalizeGroup(credits, Credit, p)
	if err != nil {
		return Normalized{}, err
	}
	out.Credits = cr
	out.Dropped += dropped

	db, dropped, err := normalizeGroup(debits, Debit, p)
	if err != nil {
		return Normalized{}, err
	}
	out.Debits = db
	out.Dropped += dropped

	return out, nil
}

func normalizeGroup(records []RawRecord, kind Kind, p Period) ([]Transaction, int, error) {
	out := make([]Transaction, 0, len(records))
	dropped := 0
	for i, r := range records {
		item := strings.TrimSpace(r.Item)
		if item == "" || r.Day == nil || r.Amount == nil {
			dropped++
			continue
		}
		if !p.Contains(*r.Day) {
			return nil, 0, fmt.Errorf("%s record %d (%q): day %d not in %s: %w", kind, i+1, item, *r.Day, p, ErrInvalidDate)
		}
		amount := *r.Amount
		if amount.IsNegative() {
			return nil, 0, fmt.Errorf("%s record %d (%q): negative amount %s: %w", kind, i+1, item, amount, ErrInvalidAmount)
		}
		if kind == Debit {
			amount = amount.Neg()
		}
		out = append(out, Transaction{
			Item:   item,
			Date:   p.Date(*r.Day),
			Amount: amount,
			Kind:   kind,
		})
	}
	return out, dropped, nil
}
