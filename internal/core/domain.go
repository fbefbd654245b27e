package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

type (
	// Kind tells whether a transaction came from the credit or the debit group.
	Kind string

	Date struct {
		time.Time
	}

	// RawRecord is one spreadsheet row as delivered by an input adapter.
	// A nil Day or Amount, or a blank Item, marks the field as missing.
	RawRecord struct {
		Item   string
		Day    *int
		Amount *decimal.Decimal
	}

	Transaction struct {
		Item   string
		Date   Date
		Amount decimal.Decimal // signed: credits >= 0, debits <= 0
		Kind   Kind
	}

	LedgerEntry struct {
		Transaction
		RunningBalance decimal.Decimal
	}

	// Ledger is sorted by date; same-date entries keep normalization order.
	Ledger []LedgerEntry

	DailyBucket struct {
		Date           Date
		NetChange      decimal.Decimal
		RunningBalance decimal.Decimal
	}

	// DailyPoint holds the projected balance for one calendar day.
	// Balance.Valid is false for days before the first transaction.
	DailyPoint struct {
		Date    Date
		Balance decimal.NullDecimal
	}

	DailySeries []DailyPoint
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalText keeps dates in YYYY-MM-DD form when serialized.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01-02", string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Closing returns the final running balance, or an invalid value for an empty ledger.
func (l Ledger) Closing() decimal.NullDecimal {
	if len(l) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(l[len(l)-1].RunningBalance)
}

// Total sums the signed amounts of the given transactions.
func Total(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}
