package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var june = Period{Year: 2025, Month: 6, DaysInMonth: 30}

func TestNormalizeSignsAndOrder(t *testing.T) {
	credits := []RawRecord{rec("Paycheck", 15, "1000"), rec("Refund", 2, "20.5")}
	debits := []RawRecord{rec("Rent", 1, "800"), rec("Coffee", 15, "0")}

	n, err := Normalize(credits, debits, june)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Dropped != 0 {
		t.Fatalf("dropped = %d", n.Dropped)
	}
	all := n.Transactions()
	want := []struct {
		item   string
		day    int
		amount string
		kind   Kind
	}{
		{"Paycheck", 15, "1000", Credit},
		{"Refund", 2, "20.5", Credit},
		{"Rent", 1, "-800", Debit},
		{"Coffee", 15, "0", Debit},
	}
	if len(all) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(all), len(want))
	}
	for i, w := range want {
		got := all[i]
		if got.Item != w.item || got.Date.Day() != w.day || !got.Amount.Equal(dec(w.amount)) || got.Kind != w.kind {
			t.Fatalf("tx %d = %+v, want %+v", i, got, w)
		}
		if got.Date.Year() != 2025 || got.Date.Month() != 6 {
			t.Fatalf("tx %d outside period: %v", i, got.Date)
		}
	}
	for _, d := range n.Debits {
		if d.Amount.IsPositive() {
			t.Fatalf("debit %q has positive amount %s", d.Item, d.Amount)
		}
	}
}

func TestNormalizeDropsIncompleteRecords(t *testing.T) {
	day := 3
	amt := decimal.RequireFromString("10")
	credits := []RawRecord{
		{Item: "", Day: &day, Amount: &amt},
		{Item: "   ", Day: &day, Amount: &amt},
		{Item: "No day", Amount: &amt},
		{Item: "No amount", Day: &day},
		rec("Ok", 3, "10"),
	}
	n, err := Normalize(credits, nil, june)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Dropped != 4 || len(n.Credits) != 1 || n.Credits[0].Item != "Ok" {
		t.Fatalf("unexpected result: %+v", n)
	}
}

func TestNormalizeInvalidDate(t *testing.T) {
	tests := []struct {
		name    string
		credits []RawRecord
		debits  []RawRecord
	}{
		{"debit day zero", nil, []RawRecord{rec("Rent", 0, "800")}},
		{"credit past month end", []RawRecord{rec("Pay", 31, "1")}, nil},
		{"negative day", []RawRecord{rec("Pay", -1, "1")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.credits, tt.debits, june)
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("expected ErrInvalidDate, got %v", err)
			}
		})
	}
}

func TestNormalizeInvalidDateNotMaskedByDrop(t *testing.T) {
	// An incomplete row earlier in the group must not hide a bad day later on.
	credits := []RawRecord{{Item: "partial"}, rec("Bad", 45, "1")}
	if _, err := Normalize(credits, nil, june); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNormalizeNegativeRawAmount(t *testing.T) {
	_, err := Normalize(nil, []RawRecord{rec("Rent", 1, "-5")}, june)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n, err := Normalize(nil, nil, june)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Transactions()) != 0 || n.Dropped != 0 {
		t.Fatalf("expected empty result, got %+v", n)
	}
}
