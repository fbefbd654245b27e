package xlsx

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"cashflow/internal/core"
	"cashflow/internal/sheets"
)

func writeWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}
	path := filepath.Join(t.TempDir(), "budget.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func budgetCells() map[string]any {
	return map[string]any{
		"A1": "Budget",
		"A2": "Item", "B2": "Date", "C2": "Amount",
		"D2": "Item", "E2": "Date", "F2": "Amount",
		"A3": "Paycheck", "B3": 1, "C3": 1000,
		"D3": "Rent", "E3": 5, "F3": 800.25,
		"D4": "Phone", "E4": 12, "F4": 45,
		"A5": "Tip", "C5": 20,
	}
}

func TestReadRecords(t *testing.T) {
	path := writeWorkbook(t, budgetCells())

	recs, err := New(sheets.DefaultLayout()).ReadRecords(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs.Credits) != 2 || len(recs.Debits) != 2 {
		t.Fatalf("got %d credits, %d debits", len(recs.Credits), len(recs.Debits))
	}
	rent := recs.Debits[0]
	if rent.Item != "Rent" || *rent.Day != 5 || rent.Amount.String() != "800.25" {
		t.Fatalf("unexpected rent: %+v", rent)
	}
	if recs.Credits[1].Day != nil {
		t.Fatalf("tip should have no day: %+v", recs.Credits[1])
	}
}

func TestParseFromReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range budgetCells() {
		_ = f.SetCellValue("Sheet1", ref, v)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	recs, err := New(sheets.DefaultLayout()).Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs.Credits) != 2 {
		t.Fatalf("credits = %d", len(recs.Credits))
	}
}

func TestReadRecordsInvalidDay(t *testing.T) {
	cells := budgetCells()
	cells["B3"] = "tomorrow"
	path := writeWorkbook(t, cells)

	_, err := New(sheets.DefaultLayout()).ReadRecords(context.Background(), path)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	r := New(sheets.DefaultLayout())
	if _, err := r.ReadRecords(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := writeWorkbook(t, budgetCells())
	r.Sheet = "Nope"
	if _, err := r.ReadRecords(context.Background(), path); err == nil {
		t.Fatal("expected error for unknown sheet")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(sheets.DefaultLayout()).ReadRecords(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
