package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cashflow/internal/core"
)

type columnIndexes struct {
	item, day, amount int
}

func (c Columns) indexes() (columnIndexes, error) {
	var out columnIndexes
	var err error
	if out.item, err = ColumnIndex(c.Item); err != nil {
		return out, err
	}
	if out.day, err = ColumnIndex(c.Day); err != nil {
		return out, err
	}
	if out.amount, err = ColumnIndex(c.Amount); err != nil {
		return out, err
	}
	return out, nil
}

// ParseGrid turns a row-major cell matrix into credit and debit records.
// Rows up to and including the header row are skipped. A group whose three
// cells are all blank on a row yields no record; a partially blank group
// yields a record with the missing fields left nil so normalization can
// drop and count it. Unparseable days and amounts are errors.
func ParseGrid(rows [][]string, layout Layout) (Records, error) {
	credCols, err := layout.Credits.indexes()
	if err != nil {
		return Records{}, fmt.Errorf("credit columns: %w", err)
	}
	debCols, err := layout.Debits.indexes()
	if err != nil {
		return Records{}, fmt.Errorf("debit columns: %w", err)
	}

	out := Records{Credits: []core.RawRecord{}, Debits: []core.RawRecord{}}
	for i := layout.HeaderRow; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1

		rec, ok, err := parseCells(row, credCols)
		if err != nil {
			return Records{}, fmt.Errorf("row %d credit: %w", rowNum, err)
		}
		if ok {
			out.Credits = append(out.Credits, rec)
		}

		rec, ok, err = parseCells(row, debCols)
		if err != nil {
			return Records{}, fmt.Errorf("row %d debit: %w", rowNum, err)
		}
		if ok {
			out.Debits = append(out.Debits, rec)
		}
	}
	return out, nil
}

func parseCells(row []string, cols columnIndexes) (core.RawRecord, bool, error) {
	item := strings.TrimSpace(safeGet(row, cols.item))
	dayStr := strings.TrimSpace(safeGet(row, cols.day))
	amountStr := strings.TrimSpace(safeGet(row, cols.amount))
	if item == "" && dayStr == "" && amountStr == "" {
		return core.RawRecord{}, false, nil
	}

	rec := core.RawRecord{Item: item}
	if dayStr != "" {
		day, err := parseDay(dayStr)
		if err != nil {
			return core.RawRecord{}, false, err
		}
		rec.Day = &day
	}
	if amountStr != "" {
		amount, err := core.ParseAmount(amountStr)
		if err != nil {
			return core.RawRecord{}, false, fmt.Errorf("amount %q: %w", amountStr, err)
		}
		rec.Amount = &amount
	}
	return rec, true, nil
}

// parseDay accepts integers and integral floats ("5", "5.0") as written by
// spreadsheet exports.
func parseDay(s string) (int, error) {
	if d, err := strconv.Atoi(s); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("day %q: %w", s, core.ErrInvalidDate)
	}
	return int(f), nil
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// ToStrings flattens a row of arbitrary cell values into trimmed strings.
func ToStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch val := v.(type) {
		case nil:
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(val))
		}
	}
	return out
}
