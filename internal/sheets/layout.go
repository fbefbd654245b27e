package sheets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Columns names the spreadsheet columns (A, B, ..., AA) of one record group.
type Columns struct {
	Item   string `yaml:"item"`
	Day    string `yaml:"day"`
	Amount string `yaml:"amount"`
}

// Layout describes where records live in a workbook. HeaderRow is 1-based;
// data starts on the following row.
type Layout struct {
	HeaderRow int     `yaml:"header_row"`
	Credits   Columns `yaml:"credits"`
	Debits    Columns `yaml:"debits"`
}

// DefaultLayout is a title row, a header row, credits in A:C and debits in D:F.
func DefaultLayout() Layout {
	return Layout{
		HeaderRow: 2,
		Credits:   Columns{Item: "A", Day: "B", Amount: "C"},
		Debits:    Columns{Item: "D", Day: "E", Amount: "F"},
	}
}

// LoadLayout reads a YAML layout file. Fields left out keep their defaults.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout file: %w", err)
	}
	layout := DefaultLayout()
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout YAML: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate checks the header row and every column reference.
func (l Layout) Validate() error {
	if l.HeaderRow < 0 {
		return fmt.Errorf("invalid header row %d", l.HeaderRow)
	}
	for _, c := range []string{l.Credits.Item, l.Credits.Day, l.Credits.Amount, l.Debits.Item, l.Debits.Day, l.Debits.Amount} {
		if _, err := ColumnIndex(c); err != nil {
			return err
		}
	}
	return nil
}

// LastColumn returns the right-most column letter the layout touches.
func (l Layout) LastColumn() string {
	last, lastIdx := "A", 0
	for _, c := range []string{l.Credits.Item, l.Credits.Day, l.Credits.Amount, l.Debits.Item, l.Debits.Day, l.Debits.Amount} {
		if idx, err := ColumnIndex(c); err == nil && idx > lastIdx {
			last, lastIdx = strings.ToUpper(strings.TrimSpace(c)), idx
		}
	}
	return last
}

// ColumnIndex converts a column letter to a 0-based index: A=0, Z=25, AA=26.
func ColumnIndex(col string) (int, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "" {
		return 0, fmt.Errorf("empty column reference")
	}
	idx := 0
	for _, r := range col {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column reference %q", col)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1, nil
}
