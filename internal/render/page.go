package render

import (
	"bytes"
	"fmt"
	"html/template"

	"cashflow/internal/core"
)

// Report is the view model shared by the standalone page and the web UI.
type Report struct {
	Title        string
	Period       string
	Transactions int
	Dropped      int
	TotalCredits string
	TotalDebits  string
	Closing      string
	Figure       template.JS
	Table        template.HTML
}

func NewReport(p core.Projection, fig Figure, table template.HTML) (Report, error) {
	figJSON, err := fig.JSON()
	if err != nil {
		return Report{}, err
	}
	closing := "n/a"
	if c := p.Ledger.Closing(); c.Valid {
		closing = core.FormatDollars(c.Decimal)
	}
	return Report{
		Title:        Title(p.Period),
		Period:       p.Period.String(),
		Transactions: len(p.Ledger),
		Dropped:      p.Dropped,
		TotalCredits: core.FormatDollars(core.Total(p.Credits)),
		TotalDebits:  core.FormatDollars(core.Total(p.Debits)),
		Closing:      closing,
		Figure:       template.JS(figJSON),
		Table:        table,
	}, nil
}

// Page renders a self-contained HTML document embedding the chart and the
// ledger table. Plotly is loaded from its CDN.
func Page(p core.Projection, fig Figure, table template.HTML) ([]byte, error) {
	r, err := NewReport(p, fig, table)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "report.html", r); err != nil {
		return nil, fmt.Errorf("render report page: %w", err)
	}
	return buf.Bytes(), nil
}
