package render

import (
	"bytes"
	"fmt"
	"html/template"

	"cashflow/internal/core"
	appweb "cashflow/web"
)

// templates holds the fragments and the standalone report page.
var templates = template.Must(template.ParseFS(appweb.TemplatesFS,
	"templates/ledger_table.html",
	"templates/summary.html",
	"templates/report.html",
))

// Row is one ledger entry formatted for display.
type Row struct {
	Date    string
	Item    string
	Amount  string
	Balance string
	Kind    core.Kind
}

func Rows(l core.Ledger) []Row {
	out := make([]Row, 0, len(l))
	for _, e := range l {
		out = append(out, Row{
			Date:    e.Date.String(),
			Item:    e.Item,
			Amount:  core.FormatDollars(e.Amount),
			Balance: core.FormatDollars(e.RunningBalance),
			Kind:    e.Kind,
		})
	}
	return out
}

// Table renders the ledger as an HTML table in ledger order. An empty ledger
// renders a single placeholder row.
func Table(l core.Ledger) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "ledger_table.html", Rows(l)); err != nil {
		return "", fmt.Errorf("render ledger table: %w", err)
	}
	return template.HTML(buf.String()), nil
}
