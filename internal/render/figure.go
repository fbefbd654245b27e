// Package render turns a projection into the chart, table and standalone
// page shown to users.
package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

const (
	markerSize   = 16
	chartWidth   = 900
	hoverDollars = "%{x}: %{y:$.2f}"
	plotlyTime   = "2006-01-02 15:04:05"
)

type (
	// Figure is a Plotly figure: traces plus layout.
	Figure struct {
		Data   []Trace `json:"data"`
		Layout Layout  `json:"layout"`
	}

	Trace struct {
		Type          string    `json:"type"`
		Name          string    `json:"name"`
		Mode          string    `json:"mode"`
		X             []string  `json:"x"`
		Y             []Number  `json:"y"`
		Marker        *Marker   `json:"marker,omitempty"`
		ErrorY        *ErrorBar `json:"error_y,omitempty"`
		HoverTemplate string    `json:"hovertemplate,omitempty"`
		ConnectGaps   bool      `json:"connectgaps"`
	}

	Marker struct {
		Size   int    `json:"size"`
		Symbol string `json:"symbol"`
		Color  string `json:"color"`
	}

	// ErrorBar draws the stem from each marker back to zero.
	ErrorBar struct {
		Type       string   `json:"type"`
		Symmetric  bool     `json:"symmetric"`
		Array      []Number `json:"array"`
		ArrayMinus []Number `json:"arrayminus"`
		Width      int      `json:"width"`
	}

	Layout struct {
		Title  Text    `json:"title"`
		XAxis  Axis    `json:"xaxis"`
		YAxis  Axis    `json:"yaxis"`
		Width  int     `json:"width"`
		Shapes []Shape `json:"shapes"`
	}

	Text struct {
		Text string `json:"text"`
	}

	Axis struct {
		Title       Text   `json:"title"`
		Type        string `json:"type,omitempty"`
		TickPrefix  string `json:"tickprefix,omitempty"`
		HoverFormat string `json:"hoverformat,omitempty"`
	}

	// Shape is a reference line. Coordinates are strings on date axes and
	// numbers on paper or value axes.
	Shape struct {
		Type string    `json:"type"`
		XRef string    `json:"xref"`
		YRef string    `json:"yref"`
		X0   any       `json:"x0"`
		X1   any       `json:"x1"`
		Y0   any       `json:"y0"`
		Y1   any       `json:"y1"`
		Line ShapeLine `json:"line"`
	}

	ShapeLine struct {
		Color string `json:"color"`
		Width int    `json:"width"`
		Dash  string `json:"dash,omitempty"`
	}

	// Number is a JSON number, or null when the value is undefined.
	Number struct {
		decimal.NullDecimal
	}
)

func num(d decimal.Decimal) Number {
	return Number{decimal.NullDecimal{Decimal: d, Valid: true}}
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Decimal.String()), nil
}

// Title returns the chart heading for the period.
func Title(p core.Period) string {
	return fmt.Sprintf("Cash Flow & Projected Daily Balance for %s", p)
}

// NewFigure builds the balance chart: the daily series as a line, credits and
// debits as markers with stems to zero, a horizontal line at zero and a
// vertical line at now.
func NewFigure(p core.Projection, now time.Time) Figure {
	balance := Trace{
		Type: "scatter",
		Name: "Daily Balance",
		Mode: "lines+markers",
		X:    make([]string, 0, len(p.Daily)),
		Y:    make([]Number, 0, len(p.Daily)),
	}
	for _, pt := range p.Daily {
		balance.X = append(balance.X, pt.Date.String())
		balance.Y = append(balance.Y, Number{pt.Balance})
	}

	return Figure{
		Data: []Trace{
			balance,
			markerTrace("Credits", "triangle-up", "green", p.Credits),
			markerTrace("Debits", "triangle-down", "red", p.Debits),
		},
		Layout: Layout{
			Title: Text{Title(p.Period)},
			XAxis: Axis{Title: Text{"Date"}, Type: "date"},
			YAxis: Axis{Title: Text{"Projected Balance"}, TickPrefix: "$", HoverFormat: "d"},
			Width: chartWidth,
			Shapes: []Shape{
				{
					Type: "line", XRef: "x", YRef: "paper",
					X0: now.Format(plotlyTime), X1: now.Format(plotlyTime), Y0: 0, Y1: 1,
					Line: ShapeLine{Color: "#444", Width: 1},
				},
				{
					Type: "line", XRef: "paper", YRef: "y",
					X0: 0, X1: 1, Y0: 0, Y1: 0,
					Line: ShapeLine{Color: "#444", Width: 1},
				},
			},
		},
	}
}

func markerTrace(name, symbol, color string, txs []core.Transaction) Trace {
	t := Trace{
		Type:          "scatter",
		Name:          name,
		Mode:          "markers",
		X:             make([]string, 0, len(txs)),
		Y:             make([]Number, 0, len(txs)),
		Marker:        &Marker{Size: markerSize, Symbol: symbol, Color: color},
		HoverTemplate: hoverDollars,
		ErrorY: &ErrorBar{
			Type:       "data",
			Array:      make([]Number, 0, len(txs)),
			ArrayMinus: make([]Number, 0, len(txs)),
		},
	}
	for _, tx := range txs {
		t.X = append(t.X, tx.Date.String())
		t.Y = append(t.Y, num(tx.Amount))
		t.ErrorY.Array = append(t.ErrorY.Array, num(decimal.Zero))
		t.ErrorY.ArrayMinus = append(t.ErrorY.ArrayMinus, num(tx.Amount))
	}
	return t
}

// JSON serializes the figure for Plotly.newPlot.
func (f Figure) JSON() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal figure: %w", err)
	}
	return b, nil
}
