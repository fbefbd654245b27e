package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunSummary is the compact record kept for each projection run.
// It never carries the transactions themselves.
type RunSummary struct {
	ID           string              `json:"id"`
	Source       string              `json:"source"`
	Year         int                 `json:"year"`
	Month        int                 `json:"month"`
	Transactions int                 `json:"transactions"`
	Credits      int                 `json:"credits"`
	Debits       int                 `json:"debits"`
	Dropped      int                 `json:"dropped"`
	TotalCredits decimal.Decimal     `json:"total_credits"`
	TotalDebits  decimal.Decimal     `json:"total_debits"`
	Closing      decimal.NullDecimal `json:"closing"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Summary describes the projection for the run log.
func (p Projection) Summary(id, source string, at time.Time) RunSummary {
	return RunSummary{
		ID:           id,
		Source:       source,
		Year:         p.Period.Year,
		Month:        p.Period.Month,
		Transactions: len(p.Ledger),
		Credits:      len(p.Credits),
		Debits:       len(p.Debits),
		Dropped:      p.Dropped,
		TotalCredits: Total(p.Credits),
		TotalDebits:  Total(p.Debits),
		Closing:      p.Ledger.Closing(),
		CreatedAt:    at.UTC(),
	}
}
