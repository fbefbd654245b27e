package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// BuildLedger sorts transactions by date, keeping input order for same-date
// entries, and attaches the inclusive running balance to each one.
func BuildLedger(txs []Transaction) Ledger {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})

	ledger := make(Ledger, 0, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		balance = balance.Add(t.Amount)
		ledger = append(ledger, LedgerEntry{Transaction: t, RunningBalance: balance})
	}
	return ledger
}

// Aggregate collapses the ledger into one bucket per date with activity.
// RunningBalance is taken from the last entry of each date rather than
// re-accumulated from net changes.
func Aggregate(l Ledger) []DailyBucket {
	buckets := make([]DailyBucket, 0)
	for _, e := range l {
		n := len(buckets)
		if n > 0 && buckets[n-1].Date.Equal(e.Date.Time) {
			buckets[n-1].NetChange = buckets[n-1].NetChange.Add(e.Amount)
			buckets[n-1].RunningBalance = e.RunningBalance
			continue
		}
		buckets = append(buckets, DailyBucket{
			Date:           e.Date,
			NetChange:      e.Amount,
			RunningBalance: e.RunningBalance,
		})
	}
	return buckets
}
