package core

// Projection bundles every artifact derived from one set of input records.
type Projection struct {
	Period  Period
	Credits []Transaction
	Debits  []Transaction
	Ledger  Ledger
	Buckets []DailyBucket
	Daily   DailySeries
	Dropped int
}

// Compute runs normalization, ledger construction, daily aggregation and the
// month projection in order. Empty input yields an empty ledger and a series
// with no defined balances.
func Compute(credits, debits []RawRecord, p Period) (Projection, error) {
	n, err := Normalize(credits, debits, p)
	if err != nil {
		return Projection{}, err
	}
	ledger := BuildLedger(n.Transactions())
	buckets := Aggregate(ledger)
	return Projection{
		Period:  p,
		Credits: n.Credits,
		Debits:  n.Debits,
		Ledger:  ledger,
		Buckets: buckets,
		Daily:   Project(buckets, p),
		Dropped: n.Dropped,
	}, nil
}

// Empty reports whether the projection has no transactions.
func (p Projection) Empty() bool {
	return len(p.Ledger) == 0
}
