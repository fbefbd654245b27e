package core

import (
	"testing"
)

func mustNormalize(t *testing.T, credits, debits []RawRecord) []Transaction {
	t.Helper()
	n, err := Normalize(credits, debits, june)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return n.Transactions()
}

func TestBuildLedgerRunningBalance(t *testing.T) {
	txs := mustNormalize(t,
		[]RawRecord{rec("Paycheck", 15, "1000"), rec("Bonus", 1, "0.1"), rec("Gift", 20, "0.2")},
		[]RawRecord{rec("Rent", 5, "800"), rec("Phone", 20, "0.3")},
	)
	l := BuildLedger(txs)
	if len(l) != len(txs) {
		t.Fatalf("ledger length %d, want %d", len(l), len(txs))
	}

	for i := 1; i < len(l); i++ {
		if l[i].Date.Before(l[i-1].Date.Time) {
			t.Fatalf("ledger not sorted at %d", i)
		}
		if !l[i].RunningBalance.Sub(l[i-1].RunningBalance).Equal(l[i].Amount) {
			t.Fatalf("entry %d: delta %s != amount %s", i, l[i].RunningBalance.Sub(l[i-1].RunningBalance), l[i].Amount)
		}
	}
	if !l[0].RunningBalance.Equal(l[0].Amount) {
		t.Fatalf("first running balance %s != amount %s", l[0].RunningBalance, l[0].Amount)
	}
	closing := l.Closing()
	if !closing.Valid || !closing.Decimal.Equal(Total(txs)) {
		t.Fatalf("closing %s != total %s", closing.Decimal, Total(txs))
	}
	// Exact decimal arithmetic: 0.1 + 0.2 - 0.3 leaves no residue.
	if !closing.Decimal.Equal(dec("200")) {
		t.Fatalf("closing = %s, want 200", closing.Decimal)
	}
}

func TestBuildLedgerStableSameDateOrder(t *testing.T) {
	txs := mustNormalize(t,
		[]RawRecord{rec("C1", 10, "5"), rec("C2", 3, "1"), rec("C3", 10, "7")},
		[]RawRecord{rec("D1", 10, "2"), rec("D2", 3, "4"), rec("D3", 10, "1")},
	)
	l := BuildLedger(txs)
	var got []string
	for _, e := range l {
		got = append(got, e.Item)
	}
	want := []string{"C2", "D2", "C1", "C3", "D1", "D3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildLedgerDoesNotMutateInput(t *testing.T) {
	txs := mustNormalize(t, []RawRecord{rec("Late", 9, "1"), rec("Early", 1, "1")}, nil)
	_ = BuildLedger(txs)
	if txs[0].Item != "Late" {
		t.Fatalf("input slice reordered: %v", txs)
	}
}

func TestBuildLedgerEmpty(t *testing.T) {
	l := BuildLedger(nil)
	if l == nil || len(l) != 0 {
		t.Fatalf("expected empty non-nil ledger, got %#v", l)
	}
	if l.Closing().Valid {
		t.Fatalf("empty ledger has closing balance")
	}
}

func TestAggregate(t *testing.T) {
	txs := mustNormalize(t,
		[]RawRecord{rec("Paycheck", 1, "1000"), rec("Refund", 5, "50")},
		[]RawRecord{rec("Rent", 5, "800"), rec("Food", 1, "30"), rec("Gas", 12, "40")},
	)
	l := BuildLedger(txs)
	b := Aggregate(l)

	want := []struct {
		day     int
		net     string
		balance string
	}{
		{1, "970", "970"},
		{5, "-750", "220"},
		{12, "-40", "180"},
	}
	if len(b) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(b), len(want), b)
	}
	for i, w := range want {
		if b[i].Date.Day() != w.day || !b[i].NetChange.Equal(dec(w.net)) || !b[i].RunningBalance.Equal(dec(w.balance)) {
			t.Fatalf("bucket %d = %+v, want %+v", i, b[i], w)
		}
	}

	// Re-summing net changes matches the ledger's closing balance.
	sum := dec("0")
	for _, bk := range b {
		sum = sum.Add(bk.NetChange)
	}
	if !sum.Equal(l.Closing().Decimal) {
		t.Fatalf("sum of net changes %s != closing %s", sum, l.Closing().Decimal)
	}
	if !b[len(b)-1].RunningBalance.Equal(l.Closing().Decimal) {
		t.Fatalf("last bucket balance differs from ledger closing")
	}
}

func TestAggregateEmpty(t *testing.T) {
	if b := Aggregate(Ledger{}); len(b) != 0 {
		t.Fatalf("expected no buckets, got %v", b)
	}
}
