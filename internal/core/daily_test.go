package core

import "testing"

func TestProjectForwardFill(t *testing.T) {
	buckets := []DailyBucket{
		{Date: june.Date(3), NetChange: dec("100"), RunningBalance: dec("100")},
		{Date: june.Date(10), NetChange: dec("-40"), RunningBalance: dec("60")},
		{Date: june.Date(30), NetChange: dec("5"), RunningBalance: dec("65")},
	}
	s := Project(buckets, june)
	if len(s) != june.DaysInMonth {
		t.Fatalf("series length %d, want %d", len(s), june.DaysInMonth)
	}
	for i, pt := range s {
		day := i + 1
		if pt.Date.Day() != day {
			t.Fatalf("point %d has day %d", i, pt.Date.Day())
		}
		switch {
		case day < 3:
			if pt.Balance.Valid {
				t.Fatalf("day %d before first transaction has balance %s", day, pt.Balance.Decimal)
			}
		case day < 10:
			assertBalance(t, day, pt, "100")
		case day < 30:
			assertBalance(t, day, pt, "60")
		default:
			assertBalance(t, day, pt, "65")
		}
	}
	if s.Defined() != 28 {
		t.Fatalf("Defined() = %d, want 28", s.Defined())
	}
}

func TestProjectBucketOnFirstAndLastDay(t *testing.T) {
	feb := Period{Year: 2024, Month: 2, DaysInMonth: 29}
	buckets := []DailyBucket{
		{Date: feb.Date(1), RunningBalance: dec("1")},
		{Date: feb.Date(29), RunningBalance: dec("2")},
	}
	s := Project(buckets, feb)
	if len(s) != 29 {
		t.Fatalf("len = %d", len(s))
	}
	assertBalance(t, 1, s[0], "1")
	assertBalance(t, 28, s[27], "1")
	assertBalance(t, 29, s[28], "2")
}

func TestProjectEmpty(t *testing.T) {
	s := Project(nil, june)
	if len(s) != 30 || s.Defined() != 0 {
		t.Fatalf("expected 30 undefined points, got len=%d defined=%d", len(s), s.Defined())
	}
}

func assertBalance(t *testing.T, day int, pt DailyPoint, want string) {
	t.Helper()
	if !pt.Balance.Valid || !pt.Balance.Decimal.Equal(dec(want)) {
		t.Fatalf("day %d balance = %+v, want %s", day, pt.Balance, want)
	}
}
