package core

import "github.com/shopspring/decimal"

// Project expands date-sorted buckets into one point per day of the period.
// Days without activity carry the previous day's balance forward; days before
// the first bucket have no balance.
func Project(buckets []DailyBucket, p Period) DailySeries {
	series := make(DailySeries, 0, p.DaysInMonth)
	var last decimal.NullDecimal
	next := 0
	for _, day := range p.Days() {
		// Buckets dated before the period cannot be indexed; fold them into the carry.
		for next < len(buckets) && buckets[next].Date.Before(day.Time) {
			last = decimal.NewNullDecimal(buckets[next].RunningBalance)
			next++
		}
		if next < len(buckets) && buckets[next].Date.Equal(day.Time) {
			last = decimal.NewNullDecimal(buckets[next].RunningBalance)
			next++
		}
		series = append(series, DailyPoint{Date: day, Balance: last})
	}
	return series
}

// Defined returns the number of days that have a balance.
func (s DailySeries) Defined() int {
	n := 0
	for _, pt := range s {
		if pt.Balance.Valid {
			n++
		}
	}
	return n
}
