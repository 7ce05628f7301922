// Package stats holds the pure numeric derivations shared by the digest
// assembler and the metric stores. All functions are deterministic and total,
// guarded against undefined numeric cases.
package stats

import (
	"math"

	"github.com/de-tools/site-digest/pkg/models/store"
)

// PreviousPeriodDays is the fixed day count the previous period is normalized
// against when computing daily averages, regardless of that month's true
// length. Changing this shifts every historical comparison.
const PreviousPeriodDays = 30

// Total sums the y values of a series. An empty series totals zero.
func Total(points []store.SeriesPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	return sum
}

// Average returns the mean of the series y values rounded to two decimals.
// An empty series averages zero; callers that consider an empty series
// abnormal should log before calling.
func Average(points []store.SeriesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return round2(Total(points) / float64(len(points)))
}

// DailyAverage normalizes an active-user count over the number of days in the
// period, rounded to two decimals.
func DailyAverage(active float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return round2(active / float64(days))
}

// Health is the DAU/MAU engagement ratio as a percentage, rounded to two
// decimals. A zero or negative MAU yields zero.
func Health(dau, mau float64) float64 {
	if mau <= 0 {
		return 0
	}
	return round2(dau * 100 / mau)
}

// UniqueCount returns the number of distinct values in vals.
func UniqueCount[T comparable](vals []T) int {
	seen := make(map[T]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
