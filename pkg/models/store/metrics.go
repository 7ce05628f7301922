package store

import "time"

// SeriesPoint is a single time bucket of a metric series.
type SeriesPoint struct {
	X time.Time
	Y float64
}

// MetricSeries is the bucketed data for one named metric over a date range,
// together with the source's precomputed total for the period immediately
// preceding that range.
type MetricSeries struct {
	Name            string
	Points          []SeriesPoint
	PrevPeriodTotal float64
}

// VisitRow is one user-visit record as stored by the site.
type VisitRow struct {
	UserID    int64
	PostsRead int
	VisitedAt time.Time
}
