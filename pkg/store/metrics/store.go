package metrics

import (
	"context"
	"time"

	"github.com/de-tools/site-digest/pkg/models/store"
)

// Named metrics the digest fetches as time-bucketed series.
const (
	MetricVisits               = "visits"
	MetricMobileVisits         = "mobile_visits"
	MetricSignups              = "signups"
	MetricProfileViews         = "profile_views"
	MetricTopics               = "topics"
	MetricPosts                = "posts"
	MetricTimeToFirstResponse  = "time_to_first_response"
	MetricTopicsWithNoResponse = "topics_with_no_response"
	MetricEmails               = "emails"
	MetricFlags                = "flags"
	MetricLikes                = "likes"
	MetricAcceptedSolutions    = "accepted_solutions"
)

// SeriesNames lists every series metric one digest run fetches.
var SeriesNames = []string{
	MetricVisits,
	MetricMobileVisits,
	MetricSignups,
	MetricProfileViews,
	MetricTopics,
	MetricPosts,
	MetricTimeToFirstResponse,
	MetricTopicsWithNoResponse,
	MetricEmails,
	MetricFlags,
	MetricLikes,
	MetricAcceptedSolutions,
}

// OptionalMetrics are series that legitimately may not be collected on a
// given site. FetchSeries reports their absence as a nil series, which the
// assembler treats as "skip the dependent field", never as zero.
var OptionalMetrics = map[string]bool{
	MetricAcceptedSolutions: true,
}

// Store is the queryable source of raw site activity data. Implementations
// own connection pooling and any retry policy; a returned error always means
// the data is unavailable for this run.
type Store interface {
	// FetchSeries returns the time-bucketed series for a named metric over
	// [start, end], with the source's precomputed total for the preceding
	// period of equal length. For optional metrics a (nil, nil) return means
	// the metric is not collected on this site.
	FetchSeries(ctx context.Context, name string, start, end time.Time) (*store.MetricSeries, error)

	// CountUsersCreatedBefore returns the cumulative signup count as of date.
	CountUsersCreatedBefore(ctx context.Context, date time.Time) (int, error)

	// CountDistinctVisitorsInRange returns how many distinct users visited
	// inside [start, end].
	CountDistinctVisitorsInRange(ctx context.Context, start, end time.Time) (int, error)

	// SumPagesReadInRange totals the pages read across all visits inside
	// [start, end].
	SumPagesReadInRange(ctx context.Context, start, end time.Time) (int, error)

	// CountRepeatNewUsers counts users created inside [start, end] whose
	// visit count inside that same window is at least minVisits. This is a
	// join between the two conditions, not a minimum of independent counts.
	CountRepeatNewUsers(ctx context.Context, start, end time.Time, minVisits int) (int, error)
}
