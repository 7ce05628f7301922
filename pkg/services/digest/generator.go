package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/site-digest/pkg/models/domain"
	"github.com/de-tools/site-digest/pkg/models/store"
	"github.com/de-tools/site-digest/pkg/services/period"
	"github.com/de-tools/site-digest/pkg/services/stats"
	"github.com/de-tools/site-digest/pkg/store/metrics"
)

const (
	// repeatNewUserMinVisits is the visit threshold for counting a new user
	// as "repeat" within their signup month.
	repeatNewUserMinVisits = 2

	// seriesFetchLimit bounds how many series fetches run at once. The
	// fetches are independent, so ordering never affects the result.
	seriesFetchLimit = 4
)

// Generator assembles the monthly activity report from a metric store.
type Generator struct {
	metrics  metrics.Store
	siteName string
}

// NewGenerator creates a report generator. siteName appears in the report
// title and delivery subject.
func NewGenerator(store metrics.Store, siteName string) *Generator {
	return &Generator{metrics: store, siteName: siteName}
}

// Generate builds the complete digest for the full calendar month preceding
// now's month, compared against the month before that. Any fetch failure
// aborts the whole run; no partial report is ever produced.
func (g *Generator) Generate(ctx context.Context, now time.Time) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx)
	current, previous := period.CurrentAndPrevious(now)

	series, err := g.fetchSeries(ctx, current)
	if err != nil {
		return nil, err
	}

	activeCurrent, err := g.metrics.CountDistinctVisitorsInRange(ctx, current.Start, current.End)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	activePrevious, err := g.metrics.CountDistinctVisitorsInRange(ctx, previous.Start, previous.End)
	if err != nil {
		return nil, fmt.Errorf("count previous active users: %w", err)
	}

	postsReadCurrent, err := g.metrics.SumPagesReadInRange(ctx, current.Start, current.End)
	if err != nil {
		return nil, fmt.Errorf("sum posts read: %w", err)
	}
	postsReadPrevious, err := g.metrics.SumPagesReadInRange(ctx, previous.Start, previous.End)
	if err != nil {
		return nil, fmt.Errorf("sum previous posts read: %w", err)
	}

	repeatCurrent, err := g.metrics.CountRepeatNewUsers(ctx, current.Start, current.End, repeatNewUserMinVisits)
	if err != nil {
		return nil, fmt.Errorf("count repeat new users: %w", err)
	}
	repeatPrevious, err := g.metrics.CountRepeatNewUsers(ctx, previous.Start, previous.End, repeatNewUserMinVisits)
	if err != nil {
		return nil, fmt.Errorf("count previous repeat new users: %w", err)
	}

	allUsersCurrent, err := g.metrics.CountUsersCreatedBefore(ctx, current.End)
	if err != nil {
		return nil, fmt.Errorf("count all users: %w", err)
	}
	allUsersPrevious, err := g.metrics.CountUsersCreatedBefore(ctx, previous.End)
	if err != nil {
		return nil, fmt.Errorf("count previous all users: %w", err)
	}

	// The current period is normalized over its true calendar length, the
	// previous one over the fixed 30-day baseline.
	dauCurrent := stats.DailyAverage(float64(activeCurrent), current.Days())
	dauPrevious := stats.DailyAverage(float64(activePrevious), stats.PreviousPeriodDays)

	healthSection := domain.ReportSection{
		TitleKey: "site_report.health",
		Fields: []domain.ComparisonField{
			newField("active_users", float64(activeCurrent), float64(activePrevious), false),
			newField("daily_active_users", dauCurrent, dauPrevious, true),
			newField("health",
				stats.Health(dauCurrent, float64(activeCurrent)),
				stats.Health(dauPrevious, float64(activePrevious)),
				true),
		},
	}

	visits := series[metrics.MetricVisits]
	mobileVisits := series[metrics.MetricMobileVisits]
	signups := series[metrics.MetricSignups]

	usersSection := domain.ReportSection{
		TitleKey: "site_report.users",
		Fields: []domain.ComparisonField{
			newField("all_users", float64(allUsersCurrent), float64(allUsersPrevious), false),
			newField("user_visits", stats.Total(visits.Points), visits.PrevPeriodTotal, false),
			newField("mobile_visits", stats.Total(mobileVisits.Points), mobileVisits.PrevPeriodTotal, false),
			newField("new_users", stats.Total(signups.Points), signups.PrevPeriodTotal, false),
			newField("repeat_new_users", float64(repeatCurrent), float64(repeatPrevious), true),
		},
	}

	responseTime := series[metrics.MetricTimeToFirstResponse]
	if len(responseTime.Points) == 0 {
		logger.Warn().
			Str("metric", metrics.MetricTimeToFirstResponse).
			Msg("empty series, response time reported as zero")
	}

	likes := series[metrics.MetricLikes]
	flags := series[metrics.MetricFlags]

	actionsSection := domain.ReportSection{
		TitleKey: "site_report.user_actions",
		Fields: []domain.ComparisonField{
			newField("posts_read", float64(postsReadCurrent), float64(postsReadPrevious), true),
			newField("posts_liked", stats.Total(likes.Points), likes.PrevPeriodTotal, false),
			newField("posts_flagged", stats.Total(flags.Points), flags.PrevPeriodTotal, false),
			newField("response_time", stats.Average(responseTime.Points), responseTime.PrevPeriodTotal, true),
		},
	}

	// accepted_solutions is only reported by sites that collect it; absence
	// means the field is omitted, not rendered as zero.
	if solutions := series[metrics.MetricAcceptedSolutions]; solutions != nil {
		actionsSection.Fields = append(actionsSection.Fields,
			newField("solutions", stats.Total(solutions.Points), solutions.PrevPeriodTotal, false))
	}

	topics := series[metrics.MetricTopics]
	posts := series[metrics.MetricPosts]
	emails := series[metrics.MetricEmails]

	contentSection := domain.ReportSection{
		TitleKey: "site_report.content",
		Fields: []domain.ComparisonField{
			newField("topics_created", stats.Total(topics.Points), topics.PrevPeriodTotal, false),
			newField("posts_created", stats.Total(posts.Points), posts.PrevPeriodTotal, false),
			newField("emails_sent", stats.Total(emails.Points), emails.PrevPeriodTotal, false),
		},
	}

	label := current.Label()
	return &domain.Report{
		PeriodLabel: label,
		Title:       fmt.Sprintf("%s activity report for %s", g.siteName, label),
		Period:      current,
		HeaderMetadata: []domain.MetaEntry{
			{Key: "site_report.active_users", Value: float64(activeCurrent)},
			{Key: "site_report.posts", Value: stats.Total(posts.Points)},
			{Key: "site_report.posts_read", Value: float64(postsReadCurrent)},
		},
		Sections: []domain.ReportSection{
			healthSection,
			usersSection,
			actionsSection,
			contentSection,
		},
	}, nil
}

// fetchSeries loads every named series for the current window. Fetches run
// concurrently but the result never depends on their order.
func (g *Generator) fetchSeries(ctx context.Context, current domain.ReportingPeriod) (map[string]*store.MetricSeries, error) {
	series := make(map[string]*store.MetricSeries, len(metrics.SeriesNames))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(seriesFetchLimit)

	for _, name := range metrics.SeriesNames {
		name := name
		eg.Go(func() error {
			s, err := g.metrics.FetchSeries(egCtx, name, current.Start, current.End)
			if err != nil {
				return fmt.Errorf("fetch %s series: %w", name, err)
			}
			mu.Lock()
			series[name] = s
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, name := range metrics.SeriesNames {
		if series[name] == nil && !metrics.OptionalMetrics[name] {
			return nil, fmt.Errorf("metric %s unavailable", name)
		}
	}
	return series, nil
}
