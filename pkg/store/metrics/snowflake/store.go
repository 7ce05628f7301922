package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/site-digest/pkg/models/store"
	"github.com/de-tools/site-digest/pkg/store/metrics"
)

// metricsStore serves the digest from a Snowflake warehouse where the site's
// activity data is replicated: SITE_DAILY_METRICS for bucketed series, USERS
// and USER_VISITS for the row-level derivations. The distinct and sum
// derivations run warehouse-side since the replicated tables can be orders of
// magnitude larger than the primary.
type metricsStore struct {
	db *sql.DB
}

// NewStore creates a Snowflake-backed metrics store.
func NewStore(db *sql.DB) metrics.Store {
	return &metricsStore{db: db}
}

func (s *metricsStore) FetchSeries(ctx context.Context, name string, start, end time.Time) (*store.MetricSeries, error) {
	logger := zerolog.Ctx(ctx)

	if metrics.OptionalMetrics[name] {
		var collected bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM site_daily_metrics WHERE metric_name = ?)
		`, name).Scan(&collected)
		if err != nil {
			return nil, fmt.Errorf("%s metric presence query failed: %w", name, err)
		}
		if !collected {
			logger.Debug().Str("metric", name).Msg("optional metric not replicated, skipping")
			return nil, nil
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_date, value
		FROM site_daily_metrics
		WHERE metric_name = ?
			AND metric_date >= ?
			AND metric_date <= ?
		ORDER BY metric_date
	`, name, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s series query failed: %w", name, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close series query rows")
		}
	}(rows)

	series := &store.MetricSeries{Name: name}
	for rows.Next() {
		var p store.SeriesPoint
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, err
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s series scan failed: %w", name, err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0)
		FROM site_daily_metrics
		WHERE metric_name = ?
			AND metric_date >= ?
			AND metric_date < ?
	`, name, start.AddDate(0, -1, 0), start).Scan(&series.PrevPeriodTotal)
	if err != nil {
		return nil, fmt.Errorf("%s previous period total query failed: %w", name, err)
	}

	return series, nil
}

func (s *metricsStore) CountUsersCreatedBefore(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at <= ?
	`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cumulative users query failed: %w", err)
	}
	return count, nil
}

func (s *metricsStore) CountDistinctVisitorsInRange(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT user_id)
		FROM user_visits
		WHERE visited_at >= ? AND visited_at <= ?
	`, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("visitors query failed: %w", err)
	}
	return count, nil
}

func (s *metricsStore) SumPagesReadInRange(ctx context.Context, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(posts_read), 0)
		FROM user_visits
		WHERE visited_at >= ? AND visited_at <= ?
	`, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("pages read query failed: %w", err)
	}
	return total, nil
}

func (s *metricsStore) CountRepeatNewUsers(ctx context.Context, start, end time.Time, minVisits int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		WITH period_new_users AS (
			SELECT u.id
			FROM users u
			WHERE u.created_at >= ?
				AND u.created_at <= ?
		),
		period_visits AS (
			SELECT uv.user_id, COUNT(1) AS visit_count
			FROM user_visits uv
			WHERE uv.visited_at >= ?
				AND uv.visited_at <= ?
			GROUP BY uv.user_id
		)
		SELECT COUNT(*)
		FROM period_new_users pnu
		JOIN period_visits pv ON pv.user_id = pnu.id
		WHERE pv.visit_count >= ?
	`, start, end, start, end, minVisits).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repeat new users query failed: %w", err)
	}
	return count, nil
}
