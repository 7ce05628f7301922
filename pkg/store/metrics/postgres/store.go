package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/site-digest/pkg/models/store"
	"github.com/de-tools/site-digest/pkg/services/stats"
	"github.com/de-tools/site-digest/pkg/store/metrics"
)

// metricsStore reads site activity straight from the relational schema: the
// daily_metrics rollup table for bucketed series and the users/user_visits
// tables for the row-level derivations.
type metricsStore struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed metrics store.
func NewStore(db *sql.DB) metrics.Store {
	return &metricsStore{db: db}
}

func (s *metricsStore) FetchSeries(ctx context.Context, name string, start, end time.Time) (*store.MetricSeries, error) {
	logger := zerolog.Ctx(ctx)

	if metrics.OptionalMetrics[name] {
		collected, err := s.metricCollected(ctx, name)
		if err != nil {
			return nil, err
		}
		if !collected {
			logger.Debug().Str("metric", name).Msg("optional metric not collected, skipping")
			return nil, nil
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_date, value
		FROM daily_metrics
		WHERE metric = $1
			AND metric_date >= $2
			AND metric_date <= $3
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

	prevStart := start.AddDate(0, -1, 0)
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0)
		FROM daily_metrics
		WHERE metric = $1
			AND metric_date >= $2
			AND metric_date < $3
	`, name, prevStart, start).Scan(&series.PrevPeriodTotal)
	if err != nil {
		return nil, fmt.Errorf("%s previous period total query failed: %w", name, err)
	}

	return series, nil
}

func (s *metricsStore) CountUsersCreatedBefore(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at <= $1
	`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cumulative users query failed: %w", err)
	}
	return count, nil
}

func (s *metricsStore) CountDistinctVisitorsInRange(ctx context.Context, start, end time.Time) (int, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id
		FROM user_visits
		WHERE visited_at >= $1 AND visited_at <= $2
	`, start, end)
	if err != nil {
		return 0, fmt.Errorf("visitors query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close visitors query rows")
		}
	}(rows)

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("visitors scan failed: %w", err)
	}

	return stats.UniqueCount(userIDs), nil
}

func (s *metricsStore) SumPagesReadInRange(ctx context.Context, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(posts_read), 0)
		FROM user_visits
		WHERE visited_at >= $1 AND visited_at <= $2
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
			WHERE u.created_at >= $1
				AND u.created_at <= $2
		),
		period_visits AS (
			SELECT uv.user_id, COUNT(1) AS visit_count
			FROM user_visits uv
			WHERE uv.visited_at >= $1
				AND uv.visited_at <= $2
			GROUP BY uv.user_id
		)
		SELECT COUNT(*)
		FROM period_new_users pnu
		JOIN period_visits pv ON pv.user_id = pnu.id
		WHERE pv.visit_count >= $3
	`, start, end, minVisits).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repeat new users query failed: %w", err)
	}
	return count, nil
}

func (s *metricsStore) metricCollected(ctx context.Context, name string) (bool, error) {
	var collected bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM daily_metrics WHERE metric = $1)
	`, name).Scan(&collected)
	if err != nil {
		return false, fmt.Errorf("%s metric presence query failed: %w", name, err)
	}
	return collected, nil
}
