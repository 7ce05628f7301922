package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/site-digest/pkg/models/domain"
)

func f64(v float64) *float64 { return &v }

func TestRenderBody(t *testing.T) {
	report := &domain.Report{
		PeriodLabel: "February",
		Title:       "Example Forum activity report for February",
		Period: domain.ReportingPeriod{
			Start: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC),
		},
		HeaderMetadata: []domain.MetaEntry{
			{Key: "site_report.active_users", Value: 120},
			{Key: "site_report.posts", Value: 340},
		},
		Sections: []domain.ReportSection{
			{
				TitleKey: "site_report.users",
				Fields: []domain.ComparisonField{
					{Key: "user_visits", Value: 500, Compare: f64(400)},
					{Key: "no_baseline", Value: 3, Compare: nil},
					{Key: "internal_only", Value: 9, Compare: f64(9), Hidden: true},
				},
			},
		},
	}

	body, err := RenderBody(report)
	require.NoError(t, err)

	assert.Contains(t, body, "Example Forum activity report for February")
	assert.Contains(t, body, "Period: 2026-02-01 to 2026-02-28")
	assert.Contains(t, body, "site_report.active_users: 120")
	assert.Contains(t, body, "=== site_report.users ===")
	assert.Contains(t, body, "- user_visits: 500.00 (previous: 400.00)")
	assert.Contains(t, body, "- no_baseline: 3.00 (previous: n/a)")
	assert.NotContains(t, body, "internal_only")
}
