package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentAndPrevious(t *testing.T) {
	tests := []struct {
		name          string
		now           time.Time
		currentStart  time.Time
		currentEnd    time.Time
		previousStart time.Time
		previousEnd   time.Time
	}{
		{
			name:          "mid-month",
			now:           time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC),
			currentStart:  date(2026, time.February, 1),
			currentEnd:    time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC),
			previousStart: date(2026, time.January, 1),
			previousEnd:   time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:          "january wraps to previous year",
			now:           date(2026, time.January, 10),
			currentStart:  date(2025, time.December, 1),
			currentEnd:    time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
			previousStart: date(2025, time.November, 1),
			previousEnd:   time.Date(2025, time.November, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name:          "february wraps both periods across the year",
			now:           date(2026, time.February, 1),
			currentStart:  date(2026, time.January, 1),
			currentEnd:    time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC),
			previousStart: date(2025, time.December, 1),
			previousEnd:   time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:          "leap february",
			now:           date(2024, time.March, 31),
			currentStart:  date(2024, time.February, 1),
			currentEnd:    time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC),
			previousStart: date(2024, time.January, 1),
			previousEnd:   time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, previous := CurrentAndPrevious(tt.now)

			assert.Equal(t, tt.currentStart, current.Start)
			assert.Equal(t, tt.currentEnd, current.End)
			assert.Equal(t, tt.previousStart, previous.Start)
			assert.Equal(t, tt.previousEnd, previous.End)
		})
	}
}

func TestPeriodDaysAndLabel(t *testing.T) {
	current, previous := CurrentAndPrevious(date(2026, time.March, 15))

	assert.Equal(t, 28, current.Days())
	assert.Equal(t, 31, previous.Days())
	assert.Equal(t, "February", current.Label())
	assert.Equal(t, "January", previous.Label())
}

func TestCurrentAndPreviousDeterministic(t *testing.T) {
	now := date(2026, time.July, 4)

	c1, p1 := CurrentAndPrevious(now)
	c2, p2 := CurrentAndPrevious(now)

	assert.Equal(t, c1, c2)
	assert.Equal(t, p1, p2)
}
