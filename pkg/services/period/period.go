package period

import (
	"time"

	"github.com/de-tools/site-digest/pkg/models/domain"
)

// CurrentAndPrevious derives the two reporting windows for a digest generated
// at now: the full calendar month before now's month (the in-progress month is
// skipped), and the full calendar month before that. Both windows keep now's
// location.
func CurrentAndPrevious(now time.Time) (current, previous domain.ReportingPeriod) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	current = monthOf(monthStart.AddDate(0, -1, 0))
	previous = monthOf(monthStart.AddDate(0, -2, 0))
	return current, previous
}

func monthOf(start time.Time) domain.ReportingPeriod {
	return domain.ReportingPeriod{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Second),
	}
}
