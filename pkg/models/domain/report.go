package domain

import "time"

// ReportingPeriod is a calendar-month-aligned date range used for
// period-over-period comparison. Start and End are both inclusive and End is
// the last instant of the month.
type ReportingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the calendar length of the period in days.
func (p ReportingPeriod) Days() int {
	return p.End.Day()
}

// Label returns the full English month name of the period.
func (p ReportingPeriod) Label() string {
	return p.Start.Month().String()
}

// ComparisonField pairs one metric value with its previous-period equivalent.
// Key is stable within its section and doubles as a localization lookup key.
type ComparisonField struct {
	Key            string   `json:"key"`
	Value          float64  `json:"value"`
	Compare        *float64 `json:"compare"`
	DescriptionKey string   `json:"description_key,omitempty"`
	Hidden         bool     `json:"hidden"`
}

// ReportSection groups comparison fields under a localizable title key.
// Field order is fixed by the assembler and significant for rendering.
type ReportSection struct {
	TitleKey string            `json:"title_key"`
	Fields   []ComparisonField `json:"fields"`
}

// MetaEntry is one header summary value shown above the sections.
type MetaEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Report is the complete digest payload for one reporting period. It is
// immutable once assembled and safe to share.
type Report struct {
	PeriodLabel    string          `json:"period_label"`
	Title          string          `json:"title"`
	Period         ReportingPeriod `json:"period"`
	HeaderMetadata []MetaEntry     `json:"header_metadata"`
	Sections       []ReportSection `json:"sections"`
}
