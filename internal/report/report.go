package report

import (
	"encoding/json"
	"time"
)

// DateLayout is the textual format of Report.Date and of dates inside a state.
const DateLayout = "2006-01-02T15:04:05.000000Z"

// FormatDate formats t in UTC using DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Report is the envelope posted to the hub once per iteration (or per target).
type Report struct {
	Label *Map
	Date  time.Time
	State *Map
}

// New creates a report with the given label, dated at date.
func New(label *Map, date time.Time) *Report {
	if label == nil {
		label = NewMap()
	}
	return &Report{
		Label: label,
		Date:  date,
		State: NewMap(),
	}
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label *Map   `json:"label"`
		Date  string `json:"date"`
		State *Map   `json:"state"`
	}{
		Label: r.Label,
		Date:  FormatDate(r.Date),
		State: r.State,
	})
}
