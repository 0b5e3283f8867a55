package service

import (
	"time"
)

// Interval is a milestone repeat step, expressed in calendar months,
// plain days, or both.
type Interval struct {
	Months int
	Days   int
}

func (i Interval) IsZero() bool {
	return i.Months == 0 && i.Days == 0
}

// Add applies the interval to t, clamping month arithmetic at month end.
func (i Interval) Add(t time.Time) time.Time {
	return AddMonths(t, i.Months).AddDate(0, 0, i.Days)
}

// AddMonths adds calendar months with day-of-month clamping:
// Jan 31 + 1 month = Feb 28 (or 29), not Mar 2/3.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// FreeServiceRecord is one completed no-charge visit, as consumed by the
// milestone matcher.
type FreeServiceRecord struct {
	Date        time.Time
	HandlerID   string
	HandlerName string
}

// Milestone is one derived compliance date with its evaluation result.
// Recomputed on every report request; never persisted.
type Milestone struct {
	Due         time.Time  `json:"due"`
	Done        bool       `json:"done"`
	MatchedDate *time.Time `json:"matched_date,omitempty"`
	HandlerID   string     `json:"handler_id,omitempty"`
	HandlerName string     `json:"handler_name,omitempty"`
}

// MilestoneDates generates the full milestone sequence for a coverage
// window: start+interval, start+2*interval, ... while strictly before end,
// then end itself unless the sequence already landed on it.
func MilestoneDates(start, end time.Time, interval Interval) []time.Time {
	if interval.IsZero() || !start.Before(end) {
		return nil
	}

	start = dateOnly(start)
	end = dateOnly(end)

	var dates []time.Time
	for d := interval.Add(start); d.Before(end); d = interval.Add(d) {
		dates = append(dates, d)
	}
	if len(dates) == 0 || !dates[len(dates)-1].Equal(end) {
		dates = append(dates, end)
	}
	return dates
}

// EvaluateMilestones classifies each milestone date against the free-service
// history: the first record within toleranceDays of the due date marks it
// done and is recorded on the result.
func EvaluateMilestones(dates []time.Time, history []FreeServiceRecord, toleranceDays int) []Milestone {
	results := make([]Milestone, 0, len(dates))
	for _, due := range dates {
		m := Milestone{Due: due}
		for _, rec := range history {
			if withinDays(due, rec.Date, toleranceDays) {
				matched := dateOnly(rec.Date)
				m.Done = true
				m.MatchedDate = &matched
				m.HandlerID = rec.HandlerID
				m.HandlerName = rec.HandlerName
				break
			}
		}
		results = append(results, m)
	}
	return results
}

// FilterPeriod retains milestones due inside [periodStart, periodEnd].
func FilterPeriod(milestones []Milestone, periodStart, periodEnd time.Time) []Milestone {
	periodStart = dateOnly(periodStart)
	periodEnd = dateOnly(periodEnd)
	var out []Milestone
	for _, m := range milestones {
		if m.Due.Before(periodStart) || m.Due.After(periodEnd) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// withinDays compares two instants at date granularity, inclusive bound.
func withinDays(a, b time.Time, days int) bool {
	da, db := dateOnly(a), dateOnly(b)
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
