package entity

import "testing"

func TestReminderDueOn(t *testing.T) {
	r := AdminReminder{
		IsActive:       true,
		ReminderDates:  DateList{"2026-09-01", "2026-10-01"},
		TriggeredDates: DateList{"2026-09-01"},
	}

	if r.DueOn("2026-09-01") {
		t.Error("already-triggered date must not be due")
	}
	if !r.DueOn("2026-10-01") {
		t.Error("scheduled untriggered date must be due")
	}
	if r.DueOn("2026-11-01") {
		t.Error("unscheduled date must not be due")
	}

	r.IsActive = false
	if r.DueOn("2026-10-01") {
		t.Error("inactive reminder must never be due")
	}
}

func TestDateListContains(t *testing.T) {
	var empty DateList
	if empty.Contains("2026-09-01") {
		t.Error("nil list contains nothing")
	}
	l := DateList{"2026-09-01"}
	if !l.Contains("2026-09-01") {
		t.Error("expected containment")
	}
}
