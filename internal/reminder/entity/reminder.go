package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// DateList is a JSONB-backed list of calendar dates (YYYY-MM-DD).
type DateList []string

func (l DateList) Value() (driver.Value, error) {
	if l == nil {
		l = DateList{}
	}
	return json.Marshal(l)
}

func (l *DateList) Scan(value interface{}) error {
	if value == nil {
		*l = DateList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("reminder: unsupported scan type for DateList")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether date (YYYY-MM-DD) is present in the list.
func (l DateList) Contains(date string) bool {
	for _, d := range l {
		if d == date {
			return true
		}
	}
	return false
}

// AdminReminder is an admin-authored note with one or more trigger dates.
// On each trigger date the sweeper notifies the admin phone once; fired
// dates are recorded in TriggeredDates so restarts never re-send.
type AdminReminder struct {
	ID             string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Message        string    `gorm:"type:text" json:"message"`
	ReminderDates  DateList  `gorm:"type:jsonb" json:"reminder_dates"`
	TriggeredDates DateList  `gorm:"type:jsonb" json:"triggered_dates"`
	CreatedByID    string    `gorm:"type:varchar(32);index" json:"created_by_id"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (AdminReminder) TableName() string {
	return "admin_reminders"
}

// DueOn reports whether the reminder should fire for the given date:
// the date is scheduled, active, and not yet triggered.
func (r *AdminReminder) DueOn(date string) bool {
	return r.IsActive && r.ReminderDates.Contains(date) && !r.TriggeredDates.Contains(date)
}
