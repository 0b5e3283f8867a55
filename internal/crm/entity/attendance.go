package entity

import "time"

// Attendance is one worker's presence record for one day.
type Attendance struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	UserID     string    `json:"user_id" gorm:"size:32;uniqueIndex:idx_attendance_user_date"`
	Date       time.Time `json:"date" gorm:"type:date;uniqueIndex:idx_attendance_user_date"`
	Status     string    `json:"status" gorm:"size:20"` // present/absent
	MarkedByID *string   `json:"marked_by_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Attendance) TableName() string {
	return "crm_attendance"
}

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)
