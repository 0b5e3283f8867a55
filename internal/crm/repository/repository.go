package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories aggregates the CRM data-access layer.
type Repositories struct {
	Card          *CardRepository
	Service       *ServiceRepository
	Entry         *EntryRepository
	JobCard       *JobCardRepository
	Feedback      *FeedbackRepository
	Attendance    *AttendanceRepository
	IndustrialAMC *IndustrialAMCRepository
	AuditLog      *AuditLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Card:          NewCardRepository(db),
		Service:       NewServiceRepository(db),
		Entry:         NewEntryRepository(db),
		JobCard:       NewJobCardRepository(db),
		Feedback:      NewFeedbackRepository(db),
		Attendance:    NewAttendanceRepository(db),
		IndustrialAMC: NewIndustrialAMCRepository(db),
		AuditLog:      NewAuditLogRepository(db),
	}
}
