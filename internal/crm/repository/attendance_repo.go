package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByUserAndDate returns the record for a user on a calendar date.
func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*entity.Attendance, error) {
	var att entity.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.Format("2006-01-02")).
		First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// FindByDate lists every record for a calendar date.
func (r *AttendanceRepository) FindByDate(ctx context.Context, date time.Time) ([]entity.Attendance, error) {
	var items []entity.Attendance
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Order("user_id ASC").
		Find(&items).Error
	return items, err
}

// FindByUserBetween lists a user's records inside [from, to].
func (r *AttendanceRepository) FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]entity.Attendance, error) {
	var items []entity.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?",
			userID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC").
		Find(&items).Error
	return items, err
}

func (r *AttendanceRepository) Create(ctx context.Context, att *entity.Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *AttendanceRepository) Update(ctx context.Context, att *entity.Attendance) error {
	return r.db.WithContext(ctx).Save(att).Error
}
