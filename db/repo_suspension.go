package db

import (
	"context"
	"time"

	"equiptrack/models"
)

func (r *Repo) CreateSuspension(ctx context.Context, e *models.SuspensionEntry) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *Repo) CountSuspensions(ctx context.Context, studentID string) (int, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.SuspensionEntry{}).
		Where("student_id = ?", studentID).
		Count(&n).Error
	return int(n), err
}

// LastSuspensionEnd returns the most recent end date, or nil if the
// student has never been suspended.
func (r *Repo) LastSuspensionEnd(ctx context.Context, studentID string) (*time.Time, error) {
	var e models.SuspensionEntry
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("end_date DESC").
		Limit(1).
		Find(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, nil
	}
	end := e.EndDate
	return &end, nil
}

func (r *Repo) DeactivateSuspensions(ctx context.Context, studentID string) error {
	return r.DB.WithContext(ctx).Model(&models.SuspensionEntry{}).
		Where("student_id = ? AND is_active = TRUE", studentID).
		Update("is_active", false).Error
}
