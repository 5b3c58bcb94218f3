package db

import (
	"context"

	"equiptrack/models"
)

func (r *Repo) CreateDismissal(ctx context.Context, d *models.DismissedNotification) error {
	err := r.DB.WithContext(ctx).Create(d).Error
	if isUniqueViolation(err) {
		// a concurrent duplicate lands on the composite index; dismissing
		// the same tally twice is the same no-op either way
		return nil
	}
	return err
}

func (r *Repo) HasDismissal(ctx context.Context, studentID string, lateCount, threshold int) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.DismissedNotification{}).
		Where("student_id = ? AND late_returns_count = ? AND warning_threshold = ?",
			studentID, lateCount, threshold).
		Count(&n).Error
	return n > 0, err
}
