package db

import (
	"context"
	"time"

	"equiptrack/models"
	"equiptrack/store"
)

func (r *Repo) CreateLoan(ctx context.Context, l *models.Loan) error {
	// the partial unique index rejects a second open loan per item
	err := r.DB.WithContext(ctx).Create(l).Error
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

func (r *Repo) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, f store.LoanFilter) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrowed_at DESC")
	if f.StudentID != "" {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.EquipmentID != "" {
		q = q.Where("equipment_id = ?", f.EquipmentID)
	}
	switch f.Status {
	case "open":
		q = q.Where("returned_at IS NULL")
	case "returned":
		q = q.Where("returned_at IS NOT NULL")
	}
	var out []models.Loan
	err := q.Find(&out).Error
	return out, err
}

// CloseLoan marks the loan returned iff it is still open.
func (r *Repo) CloseLoan(ctx context.Context, id string, returnedAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND returned_at IS NULL", id).
		Updates(map[string]interface{}{
			"returned_at": returnedAt,
			"status":      models.LoanReturned,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

// ReopenLoan reverses a return iff the loan is currently closed.
func (r *Repo) ReopenLoan(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND returned_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"returned_at": nil,
			"status":      models.LoanActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *Repo) CountLateReturns(ctx context.Context, studentID string, since *time.Time) (int, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("student_id = ? AND returned_at IS NOT NULL AND returned_at > due_at", studentID)
	if since != nil {
		q = q.Where("returned_at > ?", *since)
	}
	var n int64
	err := q.Count(&n).Error
	return int(n), err
}

func (r *Repo) CountOpenOverdue(ctx context.Context, studentID string, now time.Time) (int, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("student_id = ? AND returned_at IS NULL AND due_at < ?", studentID, now).
		Count(&n).Error
	return int(n), err
}

func (r *Repo) CountLoans(ctx context.Context, studentID string) (int, int, error) {
	var open, total int64
	if err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("student_id = ?", studentID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("student_id = ? AND returned_at IS NULL", studentID).
		Count(&open).Error; err != nil {
		return 0, 0, err
	}
	return int(open), int(total), nil
}
