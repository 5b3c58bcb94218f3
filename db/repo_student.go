package db

import (
	"context"
	"strings"
	"time"

	"equiptrack/models"
	"equiptrack/store"
)

func (r *Repo) CreateStudent(ctx context.Context, s *models.Student) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListStudents filters by name/class/house keyword, ordered by name for
// stable output.
func (r *Repo) ListStudents(ctx context.Context, query string) ([]models.Student, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Student{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(full_name) LIKE ? OR LOWER(class_name) LIKE ? OR LOWER(house) LIKE ?",
			like, like, like,
		)
	}
	var out []models.Student
	err := tx.Order("full_name ASC").Find(&out).Error
	return out, err
}

func (r *Repo) SetTrustScore(ctx context.Context, studentID string, score int) error {
	res := r.DB.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("trust_score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetRestriction flips the blacklist flag only when the row still holds
// the expected prior state; zero rows affected means a concurrent
// suspend or expiry got there first.
func (r *Repo) SetRestriction(ctx context.Context, studentID string, from, to bool, end *time.Time, reason *string) error {
	res := r.DB.WithContext(ctx).Model(&models.Student{}).
		Where("id = ? AND is_blacklisted = ?", studentID, from).
		Updates(map[string]interface{}{
			"is_blacklisted":     to,
			"blacklist_end_date": end,
			"blacklist_reason":   reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

// ClearLapsedRestriction guards on the end date as well, so a
// suspension renewed after the expiry pass listed the student is left
// alone.
func (r *Repo) ClearLapsedRestriction(ctx context.Context, studentID string, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Student{}).
		Where("id = ? AND is_blacklisted = TRUE AND blacklist_end_date IS NOT NULL AND blacklist_end_date <= ?", studentID, now).
		Updates(map[string]interface{}{
			"is_blacklisted":     false,
			"blacklist_end_date": nil,
			"blacklist_reason":   nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *Repo) ListExpiredRestrictions(ctx context.Context, now time.Time) ([]models.Student, error) {
	var out []models.Student
	err := r.DB.WithContext(ctx).
		Where("is_blacklisted = TRUE AND blacklist_end_date IS NOT NULL AND blacklist_end_date <= ?", now).
		Order("full_name ASC").
		Find(&out).Error
	return out, err
}
