package db

import (
	"context"

	"equiptrack/models"
	"equiptrack/store"
)

func (r *Repo) CreateEquipment(ctx context.Context, it *models.EquipmentItem) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) GetEquipment(ctx context.Context, id string) (*models.EquipmentItem, error) {
	var it models.EquipmentItem
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *Repo) ListEquipment(ctx context.Context, category, status string) ([]models.EquipmentItem, error) {
	tx := r.DB.WithContext(ctx).Model(&models.EquipmentItem{})
	if category != "" {
		tx = tx.Where("category = ?", category)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var out []models.EquipmentItem
	err := tx.Order("item_code ASC").Find(&out).Error
	return out, err
}

// ListEquipmentWithLoan attaches the open loan and its student to each
// listed item. Open loans are fetched in one pass keyed by equipment.
func (r *Repo) ListEquipmentWithLoan(ctx context.Context, category, status string) ([]store.EquipmentWithLoan, error) {
	items, err := r.ListEquipment(ctx, category, status)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	var open []models.Loan
	if err := r.DB.WithContext(ctx).
		Where("equipment_id IN ? AND returned_at IS NULL", ids).
		Find(&open).Error; err != nil {
		return nil, err
	}
	byItem := make(map[string]*models.Loan, len(open))
	studentIDs := make([]string, 0, len(open))
	for i := range open {
		byItem[open[i].EquipmentID] = &open[i]
		studentIDs = append(studentIDs, open[i].StudentID)
	}

	students := map[string]*models.Student{}
	if len(studentIDs) > 0 {
		var ss []models.Student
		if err := r.DB.WithContext(ctx).Where("id IN ?", studentIDs).Find(&ss).Error; err != nil {
			return nil, err
		}
		for i := range ss {
			students[ss[i].ID] = &ss[i]
		}
	}

	out := make([]store.EquipmentWithLoan, len(items))
	for i, it := range items {
		out[i] = store.EquipmentWithLoan{Item: it}
		if l := byItem[it.ID]; l != nil {
			out[i].OpenLoan = l
			out[i].Borrower = students[l.StudentID]
		}
	}
	return out, nil
}

// SetEquipmentStatus flips status only when the row is still in the
// expected state; zero rows affected means someone got there first.
func (r *Repo) SetEquipmentStatus(ctx context.Context, id, from, to string) error {
	res := r.DB.WithContext(ctx).Model(&models.EquipmentItem{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}
