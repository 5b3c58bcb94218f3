package models

import "time"

const LoanTable = "eqt_loans"

const (
	LoanActive   = "active"
	LoanReturned = "returned"
)

// Loan is one borrow event. Overdue and late are never stored: both are
// derived from (now, due_at, returned_at) at read time.
type Loan struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID        string     `gorm:"type:uuid;index;not null" json:"studentId"`
	EquipmentID      string     `gorm:"type:uuid;index;not null" json:"equipmentId"`
	BorrowedByUserID *string    `gorm:"type:uuid" json:"borrowedByUserId,omitempty"`
	BorrowedAt       time.Time  `gorm:"index;not null" json:"borrowedAt"`
	DueAt            time.Time  `gorm:"index;not null" json:"dueAt"`
	ReturnedAt       *time.Time `gorm:"index" json:"returnedAt,omitempty"`
	Status           string     `gorm:"size:20;not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }
