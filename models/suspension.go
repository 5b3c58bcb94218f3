package models

import "time"

const SuspensionTable = "eqt_suspension_entries"

// SuspensionEntry is append-only: one row per suspension ever issued.
// The row count per student drives warning-threshold escalation.
type SuspensionEntry struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID string    `gorm:"type:uuid;index;not null" json:"studentId"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"index;not null" json:"endDate"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
}

func (SuspensionEntry) TableName() string { return SuspensionTable }
