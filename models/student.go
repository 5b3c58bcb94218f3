package models

import "time"

const StudentTable = "eqt_students"

type Student struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	StudentNo  string `gorm:"size:60;uniqueIndex;not null" json:"studentNo"`
	FullName   string `gorm:"size:200;not null;index" json:"fullName"`
	YearGroup  string `gorm:"size:40;not null" json:"yearGroup"`
	ClassName  string `gorm:"size:40" json:"className,omitempty"`
	House      string `gorm:"size:60" json:"house,omitempty"`
	Email      string `gorm:"size:255" json:"email,omitempty"`
	TrustScore int    `gorm:"not null;default:100" json:"trustScore"`

	// Restriction state; mutated only through the suspension manager.
	IsBlacklisted    bool       `gorm:"not null;default:false;index" json:"isBlacklisted"`
	BlacklistEndDate *time.Time `gorm:"index" json:"blacklistEndDate,omitempty"`
	BlacklistReason  *string    `gorm:"size:255" json:"blacklistReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Student) TableName() string { return StudentTable }
