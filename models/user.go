package models

import "time"

const UserTable = "eqt_users"

// Staff roles. The engine only records who performed a borrow for
// audit; it never authenticates anyone itself.
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleCaptain = "sports_captain"
)

type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName string `gorm:"size:255;not null" json:"fullName"`
	Role     string `gorm:"size:30;not null;default:'sports_captain'" json:"role"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
