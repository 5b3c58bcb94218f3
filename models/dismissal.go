package models

import "time"

const DismissalTable = "eqt_dismissed_notifications"

// DismissedNotification suppresses a risk alert for one exact late-return
// tally. The next late return changes the count and the alert reappears.
type DismissedNotification struct {
	ID               string `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID        string `gorm:"type:uuid;index:idx_eqt_dismissal,unique;not null" json:"studentId"`
	LateReturnsCount int    `gorm:"index:idx_eqt_dismissal,unique;not null" json:"lateReturnsCount"`
	WarningThreshold int    `gorm:"index:idx_eqt_dismissal,unique;not null" json:"warningThreshold"`

	CreatedAt time.Time `json:"createdAt"`
}

func (DismissedNotification) TableName() string { return DismissalTable }
