package models

import "time"

const EquipmentTable = "eqt_equipment_items"

// Equipment status lifecycle. An item is StatusBorrowed iff exactly one
// open loan references it; the other states are set by admins.
const (
	StatusAvailable = "available"
	StatusBorrowed  = "borrowed"
	StatusReserved  = "reserved"
	StatusRepair    = "repair"
)

type EquipmentItem struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	ItemCode string `gorm:"size:120;uniqueIndex;not null" json:"itemCode"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Category string `gorm:"size:80;not null;index" json:"category"`
	Location string `gorm:"size:120" json:"location,omitempty"`
	Status   string `gorm:"size:20;not null;default:'available';index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EquipmentItem) TableName() string { return EquipmentTable }
