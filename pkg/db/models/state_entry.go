package models

import "time"

// StateEntry persists one JSON blob of session state under a fixed key.
type StateEntry struct {
	Key       string    `gorm:"column:state_key;primaryKey;size:128"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name regardless of naming strategy.
func (StateEntry) TableName() string {
	return "storefront_state"
}
