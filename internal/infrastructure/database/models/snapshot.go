package models

import "time"

// Snapshot is one string-keyed entry of the local durable store. Two
// rows exist in practice: the serialized AppData blob and the version
// tag that guards it.
type Snapshot struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}
