package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the surrogate key and row bookkeeping shared by every
// table. API-facing identifiers are each model's snowflake PublicID; the
// auto-increment key stays inside the database layer.
type BaseModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
