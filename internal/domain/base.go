package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID generation
	"gorm.io/gorm"           // GORM ORM library
)

// BaseModel provides the shared identifier and timestamp columns
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"` // Server-generated UUID
	CreatedAt time.Time `json:"created_at"`                         // Creation time
	UpdatedAt time.Time `json:"updated_at"`                         // Last update time
}

// BeforeCreate assigns a fresh UUID to records that do not have one yet
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
