package domain

import "github.com/google/uuid" // UUID type

// Contact Model
type Contact struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"` // Owning user
	Name    string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Email   *string   `gorm:"type:varchar(100);index" json:"email"`
	Address *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	Notes   *string   `gorm:"type:varchar(500)" json:"notes,omitempty"`
	Phones  []Phone   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"phones"`
}
