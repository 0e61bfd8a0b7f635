package domain

import "github.com/google/uuid" // UUID type

// Phone Model
type Phone struct {
	BaseModel
	ContactID  uuid.UUID `gorm:"type:char(36);not null;index" json:"contact_id"` // Parent contact
	Number     string    `gorm:"type:varchar(20);not null" json:"number"`
	NumberType *string   `gorm:"type:varchar(50)" json:"number_type"` // Free-form label such as mobile or home
}
