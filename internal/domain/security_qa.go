package domain

import "github.com/google/uuid" // UUID type

// SecurityQA is a recovery question with a hashed answer
type SecurityQA struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"`
	Question   string    `gorm:"type:varchar(255);not null" json:"question"`
	AnswerHash string    `gorm:"type:varchar(256);not null" json:"-"`
}

// TableName keeps the table name readable
func (SecurityQA) TableName() string {
	return "security_qas"
}
