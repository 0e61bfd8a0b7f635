package domain

import "time" // Expiry timestamps

// TokenBlacklist marks a revoked token; its presence means the token must be rejected
type TokenBlacklist struct {
	BaseModel
	Token     string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"` // After this the row can be purged
}

// TableName specifies the table name for TokenBlacklist
func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
