package domain

// User Model
type User struct {
	BaseModel
	Username     string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"` // Unique, lower-cased username
	Email        string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`   // Unique email address
	PasswordHash string       `gorm:"type:varchar(256);not null" json:"-"`                   // Bcrypt password hash
	TokenVersion int          `gorm:"not null;default:0" json:"-"`                           // Bumped on password reset to retire issued tokens
	Contacts     []Contact    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"contacts,omitempty"`
	SecurityQAs  []SecurityQA `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
