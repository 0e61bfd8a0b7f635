package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,50}$`)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UserService manages accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func validatePassword(v *ValidationError, field, password string) {
	// bcrypt ignores everything past 72 bytes
	if len(password) < 8 || len(password) > 72 {
		v.add(field, "password must be 8-72 characters")
	}
}

// Register creates an account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	v := &ValidationError{}
	if !usernamePattern.MatchString(username) {
		v.add("username", "username must be 3-50 letters, digits, '.', '-' or '_'")
	}
	if tooLong(email, MaxEmailLength) || !ValidEmail(email) {
		v.add("email", "email is not a valid address")
	}
	validatePassword(v, "password", in.Password)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	hash, err := hashSecret(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, Email: email, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&domain.User{}).Where("username = ? OR email = ?", username, email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

// Authenticate checks a username (or email) and password pair.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !checkSecret(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// Find returns a user without relations.
func (s *UserService) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := first(s.db.WithContext(ctx), &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns a user with contacts and their phones.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	tx := s.db.WithContext(ctx).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("name, id") }).
		Preload("Contacts.Phones", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") })
	if err := first(tx, &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user with all contacts, phones and security questions.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := first(tx, &user, id); err != nil {
			return err
		}
		contacts := tx.Model(&domain.Contact{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("contact_id IN (?)", contacts).Delete(&domain.Phone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Contact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.SecurityQA{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}
	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}
