package service

import (
	"context"
	"errors"
	"strings"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SecurityQAService stores recovery questions and resets passwords with them.
type SecurityQAService struct {
	db *gorm.DB
}

// NewSecurityQAService constructs SecurityQAService.
func NewSecurityQAService(db *gorm.DB) *SecurityQAService {
	return &SecurityQAService{db: db}
}

// normalizeAnswer makes answers case and whitespace insensitive.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.Join(strings.Fields(answer), " "))
}

// List returns the owner's questions.
func (s *SecurityQAService) List(ctx context.Context, owner uuid.UUID) ([]domain.SecurityQA, error) {
	qas := []domain.SecurityQA{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", owner).Order("created_at, id").Find(&qas).Error; err != nil {
		return nil, err
	}
	return qas, nil
}

// Create adds a question with a hashed answer.
func (s *SecurityQAService) Create(ctx context.Context, owner uuid.UUID, question, answer string) (*domain.SecurityQA, error) {
	question = strings.TrimSpace(question)
	answer = normalizeAnswer(answer)
	v := &ValidationError{}
	switch {
	case question == "":
		v.add("question", "question is required")
	case tooLong(question, MaxQuestionLength):
		v.add("question", "question is too long")
	}
	if answer == "" {
		v.add("answer", "answer is required")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	hash, err := hashSecret(answer)
	if err != nil {
		return nil, err
	}
	qa := &domain.SecurityQA{UserID: owner, Question: question, AnswerHash: hash}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(qa).Error
	}); err != nil {
		return nil, err
	}
	return qa, nil
}

// Delete removes one of the owner's questions.
func (s *SecurityQAService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var qa domain.SecurityQA
		if err := first(tx, &qa, id); err != nil {
			return err
		}
		if err := authorize(tx, owner, &qa); err != nil {
			return err
		}
		return tx.Delete(&qa).Error
	})
}

func (s *SecurityQAService) userByName(tx *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := tx.Where("username = ?", strings.ToLower(strings.TrimSpace(username))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

// Questions lists the recovery questions of a user, without answers.
func (s *SecurityQAService) Questions(ctx context.Context, username string) ([]domain.SecurityQA, error) {
	user, err := s.userByName(s.db.WithContext(ctx), username)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, user.ID)
}

// Recover sets a new password when answer matches the user's question.
// Unknown users, foreign questions and wrong answers all yield ErrUnauthorized.
func (s *SecurityQAService) Recover(ctx context.Context, username string, questionID uuid.UUID, answer, newPassword string) error {
	v := &ValidationError{}
	validatePassword(v, "new_password", newPassword)
	if err := v.orNil(); err != nil {
		return err
	}
	hash, err := hashSecret(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userByName(tx, username)
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		} else if err != nil {
			return err
		}
		var qa domain.SecurityQA
		if err := first(tx, &qa, questionID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		if qa.UserID != user.ID || !checkSecret(qa.AnswerHash, normalizeAnswer(answer)) {
			logrus.WithField("user_id", user.ID).Warn("Recovery answer rejected")
			return ErrUnauthorized
		}
		// Tokens issued under the old password carry the old version
		if err := tx.Model(user).Updates(map[string]any{
			"password_hash": hash,
			"token_version": gorm.Expr("token_version + 1"),
		}).Error; err != nil {
			return err
		}
		logrus.WithField("user_id", user.ID).Info("Password recovered")
		return nil
	})
}
