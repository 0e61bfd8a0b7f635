package service

import (
	"context"
	"time"

	"contact_system/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlacklistService records revoked tokens.
type BlacklistService struct {
	db *gorm.DB
}

// NewBlacklistService constructs BlacklistService.
func NewBlacklistService(db *gorm.DB) *BlacklistService {
	return &BlacklistService{db: db}
}

// Revoke blacklists token until expiresAt. Revoking twice is a no-op.
// Rows whose tokens have expired anyway are purged on the way.
func (s *BlacklistService) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&domain.TokenBlacklist{}).Error; err != nil {
			return err
		}
		entry := &domain.TokenBlacklist{Token: token, ExpiresAt: expiresAt}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
	})
}

// IsRevoked reports whether token has been blacklisted.
func (s *BlacklistService) IsRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.TokenBlacklist{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
