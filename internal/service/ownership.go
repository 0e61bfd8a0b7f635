package service

import (
	"errors"
	"fmt"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// resolveOwner returns the user an entity belongs to, walking exactly one hop
// to the parent where the entity does not carry the user id itself.
func resolveOwner(tx *gorm.DB, entity any) (uuid.UUID, error) {
	switch e := entity.(type) {
	case *domain.Contact:
		return e.UserID, nil
	case *domain.SecurityQA:
		return e.UserID, nil
	case *domain.Phone:
		var parent domain.Contact
		if err := tx.Select("id", "user_id").First(&parent, "id = ?", e.ContactID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, ErrNotFound
			}
			return uuid.Nil, err
		}
		return parent.UserID, nil
	default:
		return uuid.Nil, fmt.Errorf("no owner for %T", entity)
	}
}

// authorize fails with ErrForbidden unless caller owns entity.
func authorize(tx *gorm.DB, caller uuid.UUID, entity any) error {
	owner, err := resolveOwner(tx, entity)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrForbidden
	}
	return nil
}

// first loads a row by id and maps a missing row to ErrNotFound.
func first(tx *gorm.DB, dest any, id uuid.UUID) error {
	if err := tx.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// forUpdate holds the selected row until the transaction ends. SQLite has no
// row locks and ignores the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func ownedContact(tx *gorm.DB, caller, id uuid.UUID) (*domain.Contact, error) {
	return ownedContactVia(tx, tx, caller, id)
}

func lockedContact(tx *gorm.DB, caller, id uuid.UUID) (*domain.Contact, error) {
	return ownedContactVia(forUpdate(tx), tx, caller, id)
}

func ownedContactVia(read, tx *gorm.DB, caller, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	if err := first(read, &contact, id); err != nil {
		return nil, err
	}
	if err := authorize(tx, caller, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func ownedPhone(tx *gorm.DB, caller, id uuid.UUID) (*domain.Phone, error) {
	return ownedPhoneVia(tx, tx, caller, id)
}

func lockedPhone(tx *gorm.DB, caller, id uuid.UUID) (*domain.Phone, error) {
	return ownedPhoneVia(forUpdate(tx), tx, caller, id)
}

func ownedPhoneVia(read, tx *gorm.DB, caller, id uuid.UUID) (*domain.Phone, error) {
	var phone domain.Phone
	if err := first(read, &phone, id); err != nil {
		return nil, err
	}
	if err := authorize(tx, caller, &phone); err != nil {
		return nil, err
	}
	return &phone, nil
}
