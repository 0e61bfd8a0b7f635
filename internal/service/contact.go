package service

import (
	"context"
	"strings"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactInput is the client-editable part of a contact.
type ContactInput struct {
	Name    string
	Email   *string
	Address *string
	Notes   *string
}

// ContactPatch is a partial update: nil fields keep the stored value and an
// empty string clears an optional field.
type ContactPatch struct {
	Name    *string
	Email   *string
	Address *string
	Notes   *string
}

// Apply overlays the patch onto in.
func (p ContactPatch) Apply(in ContactInput) ContactInput {
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Email != nil {
		in.Email = p.Email
	}
	if p.Address != nil {
		in.Address = p.Address
	}
	if p.Notes != nil {
		in.Notes = p.Notes
	}
	return in
}

// Page selects a window of a list; a zero Size means everything.
type Page struct {
	Page int
	Size int
}

// ContactService manages contacts scoped to their owner.
type ContactService struct {
	db *gorm.DB
}

// NewContactService constructs ContactService.
func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (in ContactInput) normalize() (ContactInput, error) {
	out := ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   optional(in.Email),
		Address: optional(in.Address),
		Notes:   optional(in.Notes),
	}
	v := &ValidationError{}
	switch {
	case out.Name == "":
		v.add("name", "name is required")
	case tooLong(out.Name, MaxNameLength):
		v.add("name", "name is too long")
	}
	if out.Email != nil {
		switch {
		case tooLong(*out.Email, MaxEmailLength):
			v.add("email", "email is too long")
		case !ValidEmail(*out.Email):
			v.add("email", "email is not a valid address")
		}
	}
	if out.Address != nil && tooLong(*out.Address, MaxAddressLength) {
		v.add("address", "address is too long")
	}
	if out.Notes != nil && tooLong(*out.Notes, MaxNotesLength) {
		v.add("notes", "notes are too long")
	}
	return out, v.orNil()
}

func preloadPhones(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Phones", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	})
}

// List returns the owner's contacts with their phones, ordered by name.
func (s *ContactService) List(ctx context.Context, owner uuid.UUID, page Page) ([]domain.Contact, int64, error) {
	var (
		contacts []domain.Contact
		total    int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&domain.Contact{}).Where("user_id = ?", owner).Session(&gorm.Session{})
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		query = preloadPhones(query).Order("name, id")
		if page.Size > 0 {
			p := max(page.Page, 1)
			query = query.Offset((p - 1) * page.Size).Limit(page.Size)
		}
		return query.Find(&contacts).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Get returns one contact with its phones.
func (s *ContactService) Get(ctx context.Context, owner, id uuid.UUID) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		contact, err = ownedContact(preloadPhones(tx), owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// Create stores a new contact for owner.
func (s *ContactService) Create(ctx context.Context, owner uuid.UUID, in ContactInput) (*domain.Contact, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	contact := &domain.Contact{
		UserID:  owner,
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		Notes:   in.Notes,
		Phones:  []domain.Phone{},
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(contact).Error
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// Update replaces the editable fields of an owned contact.
func (s *ContactService) Update(ctx context.Context, owner, id uuid.UUID, in ContactInput) (*domain.Contact, error) {
	if _, err := in.normalize(); err != nil {
		return nil, err
	}
	return s.modify(ctx, owner, id, func(*domain.Contact) ContactInput { return in })
}

// Patch merges p into the stored contact and writes the result in the same
// transaction that read it.
func (s *ContactService) Patch(ctx context.Context, owner, id uuid.UUID, p ContactPatch) (*domain.Contact, error) {
	return s.modify(ctx, owner, id, func(stored *domain.Contact) ContactInput {
		return p.Apply(ContactInput{
			Name:    stored.Name,
			Email:   stored.Email,
			Address: stored.Address,
			Notes:   stored.Notes,
		})
	})
}

func (s *ContactService) modify(ctx context.Context, owner, id uuid.UUID, next func(*domain.Contact) ContactInput) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if contact, err = lockedContact(tx, owner, id); err != nil {
			return err
		}
		in, err := next(contact).normalize()
		if err != nil {
			return err
		}
		contact.Name = in.Name
		contact.Email = in.Email
		contact.Address = in.Address
		contact.Notes = in.Notes
		if err := tx.Model(contact).Select("name", "email", "address", "notes", "updated_at").Updates(contact).Error; err != nil {
			return err
		}
		return preloadPhones(tx).First(contact, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes an owned contact and its phones.
func (s *ContactService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact, err := ownedContact(tx, owner, id)
		if err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", contact.ID).Delete(&domain.Phone{}).Error; err != nil {
			return err
		}
		return tx.Delete(contact).Error
	})
}
