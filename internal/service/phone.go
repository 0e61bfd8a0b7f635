package service

import (
	"context"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhoneInput is the client-editable part of a phone. ContactID is only read
// by Update, where it moves the phone to another owned contact.
type PhoneInput struct {
	Number     string
	NumberType *string
	ContactID  *uuid.UUID
}

// PhonePatch is a partial phone update; nil fields keep the stored value.
type PhonePatch struct {
	Number     *string
	NumberType *string
	ContactID  *uuid.UUID
}

// PhoneService manages phones; ownership goes through the parent contact.
type PhoneService struct {
	db *gorm.DB
}

// NewPhoneService constructs PhoneService.
func NewPhoneService(db *gorm.DB) *PhoneService {
	return &PhoneService{db: db}
}

func (in PhoneInput) normalize() (PhoneInput, error) {
	v := &ValidationError{}
	number, err := NormalizePhone(in.Number)
	if err != nil {
		v.add("number", err.Error())
	}
	numberType := optional(in.NumberType)
	if numberType != nil && tooLong(*numberType, MaxNumberTypeLength) {
		v.add("number_type", "number_type is too long")
	}
	return PhoneInput{Number: number, NumberType: numberType, ContactID: in.ContactID}, v.orNil()
}

// List returns the phones of one owned contact, or of every owned contact
// when contactID is nil.
func (s *PhoneService) List(ctx context.Context, owner uuid.UUID, contactID *uuid.UUID) ([]domain.Phone, error) {
	phones := []domain.Phone{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contactID != nil {
			if _, err := ownedContact(tx, owner, *contactID); err != nil {
				return err
			}
			return tx.Where("contact_id = ?", *contactID).Order("created_at, id").Find(&phones).Error
		}
		return tx.Joins("JOIN contacts ON contacts.id = phones.contact_id").
			Where("contacts.user_id = ?", owner).
			Order("phones.created_at, phones.id").
			Find(&phones).Error
	})
	if err != nil {
		return nil, err
	}
	return phones, nil
}

// Get returns a phone whose contact is owned by owner.
func (s *PhoneService) Get(ctx context.Context, owner, id uuid.UUID) (*domain.Phone, error) {
	var phone *domain.Phone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		phone, err = ownedPhone(tx, owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return phone, nil
}

// Create adds a phone to an owned contact.
func (s *PhoneService) Create(ctx context.Context, owner, contactID uuid.UUID, in PhoneInput) (*domain.Phone, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	phone := &domain.Phone{ContactID: contactID, Number: in.Number, NumberType: in.NumberType}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedContact(tx, owner, contactID); err != nil {
			return err
		}
		return tx.Create(phone).Error
	})
	if err != nil {
		return nil, err
	}
	return phone, nil
}

// Update replaces number and type; a new ContactID must also be owned.
func (s *PhoneService) Update(ctx context.Context, owner, id uuid.UUID, in PhoneInput) (*domain.Phone, error) {
	if _, err := in.normalize(); err != nil {
		return nil, err
	}
	return s.modify(ctx, owner, id, func(*domain.Phone) PhoneInput { return in })
}

// Patch merges p into the stored phone inside the writing transaction.
func (s *PhoneService) Patch(ctx context.Context, owner, id uuid.UUID, p PhonePatch) (*domain.Phone, error) {
	return s.modify(ctx, owner, id, func(stored *domain.Phone) PhoneInput {
		in := PhoneInput{Number: stored.Number, NumberType: stored.NumberType, ContactID: p.ContactID}
		if p.Number != nil {
			in.Number = *p.Number
		}
		if p.NumberType != nil {
			in.NumberType = p.NumberType
		}
		return in
	})
}

func (s *PhoneService) modify(ctx context.Context, owner, id uuid.UUID, next func(*domain.Phone) PhoneInput) (*domain.Phone, error) {
	var phone *domain.Phone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if phone, err = lockedPhone(tx, owner, id); err != nil {
			return err
		}
		in, err := next(phone).normalize()
		if err != nil {
			return err
		}
		if in.ContactID != nil && *in.ContactID != phone.ContactID {
			if _, err := ownedContact(tx, owner, *in.ContactID); err != nil {
				return err
			}
			phone.ContactID = *in.ContactID
		}
		phone.Number = in.Number
		phone.NumberType = in.NumberType
		return tx.Model(phone).Select("contact_id", "number", "number_type", "updated_at").Updates(phone).Error
	})
	if err != nil {
		return nil, err
	}
	return phone, nil
}

// Delete removes a phone whose contact is owned by owner.
func (s *PhoneService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phone, err := ownedPhone(tx, owner, id)
		if err != nil {
			return err
		}
		return tx.Delete(phone).Error
	})
}
