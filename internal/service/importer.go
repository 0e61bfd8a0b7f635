package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"contact_system/internal/domain"
	"contact_system/internal/vcard"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Import report limits.
const (
	MaxWarnings      = 10
	MaxWarningLength = 100
)

var uploadExtensions = []string{".vcf", ".vcard"}

// Report summarises one bulk import.
type Report struct {
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

func (r *Report) warn(msg string) {
	if len(r.Warnings) < MaxWarnings {
		r.Warnings = append(r.Warnings, truncate(msg, MaxWarningLength))
	}
}

// AllowedUploadName reports whether a file name carries a vCard extension.
func AllowedUploadName(name string) bool {
	return slices.Contains(uploadExtensions, strings.ToLower(filepath.Ext(name)))
}

// record is a parsed, validated vCard ready to be written.
type record struct {
	name     string
	email    *string
	phones   []domain.Phone
	warnings []string
}

// planRecord turns a block into a record without touching storage. A nil
// record with a nil error means the block has no usable name.
func planRecord(block vcard.Block) (*record, error) {
	card, err := vcard.Parse(block)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(card.Name)
	if name == "" {
		return nil, nil
	}
	if tooLong(name, MaxNameLength) {
		return nil, fmt.Errorf("name %q is too long", truncate(name, 30))
	}
	rec := &record{name: name}
	if email := strings.TrimSpace(card.Email); email != "" {
		if !tooLong(email, MaxEmailLength) && ValidEmail(email) {
			rec.email = &email
		} else {
			rec.warnings = append(rec.warnings, fmt.Sprintf("%s: dropped invalid email %q", name, email))
		}
	}
	for _, p := range card.Phones {
		number, err := NormalizePhone(p.Number)
		if err != nil {
			rec.warnings = append(rec.warnings, fmt.Sprintf("%s: invalid phone %q", name, p.Number))
			continue
		}
		phone := domain.Phone{Number: number}
		if p.Type != "" && !tooLong(p.Type, MaxNumberTypeLength) {
			label := p.Type
			phone.NumberType = &label
		}
		rec.phones = append(rec.phones, phone)
	}
	return rec, nil
}

// ImportService loads vCard uploads into an owner's contacts.
type ImportService struct {
	db *gorm.DB
}

// NewImportService constructs ImportService.
func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// Import decodes raw, creates a contact per new vCard record and commits the
// whole batch at once. Bad records are skipped and reported; only a decode
// failure or a failed commit fails the call.
func (s *ImportService) Import(ctx context.Context, owner uuid.UUID, raw []byte) (*Report, error) {
	text, err := vcard.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	blocks := vcard.Split(text)
	log := logrus.WithField("user_id", owner)

	// Parse everything before touching the database.
	plans := make([]plan, len(blocks))
	for i, block := range blocks {
		plans[i].rec, plans[i].err = planRecord(block)
	}

	report := &Report{Warnings: []string{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, p := range plans {
			s.importRecord(tx, owner, i, p, report, log)
		}
		return nil
	})
	if err != nil {
		log.WithFields(logrus.Fields{
			"blocks": len(blocks),
			"error":  err.Error(),
		}).Error("vcf import rolled back")
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	log.WithFields(logrus.Fields{
		"blocks":   len(blocks),
		"created":  report.Created,
		"skipped":  report.Skipped,
		"warnings": len(report.Warnings),
	}).Info("vcf import committed")
	return report, nil
}

// plan is the outcome of parsing one block.
type plan struct {
	rec *record
	err error
}

func (s *ImportService) importRecord(tx *gorm.DB, owner uuid.UUID, i int, p plan, report *Report, log *logrus.Entry) {
	fail := func(err error) {
		report.Skipped++
		report.warn(fmt.Sprintf("record %d: %v", i+1, err))
		log.WithFields(logrus.Fields{"record": i + 1, "error": err.Error()}).Warn("vcf record skipped")
	}

	if p.err != nil {
		fail(p.err)
		return
	}
	if p.rec == nil {
		report.Skipped++
		return
	}

	savepoint := fmt.Sprintf("vcf_record_%d", i)
	if err := tx.SavePoint(savepoint).Error; err != nil {
		fail(err)
		return
	}
	created, err := persistRecord(tx, owner, p.rec)
	if err != nil {
		if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
			log.WithField("error", rbErr.Error()).Error("rollback to savepoint failed")
		}
		fail(err)
		return
	}
	if !created {
		report.Skipped++
		return
	}
	report.Created++
	for _, w := range p.rec.warnings {
		report.warn(w)
	}
}

// persistRecord writes rec unless the owner already has a contact with the
// same name (and the same email when rec has one).
func persistRecord(tx *gorm.DB, owner uuid.UUID, rec *record) (bool, error) {
	query := tx.Model(&domain.Contact{}).Where("user_id = ? AND name = ?", owner, rec.name)
	if rec.email != nil {
		query = query.Where("email = ?", *rec.email)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	contact := &domain.Contact{UserID: owner, Name: rec.name, Email: rec.email}
	if err := tx.Omit(clause.Associations).Create(contact).Error; err != nil {
		return false, err
	}
	for _, phone := range rec.phones {
		phone.ContactID = contact.ID
		if err := tx.Create(&phone).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}
