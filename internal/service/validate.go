package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Column limits shared by the API and the importer.
const (
	MaxNameLength       = 100
	MaxEmailLength      = 100
	MaxAddressLength    = 255
	MaxNotesLength      = 500
	MaxPhoneLength      = 20
	MaxNumberTypeLength = 50
	MaxQuestionLength   = 255
)

var (
	errEmptyPhone   = errors.New("number is required")
	errInvalidPhone = errors.New("number must contain 3 to 15 digits and only + - . ( ) or spaces")
)

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// NormalizePhone trims a phone number and checks its characters. Numbers too
// long for the column are stored without separators.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errEmptyPhone
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", errInvalidPhone
		}
	}
	if digits < 3 || digits > 15 {
		return "", errInvalidPhone
	}
	if len(s) > MaxPhoneLength {
		s = strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '+' {
				return r
			}
			return -1
		}, s)
	}
	return s, nil
}

// optional trims an optional string and maps blank to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
