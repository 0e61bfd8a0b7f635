package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the entity exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a unique value (username, email) is already taken.
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized means credentials or recovery answers did not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDecode means an upload could not be read as text.
	ErrDecode = errors.New("cannot decode upload")
	// ErrTransaction means the final commit of a unit of work failed.
	ErrTransaction = errors.New("transaction failed")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records a field problem; the first message per field wins.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// orNil returns nil when no field failed so callers can `return v.orNil()`.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
