// Package vcard reads bulk contact exports in the vCard text format.
//
// Everything here is free of I/O: callers hand in the uploaded bytes and get
// back plain records which they validate and persist themselves.
package vcard

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrDecode is returned when the upload is neither UTF-8 nor ISO-8859-1 text.
var ErrDecode = errors.New("vcard: cannot decode upload as text")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode interprets raw as UTF-8 and falls back to ISO-8859-1.
func Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(out), nil
}
