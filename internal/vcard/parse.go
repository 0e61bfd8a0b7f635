package vcard

import (
	"fmt"
	"io"
	"mime/quotedprintable"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// Phone is one TEL entry as written in the card.
type Phone struct {
	Number string
	Type   string // mobile, home, work, fax, another label, or empty
}

// Card is the part of a vCard record the importer cares about.
type Card struct {
	Name   string
	Email  string
	Phones []Phone
}

type property struct {
	name   string
	params map[string][]string
	types  []string
	value  string
}

// Parse extracts the name, first email and all phones from a block. The name
// is FN when present, otherwise given and family name from N.
func Parse(block Block) (Card, error) {
	var (
		card       Card
		structured string
	)
	for _, line := range unfold(block) {
		prop, ok := parseLine(line)
		if !ok {
			continue
		}
		switch prop.name {
		case "FN":
			if card.Name != "" {
				continue
			}
			v, err := prop.text()
			if err != nil {
				return Card{}, err
			}
			card.Name = strings.TrimSpace(unescape(v))
		case "N":
			if structured != "" {
				continue
			}
			v, err := prop.text()
			if err != nil {
				return Card{}, err
			}
			structured = nameFromParts(v)
		case "EMAIL":
			if card.Email != "" {
				continue
			}
			v, err := prop.text()
			if err != nil {
				return Card{}, err
			}
			card.Email = strings.TrimSpace(strings.TrimPrefix(unescape(v), "mailto:"))
		case "TEL":
			v, err := prop.text()
			if err != nil {
				return Card{}, err
			}
			number := strings.TrimSpace(unescape(v))
			if len(number) > 4 && strings.EqualFold(number[:4], "tel:") {
				number = number[4:]
			}
			card.Phones = append(card.Phones, Phone{Number: number, Type: phoneType(prop.types)})
		}
	}
	if card.Name == "" {
		card.Name = structured
	}
	return card, nil
}

// parseLine splits "group.NAME;PARAM=a,b;BARE:value".
func parseLine(line string) (property, bool) {
	head, value, ok := cutUnquoted(line, ':')
	if !ok {
		return property{}, false
	}
	parts := strings.Split(head, ";")
	name := strings.ToUpper(strings.TrimSpace(parts[0]))
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	prop := property{name: name, params: map[string][]string{}, value: value}
	for _, p := range parts[1:] {
		key, val, hasValue := strings.Cut(p, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		if !hasValue {
			// vCard 2.1 bare parameter such as TEL;CELL;VOICE
			if key == "QUOTED-PRINTABLE" || key == "BASE64" {
				prop.params["ENCODING"] = append(prop.params["ENCODING"], key)
				continue
			}
			prop.types = append(prop.types, strings.ToLower(key))
			continue
		}
		for _, v := range strings.Split(strings.Trim(val, `"`), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if key == "TYPE" {
				prop.types = append(prop.types, strings.ToLower(v))
				continue
			}
			prop.params[key] = append(prop.params[key], strings.ToUpper(v))
		}
	}
	return prop, true
}

// text returns the value with any transfer encoding removed. Quoted-printable
// bytes are read in the property's CHARSET; the rest of the line was already
// turned into UTF-8 by Decode.
func (p property) text() (string, error) {
	for _, enc := range p.params["ENCODING"] {
		if enc == "QUOTED-PRINTABLE" {
			b, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(p.value)))
			if err != nil {
				return "", fmt.Errorf("%s: bad quoted-printable value: %w", p.name, err)
			}
			var charset string
			if cs := p.params["CHARSET"]; len(cs) > 0 {
				charset = cs[0]
			}
			return toUTF8(b, charset), nil
		}
	}
	return p.value, nil
}

// toUTF8 decodes b from charset. Unknown charsets and output that is still not
// UTF-8 fall back to ISO-8859-1, which maps every byte.
func toUTF8(b []byte, charset string) string {
	if charset != "" && !strings.EqualFold(charset, "UTF-8") {
		if enc, err := htmlindex.Get(charset); err == nil {
			if out, err := enc.NewDecoder().Bytes(b); err == nil && utf8.Valid(out) {
				return string(out)
			}
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func cutUnquoted(s string, sep byte) (string, string, bool) {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// nameFromParts builds "Given Family" from N:Family;Given;Middle;Prefix;Suffix.
func nameFromParts(v string) string {
	parts := splitUnescaped(v, ';')
	var family, given string
	if len(parts) > 0 {
		family = strings.TrimSpace(unescape(parts[0]))
	}
	if len(parts) > 1 {
		given = strings.TrimSpace(unescape(parts[1]))
	}
	return strings.TrimSpace(given + " " + family)
}

func splitUnescaped(s string, sep byte) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// phoneType reduces TEL type tags to a single label. Fax wins over the
// location tags because "HOME,FAX" is a fax line.
func phoneType(tags []string) string {
	has := map[string]bool{}
	var custom string
	for _, t := range tags {
		switch t {
		case "cell", "mobile", "iphone":
			has["mobile"] = true
		case "fax", "home", "work":
			has[t] = true
		case "voice", "pref", "msg", "text", "internet", "x-internet", "video":
		default:
			if custom == "" {
				custom = strings.TrimPrefix(t, "x-")
			}
		}
	}
	for _, label := range []string{"fax", "mobile", "work", "home"} {
		if has[label] {
			return label
		}
	}
	return custom
}
