package vcard

import "strings"

// Block holds the content lines of one BEGIN:VCARD..END:VCARD record,
// without the delimiters themselves.
type Block []string

// Split cuts text into vCard blocks. Lines outside a block are dropped, and
// so is a trailing block that never sees its END:VCARD.
func Split(text string) []Block {
	var (
		blocks  []Block
		current Block
		inBlock bool
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.EqualFold(trimmed, "BEGIN:VCARD"):
			// A nested BEGIN restarts the block; the unterminated one is lost.
			current = Block{}
			inBlock = true
		case strings.EqualFold(trimmed, "END:VCARD"):
			if inBlock {
				blocks = append(blocks, current)
			}
			current = nil
			inBlock = false
		case inBlock:
			current = append(current, line)
		}
	}
	return blocks
}

// unfold joins folded continuation lines (leading space or tab) and
// quoted-printable soft line breaks (trailing '=').
func unfold(block Block) []string {
	var out []string
	for _, line := range block {
		if len(out) > 0 {
			last := out[len(out)-1]
			if line != "" && (line[0] == ' ' || line[0] == '\t') {
				out[len(out)-1] = last + line[1:]
				continue
			}
			if isQuotedPrintable(last) && strings.HasSuffix(last, "=") {
				out[len(out)-1] = strings.TrimSuffix(last, "=") + strings.TrimLeft(line, " \t")
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isQuotedPrintable(line string) bool {
	head, _, ok := strings.Cut(line, ":")
	return ok && strings.Contains(strings.ToUpper(head), "QUOTED-PRINTABLE")
}
