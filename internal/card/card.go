package card

import (
	"strings"
	"unicode"
)

// Card is one easy/hard word pair produced from a source line.
// Field order is the JSON key order of the converter's output.
type Card struct {
	// Easy is the first token of the line, word-capitalized
	Easy string `json:"easy"`

	// Hard is the remainder of the line, word-capitalized (may hold several words)
	Hard string `json:"hard"`
}

// LineStatus reports what ParseLine made of a line.
type LineStatus int

const (
	LineOK          LineStatus = iota // a card was produced
	LineBlank                         // whitespace only, skipped silently
	LineNoDelimiter                   // no whitespace between easy and hard
	LineEmptyField                    // easy or hard is empty after trimming
)

// String returns a short name for the status.
func (s LineStatus) String() string {
	switch s {
	case LineOK:
		return "ok"
	case LineBlank:
		return "blank"
	case LineNoDelimiter:
		return "no_delimiter"
	case LineEmptyField:
		return "empty_field"
	default:
		return "unknown"
	}
}

// ParseLine turns one source line into a Card.
// The line is trimmed, then split at its first whitespace run: the first part
// is the easy term and the trimmed remainder is the hard term. Both are
// capitalized per word. The Card is only meaningful when the status is LineOK.
func ParseLine(line string) (Card, LineStatus) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Card{}, LineBlank
	}

	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return Card{}, LineNoDelimiter
	}

	easy := strings.TrimSpace(line[:i])
	hard := strings.TrimSpace(line[i:])
	if easy == "" || hard == "" {
		return Card{}, LineEmptyField
	}

	return Card{
		Easy: Capitalize(easy),
		Hard: Capitalize(hard),
	}, LineOK
}

// Valid reports whether both terms are non-empty.
func (c Card) Valid() bool {
	return strings.TrimSpace(c.Easy) != "" && strings.TrimSpace(c.Hard) != ""
}
