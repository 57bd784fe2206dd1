package patterns

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxKeyLength bounds the length of a normalized key.
const MaxKeyLength = 100

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9 ]`)
	spaceRuns   = regexp.MustCompile(` +`)
)

// Normalize canonicalizes a line-item description into a lookup key:
// lowercase, keep only [a-z0-9] and whitespace, collapse whitespace runs,
// trim, and truncate to MaxKeyLength characters.
// Any Unicode space (no-break space included) counts as whitespace.
func Normalize(description string) string {
	key := strings.Map(asciiSpace, strings.ToLower(description))
	key = nonKeyChars.ReplaceAllString(key, "")
	key = spaceRuns.ReplaceAllString(key, " ")
	key = strings.TrimSpace(key)
	if len(key) > MaxKeyLength {
		// Re-trim so a cut landing on a space stays idempotent.
		key = strings.TrimSpace(key[:MaxKeyLength])
	}
	return key
}

// asciiSpace folds every whitespace rune, and the byte order mark, to ' '.
func asciiSpace(r rune) rune {
	if unicode.IsSpace(r) || r == '\ufeff' {
		return ' '
	}
	return r
}
