package matchers

import (
	"strings"
	"unicode"
)

// MatchesWholeWord returns true if the keyword appears as a complete word in the text.
// Word boundaries are defined by non-alphanumeric characters or start/end of string.
func MatchesWholeWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(text[idx:], keyword)
		if pos == -1 {
			return false
		}
		pos += idx

		// Check left boundary
		leftOk := pos == 0 || !isWordChar(lastRune(text[:pos]))

		// Check right boundary
		endPos := pos + len(keyword)
		rightOk := endPos == len(text) || !isWordChar(firstRune(text[endPos:]))

		if leftOk && rightOk {
			return true
		}

		idx = pos + 1
		if idx >= len(text) {
			return false
		}
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

// CollapseSpaces trims the text and replaces every whitespace run with one space.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Tokens splits lowercased text on anything that is not a letter or digit.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
