package entry

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeHeading reduces a heading to a comparison key:
// ornaments and punctuation dropped, lowercased, whitespace collapsed.
func normalizeHeading(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == ';':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r), r == '/', r == '-', r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(b.String(), " "))
}

// stripOrnaments removes emoji and other pictographic symbols, keeping text.
func stripOrnaments(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isOrnament(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(b.String(), " "))
}

func isOrnament(r rune) bool {
	switch {
	case r == 0xFE0F, r == 0xFE0E, r == 0x200D:
		return true
	case r >= 0x1F000:
		return true
	case unicode.Is(unicode.So, r) && r >= 0x2600:
		return true
	}
	return false
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Truncate cuts text to at most maxChars runes, appending marker when cut.
// maxChars <= 0 disables truncation.
func Truncate(text string, maxChars int, marker string) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i] + marker
		}
		n++
	}
	return text
}

// Ellipsize shortens text to at most maxChars runes, ending in "..." when cut.
func Ellipsize(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	if maxChars <= 3 {
		return strings.Repeat(".", maxChars)
	}
	return Truncate(text, maxChars-3, "") + "..."
}
