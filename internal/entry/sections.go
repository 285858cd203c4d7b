package entry

import (
	"regexp"
	"slices"
	"strings"
)

// Section represents a parsed section boundary.
type Section struct {
	Header        string // Full header line "## Wins 🎉"
	Level         int    // Number of leading '#'
	HeaderName    string // Just the name part "Wins 🎉"
	Name          string // Template name if matched, empty for custom
	HeaderStart   int    // Byte offset of header start
	HeaderEnd     int    // Byte offset after header line (excluding \n)
	ContentStart  int    // Byte offset where content starts
	ContentEnd    int    // Byte offset where content ends (before next section or EOF)
	IsPlaceholder bool   // True if content is empty or only placeholder text
}

// Content returns the section body from text, trimmed.
func (s Section) Content(text string) string {
	if s.ContentStart >= s.ContentEnd {
		return ""
	}
	return strings.TrimSpace(text[s.ContentStart:s.ContentEnd])
}

// headerPattern matches markdown headers (h1-h6) at the start of a line.
// Groups: full match, hash symbols, header text
var headerPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+([^\n]+?)[ \t]*$`)

// fencePattern matches fenced code block delimiters (``` or ~~~) at the start of a line,
// allowing 0-3 spaces of indentation.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

// fencedRanges returns byte offset ranges [start, end) for fenced code blocks in text.
// A closing fence must use the same character and be at least as long as the opening fence.
// An unclosed fence runs to the end of the text.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen int
	var openStart int
	inFence := false

	for _, match := range matches {
		fenceChars := text[match[2]:match[3]]
		char := fenceChars[0]
		fenceLen := len(fenceChars)

		if !inFence {
			openChar = char
			openLen = fenceLen
			openStart = match[0]
			inFence = true
		} else if char == openChar && fenceLen >= openLen {
			ranges = append(ranges, [2]int{openStart, match[1]})
			inFence = false
		}
	}
	if inFence {
		ranges = append(ranges, [2]int{openStart, len(text)})
	}
	return ranges
}

func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

// placeholderPatterns are common placeholder values (case-insensitive, after trimming).
var placeholderPatterns = []string{
	"(pending)",
	"(none)",
	"(empty)",
	"(tbd)",
	"(n/a)",
	"tbd",
	"n/a",
	"none",
	"pending",
	"-",
}

// ParseSections finds all markdown section headers and their boundaries.
// Headers inside fenced code blocks are ignored. Headings are matched against
// templates to fill Section.Name.
// Returns nil if no sections found.
func ParseSections(text string, templates Templates) []Section {
	allMatches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(allMatches) == 0 {
		return nil
	}

	fences := fencedRanges(text)
	matches := allMatches
	if len(fences) > 0 {
		matches = make([][]int, 0, len(allMatches))
		for _, m := range allMatches {
			if !insideFence(m[0], fences) {
				matches = append(matches, m)
			}
		}
		if len(matches) == 0 {
			return nil
		}
	}

	sections := make([]Section, len(matches))
	for i, match := range matches {
		// match indices: [fullStart, fullEnd, hashStart, hashEnd, nameStart, nameEnd]
		headerName := text[match[4]:match[5]]

		contentStart := match[1]
		if contentStart < len(text) && text[contentStart] == '\n' {
			contentStart++
		}

		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}

		content := ""
		if contentStart < contentEnd {
			content = text[contentStart:contentEnd]
		}

		sections[i] = Section{
			Header:        text[match[0]:match[1]],
			Level:         match[3] - match[2],
			HeaderName:    headerName,
			Name:          templates.Match(headerName),
			HeaderStart:   match[0],
			HeaderEnd:     match[1],
			ContentStart:  contentStart,
			ContentEnd:    contentEnd,
			IsPlaceholder: isPlaceholderContent(content),
		}
	}

	return sections
}

// FindSection finds a section by name (synonym-aware, case-insensitive).
// First resolves name against templates, then falls back to an exact
// case-insensitive match on the header name.
func FindSection(sections []Section, templates Templates, name string) *Section {
	if len(sections) == 0 {
		return nil
	}

	if canonical := templates.Match(name); canonical != "" {
		for i := range sections {
			if sections[i].Name == canonical {
				return &sections[i]
			}
		}
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	for i := range sections {
		if strings.ToLower(strings.TrimSpace(sections[i].HeaderName)) == nameLower {
			return &sections[i]
		}
	}

	return nil
}

// SectionNames returns the list of header names from parsed sections.
func SectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.HeaderName
	}
	return names
}

func isPlaceholderContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return true
	}
	return slices.Contains(placeholderPatterns, strings.ToLower(trimmed))
}
