package entry

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the entry date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	titlePattern     = regexp.MustCompile(`(?m)^#\s+\d{4}-\d{2}-\d{2}\s*[—–-]\s*([^#\n]+)$`)
	punctOnlyPattern = regexp.MustCompile(`^[\s—–-]*$`)
	sentenceSplit    = regexp.MustCompile(`[.!?]`)
	boldPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	highlightPattern = regexp.MustCompile(`(?i)^today'?s?\s*highlight$`)
)

// archiveMinChars is the length an archived section must exceed to be kept.
const archiveMinChars = 10

// Title returns the creative title from a "# YYYY-MM-DD — Title" heading, or "".
func Title(text string) string {
	m := titlePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := strings.TrimSpace(m[1])
	if punctOnlyPattern.MatchString(title) {
		return ""
	}
	return title
}

// DisplayTitle returns a title for tables of contents and document headers.
// Falls back to the first sentence of the summary, then to the weekday.
func DisplayTitle(text, date string, templates Templates) string {
	if t := stripOrnaments(Title(text)); t != "" {
		return t
	}

	if sec := FindSection(ParseSections(text, templates), templates, "Summary"); sec != nil && !sec.IsPlaceholder {
		para := firstParagraph(sec.Content(text))
		first := strings.TrimSpace(sentenceSplit.Split(para, 2)[0])
		if first != "" {
			return Ellipsize(stripOrnaments(first), 60)
		}
	}

	if d, err := time.Parse(DateLayout, date); err == nil {
		return d.Format("Monday") + "'s Reflections"
	}
	return "Journal Entry"
}

// Summary returns the Summary section, or the first body line after a
// heading, or a generic sentence.
func Summary(text string, templates Templates) string {
	sections := ParseSections(text, templates)
	if sec := FindSection(sections, templates, "Summary"); sec != nil && !sec.IsPlaceholder {
		return sec.Content(text)
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		for j := i + 1; j < len(lines) && j < i+5; j++ {
			l := strings.TrimSpace(lines[j])
			if l != "" && !strings.HasPrefix(l, "#") {
				return l
			}
		}
	}
	return "Diary entry generated."
}

// Highlight returns the first paragraph of a "Today's Highlight" section with
// bold markers removed, at most 200 characters. Returns "" when absent.
func Highlight(text string) string {
	for _, sec := range ParseSections(text, nil) {
		if !highlightPattern.MatchString(stripOrnaments(sec.HeaderName)) {
			continue
		}
		para := firstParagraph(sec.Content(text))
		para = boldPattern.ReplaceAllString(para, "$1")
		return Ellipsize(para, 200)
	}
	return ""
}

// ArchiveExcerpt is a section's content destined for its archive file.
type ArchiveExcerpt struct {
	Template SectionTemplate
	Content  string
}

// ArchiveExcerpts returns the content of each archived section present in
// text, skipping sections with 10 characters or fewer.
func ArchiveExcerpts(text string, templates Templates) []ArchiveExcerpt {
	sections := ParseSections(text, templates)

	var out []ArchiveExcerpt
	for _, t := range templates.Archived() {
		sec := FindSection(sections, templates, t.Name)
		if sec == nil {
			continue
		}
		content := sec.Content(text)
		if CountChars(content) <= archiveMinChars {
			continue
		}
		out = append(out, ArchiveExcerpt{Template: t, Content: content})
	}
	return out
}

// Compose builds an entry in the standard layout from a title and section bodies
// keyed by template name.
func Compose(date, title string, bodies map[string]string, templates Templates) string {
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}
	var b strings.Builder
	b.WriteString("# " + date + " — " + strings.TrimSpace(title) + "\n")
	for _, t := range templates {
		b.WriteString("\n## " + t.Heading() + "\n")
		b.WriteString(strings.TrimSpace(bodies[t.Name]) + "\n")
	}
	return b.String()
}

// IsDate reports whether s is a valid YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func firstParagraph(s string) string {
	return strings.TrimSpace(strings.SplitN(s, "\n\n", 2)[0])
}
