// Package render lays out diary documents as PDF, HTML or markdown.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hpungsan/chronicle/internal/errors"
)

// Output formats.
const (
	FormatPDF      = "pdf"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Formats lists the supported output formats.
var Formats = []string{FormatPDF, FormatHTML, FormatMarkdown}

// Extension returns the file extension required for format.
func Extension(format string) string {
	switch format {
	case FormatPDF:
		return ".pdf"
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	}
	return ""
}

// Document is one rendered diary: a cover, one section per entry and the
// archive pages.
type Document struct {
	Title       string
	Subtitle    string
	Author      string
	Theme       string
	GeneratedAt time.Time
	Entries     []Entry
	Archives    []Section
}

// Entry is one day's diary entry.
type Entry struct {
	Date      string // YYYY-MM-DD
	Title     string
	Highlight string
	Body      string // markdown
}

// Section is an archive page such as the quote hall of fame.
type Section struct {
	Title string
	Blurb string
	Body  string // markdown
}

// Validate checks the document can be rendered.
func (d *Document) Validate() error {
	if len(d.Entries) == 0 {
		return errors.NewValidation("document has no entries")
	}
	if _, ok := LookupTheme(d.Theme); !ok {
		return errors.NewUnsupported("theme", d.Theme, ThemeNames())
	}
	for _, e := range d.Entries {
		if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
			return errors.NewValidation(fmt.Sprintf("entry date %q is not YYYY-MM-DD", e.Date))
		}
	}
	return nil
}

// DateRange describes the span of the document's entries, e.g.
// "January 30 – January 31, 2026".
func (d *Document) DateRange() string {
	if len(d.Entries) == 0 {
		return ""
	}
	first, last := d.Entries[0].Date, d.Entries[len(d.Entries)-1].Date
	ft, err1 := time.Parse(time.DateOnly, first)
	lt, err2 := time.Parse(time.DateOnly, last)
	if err1 != nil || err2 != nil {
		return first + " → " + last
	}
	switch {
	case first == last:
		return ft.Format("January 02, 2006")
	case ft.Year() == lt.Year():
		return ft.Format("January 02") + " – " + lt.Format("January 02, 2006")
	default:
		return ft.Format("January 2006") + " – " + lt.Format("January 2006")
	}
}

// CountLabel returns "1 Entry" or "N Entries".
func (d *Document) CountLabel() string {
	if len(d.Entries) == 1 {
		return "1 Entry"
	}
	return fmt.Sprintf("%d Entries", len(d.Entries))
}

func (d *Document) theme() *Theme {
	t, ok := LookupTheme(d.Theme)
	if !ok {
		t = themes[DefaultTheme]
	}
	return t
}

func (d *Document) generatedLabel() string {
	return "Generated on " + d.GeneratedAt.Format("January 02, 2006 at 15:04")
}

// dateParts splits a date into weekday, "January 02" and year.
func dateParts(date string) (weekday, monthDay, year string) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", date, ""
	}
	return t.Format("Monday"), t.Format("January 02"), t.Format("2006")
}

var titleLine = regexp.MustCompile(`^\s*#\s+\d{4}-\d{2}-\d{2}[^\n]*\n?`)

// bodyWithoutTitle drops the leading "# YYYY-MM-DD — Title" line, which the
// entry header already shows.
func bodyWithoutTitle(body string) string {
	return strings.TrimLeft(titleLine.ReplaceAllString(body, ""), "\n")
}

// plainTitle strips pictographs from a title for the contents page.
func plainTitle(title string) string {
	clean := strings.Map(func(r rune) rune {
		if (r >= 0x1F300 && r <= 0x1FAFF) || r == 0xFE0F || r == 0x200D {
			return -1
		}
		return r
	}, title)
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return title
	}
	return clean
}
