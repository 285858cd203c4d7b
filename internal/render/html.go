package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/document.html
var templateFS embed.FS

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html"))

type htmlEntry struct {
	Entry
	Anchor     string
	PlainTitle string
	Weekday    string
	MonthDay   string
	Year       string
	HTML       template.HTML
}

type htmlSection struct {
	Section
	HTML template.HTML
}

type htmlPage struct {
	Doc       *Document
	Theme     *Theme
	Entries   []htmlEntry
	Archives  []htmlSection
	Generated string
}

func renderHTML(doc *Document) ([]byte, error) {
	page := htmlPage{
		Doc:       doc,
		Theme:     doc.theme(),
		Generated: doc.generatedLabel(),
	}
	for i, e := range doc.Entries {
		body, err := markdownHTML(bodyWithoutTitle(e.Body))
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Date, err)
		}
		weekday, monthDay, year := dateParts(e.Date)
		page.Entries = append(page.Entries, htmlEntry{
			Entry:      e,
			Anchor:     fmt.Sprintf("entry-%d", i+1),
			PlainTitle: plainTitle(e.Title),
			Weekday:    weekday,
			MonthDay:   monthDay,
			Year:       year,
			HTML:       body,
		})
	}
	for _, s := range doc.Archives {
		body, err := markdownHTML(s.Body)
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", s.Title, err)
		}
		page.Archives = append(page.Archives, htmlSection{Section: s, HTML: body})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("html template: %w", err)
	}
	return buf.Bytes(), nil
}

// markdownHTML converts markdown to HTML. Raw HTML in the source is omitted
// by goldmark's default (safe) renderer.
func markdownHTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
