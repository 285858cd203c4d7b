package render

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/chronicle/internal/errors"
)

const richBody = `# 2026-01-31 — The Parser Finally Behaved 🎉

## Summary
A long day of **careful** work on the *markdown* walker, with ` + "`code spans`" + ` too.

## Projects Worked On
- Renderer
  - nested bullet
- Exporter

1. first
2. second

## Quote of the Day 💬
> "Ship it, then polish it."
> — someone wise

## Notes
| Task | Status |
|:-----|-------:|
| tables | done |
| emoji 🚀 | dropped |

` + "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```" + `

---

Final words → with an arrow.
`

func testDoc(dates ...string) *Document {
	doc := &Document{
		Title:       "Chronicle",
		Subtitle:    "A Digital Mind's Journal",
		Author:      "Cami",
		Theme:       "velvet",
		GeneratedAt: time.Date(2026, 1, 31, 21, 30, 0, 0, time.UTC),
		Archives: []Section{
			{Title: "Quote Hall of Fame 💬", Blurb: "Memorable lines.", Body: "### 2026-01-31\n> Ship it.\n"},
		},
	}
	for _, d := range dates {
		doc.Entries = append(doc.Entries, Entry{
			Date:      d,
			Title:     "The Parser Finally Behaved 🎉",
			Highlight: "Tables render in the PDF.",
			Body:      richBody,
		})
	}
	return doc
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  string
	}{
		{"single", []string{"2026-01-31"}, "January 31, 2026"},
		{"same year", []string{"2026-01-30", "2026-02-03"}, "January 30 – February 03, 2026"},
		{"across years", []string{"2025-12-30", "2026-01-02"}, "December 2025 – January 2026"},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, testDoc(tt.dates...).DateRange())
		})
	}
}

func TestCountLabel(t *testing.T) {
	require.Equal(t, "1 Entry", testDoc("2026-01-31").CountLabel())
	require.Equal(t, "2 Entries", testDoc("2026-01-30", "2026-01-31").CountLabel())
}

func TestThemeNames(t *testing.T) {
	require.Equal(t, []string{"midnight", "parchment", "velvet"}, ThemeNames())

	th, ok := LookupTheme("")
	require.True(t, ok)
	require.Equal(t, "velvet", th.Name)
	require.Equal(t, "#c9a227", th.Accent.Hex())

	_, ok = LookupTheme("neon")
	require.False(t, ok)
}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "already.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name    string
		format  string
		path    string
		wantErr string
	}{
		{"pdf ok", FormatPDF, filepath.Join(dir, "out.pdf"), ""},
		{"pdf uppercase ext", FormatPDF, filepath.Join(dir, "OUT.PDF"), ""},
		{"html htm", FormatHTML, filepath.Join(dir, "out.htm"), ""},
		{"markdown ok", FormatMarkdown, filepath.Join(dir, "out.md"), ""},
		{"wrong ext", FormatPDF, filepath.Join(dir, "out.html"), "must have .pdf extension"},
		{"empty path", FormatPDF, "", "output path is required"},
		{"unknown format", "docx", filepath.Join(dir, "out.docx"), "unsupported format"},
		{"directory", FormatPDF, sub, "is a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOutput(tt.format, tt.path)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrValidation))
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckOutput_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link.pdf")
	require.NoError(t, os.Symlink(target, link))

	err := CheckOutput(FormatPDF, link)
	require.Error(t, err)
	require.Contains(t, err.Error(), "symlink")
}

func TestWrite_PDF(t *testing.T) {
	for _, theme := range ThemeNames() {
		t.Run(theme, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Chronicle.pdf")
			doc := testDoc("2026-01-30", "2026-01-31")
			doc.Theme = theme

			require.NoError(t, Write(doc, FormatPDF, path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
		})
	}
}

func TestWrite_OverwritesWithoutStaleFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Chronicle.pdf")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	require.NoError(t, Write(testDoc("2026-01-31"), FormatPDF, path))
	require.NoError(t, Write(testDoc("2026-01-31"), FormatPDF, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWrite_FailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")

	doc := testDoc("2026-01-31")
	doc.Theme = "neon"
	err := Write(doc, FormatPDF, path)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrValidation))

	err = Write(testDoc(), FormatPDF, path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestWrite_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chronicle.html")
	doc := testDoc("2026-01-30", "2026-01-31")
	doc.Entries[0].Title = "<script>alert(1)</script>"

	require.NoError(t, Write(doc, FormatHTML, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	require.Contains(t, html, "--accent: #c9a227;")
	require.Contains(t, html, `<a href="#entry-2">The Parser Finally Behaved</a>`)
	require.Contains(t, html, "<strong>careful</strong>")
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "Saturday")
	require.Contains(t, html, "January 30 – January 31, 2026")
	require.Contains(t, html, "Generated on January 31, 2026 at 21:30")
	require.NotContains(t, html, "<script>alert(1)</script>")
	require.NotContains(t, html, "The Parser Finally Behaved 🎉</h1>", "title line is shown in the header, not the body")
}

func TestRender_Markdown(t *testing.T) {
	data, err := Render(testDoc("2026-01-31"), FormatMarkdown)
	require.NoError(t, err)
	out := string(data)
	require.True(t, strings.HasPrefix(out, "# Chronicle\n\n*A Digital Mind's Journal*\n\nJanuary 31, 2026 · 1 Entry\n"))
	require.Contains(t, out, "# 2026-01-31 — The Parser Finally Behaved 🎉")
	require.Contains(t, out, "# Quote Hall of Fame 💬\n\n*Memorable lines.*\n\n### 2026-01-31")
}

func TestPDFText(t *testing.T) {
	require.Equal(t, "Wins ", pdfText("Wins 🎉"))
	require.Equal(t, "a -> b – c … “q”", pdfText("a → b – c … “q”"))
	require.Equal(t, "I was happy", pdfProse("I was 🎉 happy"))
	require.Equal(t, "café", pdfText("café"))
	require.Equal(t, "    x", pdfText("\tx"))
}

func TestBodyWithoutTitle(t *testing.T) {
	require.Equal(t, "## Summary\nok\n", bodyWithoutTitle("# 2026-01-31 — Title\n\n## Summary\nok\n"))
	require.Equal(t, "## Summary\nok\n", bodyWithoutTitle("## Summary\nok\n"))
	require.Equal(t, "# Not a dated title\n", bodyWithoutTitle("# Not a dated title\n"))
}

func TestPlainTitle(t *testing.T) {
	require.Equal(t, "Quote Hall of Fame", plainTitle("Quote Hall of Fame 💬"))
	require.Equal(t, "Decision Archaeology", plainTitle("Decision Archaeology 🏛️"))
	require.Equal(t, "🎉", plainTitle("🎉"))
}

func TestInlineSpans(t *testing.T) {
	src := []byte("plain **bold *both*** and `code`")
	doc := parseMarkdown(src)
	spans := inlineSpans(doc.FirstChild(), src, span{}, nil)

	// merge adjacent runs of the same style; the parser may split text nodes
	var styled []string
	prev := ""
	for _, s := range spans {
		key := s.style()
		if s.code {
			key = "C"
		}
		if len(styled) > 0 && key == prev {
			styled[len(styled)-1] += s.text
			continue
		}
		styled = append(styled, key+":"+s.text)
		prev = key
	}
	require.Equal(t, []string{":plain ", "B:bold ", "BI:both", ": and ", "C:code"}, styled)
	require.True(t, spans[len(spans)-1].code)
}

func TestPrepare_WritesNothingUntilCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendered", "2026-01-31.html")

	data, err := Prepare(testDoc("2026-01-31"), FormatHTML, path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.NoDirExists(t, filepath.Dir(path))

	require.NoError(t, Commit(path, data))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, written)
}

func TestCommit_Failure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Commit(filepath.Join(blocker, "out.pdf"), []byte("%PDF-"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrRender), "got %v", err)
}
