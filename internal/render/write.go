package render

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/fileutil"
)

// CheckOutput validates an output path for format before any work is done.
// The path must carry the format's extension and must not be a directory
// or a symlink.
func CheckOutput(format, path string) error {
	if !slices.Contains(Formats, format) {
		return errors.NewUnsupported("format", format, Formats)
	}
	if strings.TrimSpace(path) == "" {
		return errors.NewValidation("output path is required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	want := Extension(format)
	if ext != want && !(format == FormatHTML && ext == ".htm") {
		return errors.NewValidation(fmt.Sprintf("output path %s must have %s extension for %s output", path, want, format))
	}
	if info, err := os.Lstat(path); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewValidation(fmt.Sprintf("output path %s must not be a symlink", path))
		}
		if info.IsDir() {
			return errors.NewValidation(fmt.Sprintf("output path %s is a directory", path))
		}
	}
	return nil
}

// Render lays out doc in format and returns the file contents.
func Render(doc *Document, format string) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return renderPDF(doc)
	case FormatHTML:
		return renderHTML(doc)
	case FormatMarkdown:
		return renderMarkdownDoc(doc), nil
	}
	return nil, errors.NewUnsupported("format", format, Formats)
}

// Write renders doc in memory and then replaces path atomically. An
// existing file is overwritten; on any failure nothing is left at path
// except the previous file. Layout and write failures are RenderErrors.
func Write(doc *Document, format, path string) error {
	data, err := Prepare(doc, format, path)
	if err != nil {
		return err
	}
	return Commit(path, data)
}

// Prepare checks path and renders doc in memory without touching the
// filesystem. Callers with other writes to make do those between Prepare
// and Commit, so a failed run leaves no document behind.
func Prepare(doc *Document, format, path string) ([]byte, error) {
	if err := CheckOutput(format, path); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	data, err := Render(doc, format)
	if err != nil {
		return nil, errors.NewRender(path, err)
	}
	return data, nil
}

// Commit atomically replaces path with rendered data.
func Commit(path string, data []byte) error {
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return errors.NewRender(path, err)
	}
	return nil
}

// renderMarkdownDoc concatenates the entries and archives into one markdown file.
func renderMarkdownDoc(doc *Document) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", doc.Subtitle)
	}
	fmt.Fprintf(&b, "%s · %s\n", doc.DateRange(), doc.CountLabel())

	for _, e := range doc.Entries {
		b.WriteString("\n---\n\n")
		b.WriteString(strings.TrimSpace(e.Body))
		b.WriteString("\n")
	}
	for _, s := range doc.Archives {
		b.WriteString("\n---\n\n")
		fmt.Fprintf(&b, "# %s\n\n", s.Title)
		if s.Blurb != "" {
			fmt.Fprintf(&b, "*%s*\n\n", s.Blurb)
		}
		b.WriteString(strings.TrimSpace(s.Body))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n---\n\n*%s*\n", doc.generatedLabel())
	return []byte(b.String())
}
