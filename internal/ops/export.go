package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/render"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Output     string // default: <diary_dir>/<pdf_name> (extension follows format)
	Format     string // default: config format
	Theme      string // default: config theme
	From       string // inclusive YYYY-MM-DD, optional
	To         string // inclusive YYYY-MM-DD, optional
	NoArchives bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	Theme     string `json:"theme"`
	Count     int    `json:"count"`
	Archives  int    `json:"archives"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
	Bytes     int64  `json:"bytes"`
}

// storedEntry is an entry file found in the diary directory.
type storedEntry struct {
	Date string
	Path string
	Text string
}

// Export renders every stored entry in range, plus the archives, into one document.
func Export(ctx context.Context, env *Env, input ExportInput) (*ExportOutput, error) {
	for _, d := range []string{input.From, input.To} {
		if d != "" && !entry.IsDate(d) {
			return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", d))
		}
	}
	if input.From != "" && input.To != "" && input.From > input.To {
		return nil, errors.NewValidation(fmt.Sprintf("--from %s is after --to %s", input.From, input.To))
	}

	format := firstNonEmpty(input.Format, env.Config.Format, render.FormatPDF)
	theme := firstNonEmpty(input.Theme, env.Config.Theme, render.DefaultTheme)
	output := input.Output
	if output == "" {
		output = defaultExportPath(env, format)
	}
	if err := render.CheckOutput(format, output); err != nil {
		return nil, err
	}

	stored, err := loadEntries(env.DiaryDir(), input.From, input.To)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, errors.NewValidation(fmt.Sprintf("no diary entries found in %s", env.DiaryDir()))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}

	templates := env.templates()
	doc := &render.Document{
		Title:       env.Config.Title,
		Subtitle:    DefaultSubtitle,
		Author:      env.Config.Author,
		Theme:       theme,
		GeneratedAt: env.now(),
	}
	dates := make([]string, 0, len(stored))
	for _, s := range stored {
		doc.Entries = append(doc.Entries, render.Entry{
			Date:      s.Date,
			Title:     entry.DisplayTitle(s.Text, s.Date, templates),
			Highlight: entry.Highlight(s.Text),
			Body:      s.Text,
		})
		dates = append(dates, s.Date)
	}
	if !input.NoArchives {
		archives, err := loadArchives(env)
		if err != nil {
			return nil, err
		}
		doc.Archives = archives
	}

	if err := render.Write(doc, format, output); err != nil {
		return nil, err
	}

	out := &ExportOutput{
		Path:      output,
		Format:    format,
		Theme:     theme,
		Count:     len(doc.Entries),
		Archives:  len(doc.Archives),
		FirstDate: dates[0],
		LastDate:  dates[len(dates)-1],
	}
	if info, err := os.Stat(output); err == nil {
		out.Bytes = info.Size()
	}
	env.logger().Info("exported diary", "path", output, "entries", out.Count, "archives", out.Archives)

	recordRender(env, output, format, theme, dates)
	return out, nil
}

func defaultExportPath(env *Env, format string) string {
	name := env.Config.PDFName
	if name == "" {
		name = "Chronicle.pdf"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + render.Extension(format)
	return filepath.Join(env.DiaryDir(), name)
}

// loadEntries returns the YYYY-MM-DD.md files in dir within [from, to],
// oldest first. A missing directory yields no entries.
func loadEntries(dir, from, to string) ([]storedEntry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewInternal(fmt.Errorf("reading diary directory: %w", err))
	}

	var out []storedEntry
	for _, f := range files {
		name := f.Name()
		if !f.Type().IsRegular() || filepath.Ext(name) != ".md" {
			continue
		}
		date := strings.TrimSuffix(name, ".md")
		if !entry.IsDate(date) {
			continue
		}
		if (from != "" && date < from) || (to != "" && date > to) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("reading %s: %w", name, err))
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, storedEntry{Date: date, Path: path, Text: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// loadArchives returns a document section for every archive file with
// entries. The file header is replaced by the section title and blurb.
func loadArchives(env *Env) ([]render.Section, error) {
	var out []render.Section
	for _, t := range env.templates().Archived() {
		a := t.Archive
		path := filepath.Join(env.DiaryDir(), a.File)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.NewInternal(fmt.Errorf("reading %s: %w", a.File, err))
		}
		body := strings.TrimPrefix(string(data), a.Header())
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, render.Section{
			Title: a.PlainTitle(),
			Blurb: a.Blurb,
			Body:  strings.TrimSpace(body) + "\n",
		})
	}
	return out, nil
}

// recordRender adds a produced document to the render history. Best effort.
func recordRender(env *Env, path, format, theme string, dates []string) {
	if env.DB == nil {
		return
	}
	now := env.now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		env.logger().Warn("render not recorded", "error", err)
		return
	}
	rec := &db.RenderRecord{
		ID:         id.String(),
		Path:       path,
		Format:     format,
		Theme:      theme,
		EntryCount: len(dates),
		CreatedAt:  now.Unix(),
	}
	if len(dates) > 0 {
		rec.FirstDate = dates[0]
		rec.LastDate = dates[len(dates)-1]
	}
	if info, err := os.Stat(path); err == nil {
		rec.Bytes = info.Size()
	}
	if err := db.RecordRender(env.DB, rec); err != nil {
		env.logger().Warn("render not recorded", "path", path, "error", err)
	}
}
