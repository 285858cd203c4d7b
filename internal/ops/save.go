package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/fileutil"
)

// Memory integration formats.
const (
	MemoryFormatSummary = "summary"
	MemoryFormatLink    = "link"
	MemoryFormatFull    = "full"
)

// dailyHeading marks a daily memory file that already links its entry.
const dailyHeading = "## 📜 Daily Chronicle"

// SaveInput contains parameters for the SaveEntry operation.
type SaveInput struct {
	Date         string
	Text         string
	TaskID       string // payload id the entry answers, if known
	NoPersistent bool   // skip archive files
	DryRun       bool
}

// SaveOutput contains the result of the SaveEntry operation.
type SaveOutput struct {
	Date      string   `json:"date"`
	Path      string   `json:"path"`
	Title     string   `json:"title"`
	Words     int      `json:"words"`
	Archives  []string `json:"archives,omitempty"`   // archive files appended to
	DailyPath string   `json:"daily_path,omitempty"` // daily memory file appended to
	Indexed   bool     `json:"indexed"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// SaveEntry persists a written entry: the entry file itself, the daily
// memory link, archive sections and the index row. Only the entry file is
// required to succeed; the index is best effort.
func SaveEntry(ctx context.Context, env *Env, input SaveInput) (*SaveOutput, error) {
	if !entry.IsDate(input.Date) {
		return nil, errors.NewValidation(fmt.Sprintf("date must be YYYY-MM-DD, got %q", input.Date))
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewValidation("entry text is required")
	}
	text += "\n"
	if err := checkMemoryFormat(env.Config.MemoryIntegration.Format); err != nil {
		return nil, err
	}

	templates := env.templates()
	dir := env.DiaryDir()
	out := &SaveOutput{
		Date:   input.Date,
		Path:   filepath.Join(dir, input.Date+".md"),
		Title:  entry.DisplayTitle(text, input.Date, templates),
		Words:  entry.WordCount(text),
		DryRun: input.DryRun,
	}

	excerpts := entry.ArchiveExcerpts(text, templates)
	if !input.NoPersistent {
		for _, ex := range excerpts {
			out.Archives = append(out.Archives, filepath.Join(dir, ex.Template.Archive.File))
		}
	}

	if input.DryRun {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("save")
	}

	if err := fileutil.WriteAtomic(out.Path, []byte(text), 0o644); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("writing entry: %w", err))
	}
	env.logger().Info("saved entry", "path", out.Path, "words", out.Words)

	daily, err := appendDailyMemory(env, input.Date, text, out.Path)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("updating daily memory: %w", err))
	}
	out.DailyPath = daily

	if !input.NoPersistent {
		for _, ex := range excerpts {
			path := filepath.Join(dir, ex.Template.Archive.File)
			block := "\n### " + input.Date + "\n" + ex.Content + "\n"
			if err := fileutil.AppendNoFollow(path, ex.Template.Archive.Header(), []byte(block)); err != nil {
				return nil, errors.NewInternal(fmt.Errorf("appending to %s: %w", ex.Template.Archive.File, err))
			}
			env.logger().Debug("appended archive", "path", path)
		}
	}

	out.Indexed = indexEntry(env, input.Date, text, out.Path, input.TaskID)
	return out, nil
}

// appendDailyMemory adds the chronicle section to the workspace's daily
// memory file. Returns the file path, or "" when integration is off or the
// section already exists.
func appendDailyMemory(env *Env, date, text, entryPath string) (string, error) {
	mi := env.Config.MemoryIntegration
	if !mi.Enabled || !mi.AppendToDaily {
		return "", nil
	}

	path := env.Workspace.SessionLogPath(date)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if strings.Contains(string(existing), dailyHeading) {
		env.logger().Debug("daily memory already links entry", "path", path)
		return "", nil
	}

	block, err := dailyBlock(env, mi.Format, date, text, entryPath)
	if err != nil {
		return "", err
	}
	if err := fileutil.AppendNoFollow(path, "# "+date+"\n\n*Daily memory log*\n", []byte(block)); err != nil {
		return "", err
	}
	return path, nil
}

func dailyBlock(env *Env, format, date, text, entryPath string) (string, error) {
	switch format {
	case MemoryFormatLink:
		link := entryPath
		if rel, err := filepath.Rel(env.Workspace.Root, entryPath); err == nil && !strings.HasPrefix(rel, "..") {
			link = filepath.ToSlash(rel)
		}
		return fmt.Sprintf("\n\n%s\n[View diary entry](%s)\n", dailyHeading, link), nil
	case MemoryFormatFull:
		return fmt.Sprintf("\n\n%s\n%s\n", dailyHeading, strings.TrimSpace(text)), nil
	case MemoryFormatSummary, "":
		var b strings.Builder
		b.WriteString("\n\n" + dailyHeading + "\n")
		if title := entry.Title(text); title != "" {
			b.WriteString("**" + title + "**\n\n")
		}
		b.WriteString(entry.Summary(text, env.templates()) + "\n")
		return b.String(), nil
	default:
		return "", checkMemoryFormat(format)
	}
}

func checkMemoryFormat(format string) error {
	switch format {
	case MemoryFormatSummary, MemoryFormatLink, MemoryFormatFull, "":
		return nil
	}
	return errors.NewUnsupported("memory_integration.format", format,
		[]string{MemoryFormatSummary, MemoryFormatLink, MemoryFormatFull})
}

func indexEntry(env *Env, date, text, path, taskID string) bool {
	if env.DB == nil {
		return false
	}
	rec := entryRecord(env, date, text, path)
	if taskID != "" {
		rec.TaskID = &taskID
	}
	if err := db.UpsertEntry(env.DB, &rec); err != nil {
		env.logger().Warn("entry not indexed", "date", date, "error", err)
		return false
	}
	return true
}
