package ops

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/workspace"
)

const contextSeparator = "\n\n---\n\n"

// GatherContext assembles the generation content for date from the
// workspace: that day's session log, the recent logs ending on that day, and
// an excerpt of every existing archive. Returns a validation error when there
// is no session data at all.
func GatherContext(env *Env, date string) (string, error) {
	if !entry.IsDate(date) {
		return "", errors.NewValidation("date must be YYYY-MM-DD, got \"" + date + "\"")
	}
	day, _ := time.ParseInLocation(entry.DateLayout, date, time.Local)
	cfg := env.Config

	var parts []string

	today, err := env.Workspace.SessionLog(date, cfg.TodayLogMaxChars)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if today != "" {
		parts = append(parts, "## Today's Session Log ("+date+"):\n"+today)
	}

	recent, err := env.Workspace.RecentSessions(day, cfg.RecentDays, cfg.RecentLogMaxChars)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if recent != "" {
		parts = append(parts, "## Recent Session Context:\n"+recent)
	}

	if len(parts) == 0 {
		return "", errors.NewMissingContent(date)
	}

	dir := env.DiaryDir()
	for _, t := range env.templates().Archived() {
		path := filepath.Join(dir, t.Archive.File)
		content, err := workspace.ReadTruncated(path, cfg.ArchiveMaxChars, "\n[... truncated ...]")
		if err != nil {
			env.logger().Warn("skipping unreadable archive", "path", path, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		label := t.Archive.ContextLabel
		if label == "" {
			label = t.Archive.PlainTitle()
		}
		parts = append(parts, "## "+label+":\n"+content)
	}

	env.logger().Debug("gathered context", "date", date, "parts", len(parts), "chars", entry.CountChars(strings.Join(parts, contextSeparator)))
	return strings.Join(parts, contextSeparator), nil
}
