package ops

import (
	"context"
	stderrors "errors"

	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
)

var errIndexUnavailable = stderrors.New("entry index is not open")

// ReindexOutput contains the result of the Reindex operation.
type ReindexOutput struct {
	Dir     string `json:"dir"`
	Indexed int    `json:"indexed"`
}

// Reindex rebuilds the entry index from the entry files in the diary directory.
// Task ids cannot be recovered from the files and are cleared.
func Reindex(ctx context.Context, env *Env) (*ReindexOutput, error) {
	if env.DB == nil {
		return nil, errors.NewInternal(errIndexUnavailable)
	}

	dir := env.DiaryDir()
	stored, err := loadEntries(dir, "", "")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("reindex")
	}

	records := make([]db.EntryRecord, 0, len(stored))
	for _, s := range stored {
		records = append(records, entryRecord(env, s.Date, s.Text, s.Path))
	}

	if err := db.ReplaceEntries(env.DB, records); err != nil {
		return nil, err
	}
	env.logger().Info("rebuilt entry index", "dir", dir, "entries", len(records))
	return &ReindexOutput{Dir: dir, Indexed: len(records)}, nil
}

func entryRecord(env *Env, date, text, path string) db.EntryRecord {
	templates := env.templates()
	now := env.now().Unix()
	return db.EntryRecord{
		Date:      date,
		Title:     entry.DisplayTitle(text, date, templates),
		Summary:   entry.Ellipsize(entry.Summary(text, templates), 280),
		WordCount: entry.WordCount(text),
		CharCount: entry.CountChars(text),
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
