package db

import (
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/chronicle/internal/errors"
)

// EntryRecord is one indexed diary entry.
type EntryRecord struct {
	Date      string  `json:"date"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	WordCount int     `json:"word_count"`
	CharCount int     `json:"char_count"`
	Path      string  `json:"path"`
	TaskID    *string `json:"task_id,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// RenderRecord is one produced document.
type RenderRecord struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Format     string `json:"format"`
	Theme      string `json:"theme"`
	EntryCount int    `json:"entry_count"`
	FirstDate  string `json:"first_date,omitempty"`
	LastDate   string `json:"last_date,omitempty"`
	Bytes      int64  `json:"bytes"`
	CreatedAt  int64  `json:"created_at"`
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const upsertEntrySQL = `
	INSERT INTO entries (
		date, title, summary, word_count, char_count, path, task_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		word_count = excluded.word_count,
		char_count = excluded.char_count,
		path = excluded.path,
		task_id = COALESCE(excluded.task_id, entries.task_id),
		updated_at = excluded.updated_at
`

// UpsertEntry inserts an entry or replaces the one indexed for the same
// date, keeping its original created_at.
func UpsertEntry(db *sql.DB, e *EntryRecord) error {
	return upsertEntry(db, e)
}

func upsertEntry(x execer, e *EntryRecord) error {
	_, err := x.Exec(upsertEntrySQL,
		e.Date, e.Title, e.Summary, e.WordCount, e.CharCount, e.Path,
		toNullString(e.TaskID), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ReplaceEntries rebuilds the entry index from records in one transaction.
func ReplaceEntries(db *sql.DB, records []EntryRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return errors.NewInternal(err)
	}
	for i := range records {
		if err := upsertEntry(tx, &records[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetEntry retrieves the entry indexed for date.
func GetEntry(db *sql.DB, date string) (*EntryRecord, error) {
	row := db.QueryRow(`
		SELECT date, title, summary, word_count, char_count, path, task_id, created_at, updated_at
		FROM entries
		WHERE date = ?
	`, date)

	e, err := scanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(date)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ListEntries returns indexed entries newest first, plus the total count.
func ListEntries(db *sql.DB, limit, offset int) ([]EntryRecord, int, error) {
	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(`
		SELECT date, title, summary, word_count, char_count, path, task_id, created_at, updated_at
		FROM entries
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []EntryRecord
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// RecordRender stores a produced document in the render history.
func RecordRender(db *sql.DB, r *RenderRecord) error {
	_, err := db.Exec(`
		INSERT INTO renders (
			id, path, format, theme, entry_count, first_date, last_date, bytes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Path, r.Format, r.Theme, r.EntryCount,
		toNullString(nilIfEmpty(r.FirstDate)), toNullString(nilIfEmpty(r.LastDate)),
		r.Bytes, r.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LatestRender returns the most recent render, or nil when none exists.
func LatestRender(db *sql.DB) (*RenderRecord, error) {
	var r RenderRecord
	var first, last sql.NullString
	err := db.QueryRow(`
		SELECT id, path, format, theme, entry_count, first_date, last_date, bytes, created_at
		FROM renders
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&r.ID, &r.Path, &r.Format, &r.Theme, &r.EntryCount, &first, &last, &r.Bytes, &r.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	r.FirstDate = first.String
	r.LastDate = last.String
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*EntryRecord, error) {
	var e EntryRecord
	var taskID sql.NullString
	err := s.Scan(&e.Date, &e.Title, &e.Summary, &e.WordCount, &e.CharCount, &e.Path,
		&taskID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.TaskID = fromNullString(taskID)
	return &e, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
