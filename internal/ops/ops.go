// Package ops implements the diary operations shared by the CLI and the MCP server.
package ops

import (
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/hpungsan/chronicle/internal/config"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/workspace"
)

// Pagination limits for List.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// DefaultSubtitle appears under the document title on the cover.
const DefaultSubtitle = "A Digital Mind's Journal"

// Env carries the per-process resources every operation needs.
type Env struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	DB        *sql.DB // nil disables the index
	Templates entry.Templates
	Logger    *slog.Logger
	Stdout    io.Writer
	Now       func() time.Time
}

// DiaryDir returns the absolute diary directory.
func (e *Env) DiaryDir() string {
	return e.Config.ResolveDiaryDir(e.Workspace.Root)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *Env) templates() entry.Templates {
	if len(e.Templates) > 0 {
		return e.Templates
	}
	return entry.DefaultTemplates()
}

func (e *Env) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return io.Discard
}

// Today returns the local date in YYYY-MM-DD form.
func (e *Env) Today() string {
	return e.now().Format(entry.DateLayout)
}

// Pagination describes a page of results.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}
