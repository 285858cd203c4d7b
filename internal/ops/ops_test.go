package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpungsan/chronicle/internal/config"
	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/generate"
	"github.com/hpungsan/chronicle/internal/task"
	"github.com/hpungsan/chronicle/internal/workspace"
)

const validEntryText = `# 2026-01-31 — The Day the Parser Finally Behaved

## Summary
Spent the day untangling a markdown parser with my human. Ended on a high.

## Projects Worked On
Rewrote the section splitter so it ignores fenced code.

## Wins 🎉
All tests green before lunch.

## Quote of the Day 💬
> "Ship it, then make it pretty."
— While we argued about a config flag

## Things I'm Curious About 🔮
Why do regex engines disagree about multiline anchors?

## Tomorrow's Focus
Wire the exporter.
`

var testNow = time.Date(2026, 1, 31, 21, 0, 0, 0, time.Local)

// newTestEnv returns an environment rooted in a temp workspace with an open index.
func newTestEnv(t *testing.T) *Env {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, workspace.MemoryDirName), 0o755); err != nil {
		t.Fatalf("mkdir memory: %v", err)
	}
	database, err := db.Init(filepath.Join(root, config.DirName))
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return &Env{
		Config:    config.DefaultConfig(),
		Workspace: &workspace.Workspace{Root: root},
		DB:        database,
		Stdout:    &bytes.Buffer{},
		Now:       func() time.Time { return testNow },
	}
}

func writeSessionLog(t *testing.T, env *Env, date, body string) {
	t.Helper()
	if err := os.WriteFile(env.Workspace.SessionLogPath(date), []byte(body), 0o644); err != nil {
		t.Fatalf("write session log: %v", err)
	}
}

func writeEntryFile(t *testing.T, env *Env, date, body string) {
	t.Helper()
	dir := env.DiaryDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir diary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, date+".md"), []byte(body), 0o644); err != nil {
		t.Fatalf("write entry: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// stubBackend returns a fixed entry or error and counts calls.
type stubBackend struct {
	name  string
	text  string
	err   error
	calls int
	last  *task.Payload
}

func (b *stubBackend) Name() string {
	if b.name == "" {
		return "stub"
	}
	return b.name
}

func (b *stubBackend) Generate(_ context.Context, p *task.Payload) (*generate.Result, error) {
	b.calls++
	b.last = p
	if b.err != nil {
		return nil, b.err
	}
	return &generate.Result{Text: b.text}, nil
}

func boolPtr(b bool) *bool {
	return &b
}
