package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range EnvVars {
		t.Setenv(name, "")
	}
}

func mkMemory(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, MemoryDirName), 0755))
}

func writeLog(t *testing.T, ws *Workspace, date, body string) {
	t.Helper()
	mkMemory(t, ws.Root)
	require.NoError(t, os.WriteFile(ws.SessionLogPath(date), []byte(body), 0600))
}

func TestFind(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		clearEnv(t)
		ws := Find("/explicit", t.TempDir(), "")
		require.Equal(t, "/explicit", ws.Root)
	})

	t.Run("env var with memory dir", func(t *testing.T) {
		clearEnv(t)
		envRoot := t.TempDir()
		mkMemory(t, envRoot)
		t.Setenv("OPENCLAW_WORKSPACE", envRoot)

		ws := Find("", t.TempDir(), "")
		require.Equal(t, envRoot, ws.Root)
	})

	t.Run("env var without memory dir is skipped", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AGENT_WORKSPACE", t.TempDir())
		cwd := t.TempDir()

		ws := Find("", cwd, "")
		require.Equal(t, cwd, ws.Root)
	})

	t.Run("home candidate", func(t *testing.T) {
		clearEnv(t)
		home := t.TempDir()
		mkMemory(t, filepath.Join(home, ".openclaw", "workspace"))

		ws := Find("", t.TempDir(), home)
		require.Equal(t, filepath.Join(home, ".openclaw", "workspace"), ws.Root)
	})

	t.Run("cwd before home", func(t *testing.T) {
		clearEnv(t)
		home := t.TempDir()
		mkMemory(t, filepath.Join(home, "clawd"))
		cwd := t.TempDir()
		mkMemory(t, cwd)

		ws := Find("", cwd, home)
		require.Equal(t, cwd, ws.Root)
	})

	t.Run("fallback to cwd", func(t *testing.T) {
		clearEnv(t)
		cwd := t.TempDir()
		ws := Find("", cwd, t.TempDir())
		require.Equal(t, cwd, ws.Root)
	})
}

func TestSessionLog(t *testing.T) {
	ws := &Workspace{Root: t.TempDir()}

	got, err := ws.SessionLog("2026-01-31", 100)
	require.NoError(t, err)
	require.Empty(t, got, "missing log should be empty")

	writeLog(t, ws, "2026-01-31", strings.Repeat("x", 30))
	got, err = ws.SessionLog("2026-01-31", 10)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("x", 10)+"\n\n[... truncated for context ...]", got)

	got, err = ws.SessionLog("2026-01-31", 100)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("x", 30), got)
}

func TestRecentSessions(t *testing.T) {
	ws := &Workspace{Root: t.TempDir()}
	writeLog(t, ws, "2026-01-31", "today")
	writeLog(t, ws, "2026-01-30", strings.Repeat("y", 20))
	writeLog(t, ws, "2026-01-28", "too old")

	anchor := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	got, err := ws.RecentSessions(anchor, 2, 5)
	require.NoError(t, err)
	require.Equal(t, "## 2026-01-31\ntoday\n\n## 2026-01-30\nyyyyy\n[... truncated ...]", got)

	got, err = ws.RecentSessions(anchor.AddDate(0, 0, -10), 2, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadTruncated_MultiByte(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.md")
	require.NoError(t, os.WriteFile(path, []byte("héllo wörld"), 0600))

	got, err := ReadTruncated(path, 4, "…")
	require.NoError(t, err)
	require.Equal(t, "héll…", got)
}
