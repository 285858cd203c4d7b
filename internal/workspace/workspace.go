// Package workspace locates the agent workspace and reads its session logs.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/chronicle/internal/entry"
)

// MemoryDirName is the workspace subdirectory holding daily session logs.
const MemoryDirName = "memory"

// EnvVars are checked in order for an explicit workspace root.
var EnvVars = []string{"CHRONICLE_WORKSPACE", "OPENCLAW_WORKSPACE", "AGENT_WORKSPACE"}

// Workspace is an agent workspace root.
type Workspace struct {
	Root string
}

// Find returns the workspace to use. An explicit root wins. Otherwise the
// environment variables, cwd, ~/clawd and ~/.openclaw/workspace are tried in
// order, taking the first one containing a memory directory. Falls back to cwd.
func Find(explicit, cwd, home string) *Workspace {
	if explicit != "" {
		return &Workspace{Root: explicit}
	}

	for _, name := range EnvVars {
		if v := os.Getenv(name); v != "" && hasMemoryDir(v) {
			return &Workspace{Root: v}
		}
	}

	candidates := []string{cwd}
	if home != "" {
		candidates = append(candidates,
			filepath.Join(home, "clawd"),
			filepath.Join(home, ".openclaw", "workspace"),
		)
	}
	for _, c := range candidates {
		if c != "" && hasMemoryDir(c) {
			return &Workspace{Root: c}
		}
	}
	return &Workspace{Root: cwd}
}

func hasMemoryDir(root string) bool {
	info, err := os.Stat(filepath.Join(root, MemoryDirName))
	return err == nil && info.IsDir()
}

// MemoryDir returns the directory holding daily session logs.
func (w *Workspace) MemoryDir() string {
	return filepath.Join(w.Root, MemoryDirName)
}

// SessionLogPath returns the path of the session log for date (YYYY-MM-DD).
func (w *Workspace) SessionLogPath(date string) string {
	return filepath.Join(w.MemoryDir(), date+".md")
}

// SessionLog reads the log for date, truncated to maxChars with a marker.
// Returns "" without error when the log does not exist.
func (w *Workspace) SessionLog(date string, maxChars int) (string, error) {
	return ReadTruncated(w.SessionLogPath(date), maxChars, "\n\n[... truncated for context ...]")
}

// RecentSessions reads the logs of the days days ending at anchor (inclusive),
// newest first, each truncated to maxChars and headed with "## date".
// Returns "" when none exist.
func (w *Workspace) RecentSessions(anchor time.Time, days, maxChars int) (string, error) {
	var parts []string
	for i := 0; i < days; i++ {
		date := anchor.AddDate(0, 0, -i).Format(entry.DateLayout)
		content, err := ReadTruncated(w.SessionLogPath(date), maxChars, "\n[... truncated ...]")
		if err != nil {
			return "", err
		}
		if content == "" {
			continue
		}
		parts = append(parts, "## "+date+"\n"+content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// ReadTruncated reads a file and truncates it to maxChars runes, appending
// marker when cut. A missing file yields "" and no error.
func ReadTruncated(path string, maxChars int, marker string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return entry.Truncate(string(data), maxChars, marker), nil
}
