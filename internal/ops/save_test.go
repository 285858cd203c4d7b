package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/errors"
)

func TestSaveEntry(t *testing.T) {
	env := newTestEnv(t)

	out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText, TaskID: "task-1"})
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	wantPath := filepath.Join(env.Workspace.Root, "memory", "diary", "2026-01-31.md")
	if out.Path != wantPath {
		t.Errorf("Path = %q, want %q", out.Path, wantPath)
	}
	if readFile(t, wantPath) != validEntryText {
		t.Error("entry file content differs from input")
	}
	if out.Title != "The Day the Parser Finally Behaved" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.Words == 0 {
		t.Error("Words = 0")
	}
	if len(out.Archives) != 2 {
		t.Errorf("Archives = %v, want quotes and curiosity", out.Archives)
	}
	if !out.Indexed {
		t.Error("Indexed = false")
	}

	quotes := readFile(t, filepath.Join(env.DiaryDir(), "quotes.md"))
	if !strings.HasPrefix(quotes, "# Quote Hall of Fame 💬\n\nMemorable quotes from my human.\n\n---\n\n") {
		t.Errorf("quotes header = %q", quotes)
	}
	if !strings.Contains(quotes, "\n### 2026-01-31\n> \"Ship it, then make it pretty.\"") {
		t.Errorf("quotes body = %q", quotes)
	}

	curiosity := readFile(t, filepath.Join(env.DiaryDir(), "curiosity.md"))
	if !strings.Contains(curiosity, "## Active\n\n") {
		t.Errorf("curiosity preamble missing: %q", curiosity)
	}

	if fileExists(filepath.Join(env.DiaryDir(), "decisions.md")) {
		t.Error("decisions.md created for an entry without decisions")
	}

	rec, err := db.GetEntry(env.DB, "2026-01-31")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if !strings.HasPrefix(rec.Summary, "Spent the day untangling") {
		t.Errorf("indexed Summary = %q", rec.Summary)
	}
}

func TestSaveEntry_ArchivesAppendedOncePerSave(t *testing.T) {
	env := newTestEnv(t)

	for range 2 {
		if _, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText}); err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
	}

	quotes := readFile(t, filepath.Join(env.DiaryDir(), "quotes.md"))
	if n := strings.Count(quotes, "# Quote Hall of Fame"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}
	if n := strings.Count(quotes, "### 2026-01-31"); n != 2 {
		t.Errorf("quote appended %d times, want once per save (2)", n)
	}
}

func TestSaveEntry_NoPersistent(t *testing.T) {
	env := newTestEnv(t)

	out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText, NoPersistent: true})
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if len(out.Archives) != 0 {
		t.Errorf("Archives = %v, want none", out.Archives)
	}
	if fileExists(filepath.Join(env.DiaryDir(), "quotes.md")) {
		t.Error("quotes.md written with NoPersistent")
	}
}

func TestSaveEntry_DailyMemory(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"summary", []string{"## 📜 Daily Chronicle\n**The Day the Parser Finally Behaved**\n\nSpent the day untangling"}},
		{"link", []string{"## 📜 Daily Chronicle\n[View diary entry](memory/diary/2026-01-31.md)\n"}},
		{"full", []string{"## 📜 Daily Chronicle\n# 2026-01-31 — The Day the Parser Finally Behaved\n", "## Tomorrow's Focus\nWire the exporter.\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			env := newTestEnv(t)
			env.Config.MemoryIntegration.Enabled = true
			env.Config.MemoryIntegration.AppendToDaily = true
			env.Config.MemoryIntegration.Format = tt.format

			out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
			if err != nil {
				t.Fatalf("SaveEntry() error = %v", err)
			}
			if out.DailyPath == "" {
				t.Fatal("DailyPath empty, want daily memory updated")
			}

			daily := readFile(t, out.DailyPath)
			if !strings.HasPrefix(daily, "# 2026-01-31\n\n*Daily memory log*\n\n\n## 📜 Daily Chronicle") {
				t.Errorf("daily file = %q", daily)
			}
			for _, w := range tt.want {
				if !strings.Contains(daily, w) {
					t.Errorf("daily file missing %q:\n%s", w, daily)
				}
			}
		})
	}
}

func TestSaveEntry_DailyMemoryNeverDuplicated(t *testing.T) {
	env := newTestEnv(t)
	env.Config.MemoryIntegration.Enabled = true
	env.Config.MemoryIntegration.AppendToDaily = true
	writeSessionLog(t, env, "2026-01-31", "# 2026-01-31\n\nSession notes.\n")

	for i := range 3 {
		out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
		if err != nil {
			t.Fatalf("SaveEntry() #%d error = %v", i, err)
		}
		if i > 0 && out.DailyPath != "" {
			t.Errorf("save #%d appended to daily memory again", i)
		}
	}

	daily := readFile(t, env.Workspace.SessionLogPath("2026-01-31"))
	if n := strings.Count(daily, "Daily Chronicle"); n != 1 {
		t.Errorf("chronicle section appears %d times, want 1", n)
	}
	if !strings.HasPrefix(daily, "# 2026-01-31\n\nSession notes.\n") {
		t.Errorf("existing log was not preserved: %q", daily)
	}
}

func TestSaveEntry_DailyMemoryDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)

	out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if out.DailyPath != "" || fileExists(env.Workspace.SessionLogPath("2026-01-31")) {
		t.Error("daily memory written while integration is disabled")
	}
}

func TestSaveEntry_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input SaveInput
	}{
		{"bad date", SaveInput{Date: "2026-13-01", Text: validEntryText}},
		{"empty text", SaveInput{Date: "2026-01-31", Text: " \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SaveEntry(t.Context(), env, tt.input)
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}

	env.Config.MemoryIntegration.Format = "tweet"
	_, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("error = %v, want VALIDATION_ERROR for unknown memory format", err)
	}
	if fileExists(filepath.Join(env.DiaryDir(), "2026-01-31.md")) {
		t.Error("entry written despite invalid memory format")
	}
}

func TestSaveEntry_WithoutIndex(t *testing.T) {
	env := newTestEnv(t)
	env.DB = nil

	out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if out.Indexed {
		t.Error("Indexed = true without a database")
	}
}

func TestSaveEntry_IndexFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.DB.Close()

	out, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText})
	if err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if out.Indexed {
		t.Error("Indexed = true on a closed database")
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Errorf("entry file missing: %v", err)
	}
}
