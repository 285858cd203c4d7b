package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/chronicle/internal/errors"
)

func TestList_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for _, d := range []string{"2026-01-29", "2026-01-30", "2026-01-31"} {
		writeEntryFile(t, env, d, dayEntry(d, "Day "+d))
	}
	if _, err := Reindex(t.Context(), env); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	out, err := List(env, ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(out.Items) != 2 || out.Items[0].Date != "2026-01-31" {
		t.Errorf("items = %+v", out.Items)
	}
	if !out.Pagination.HasMore || out.Pagination.Total != 3 {
		t.Errorf("pagination = %+v", out.Pagination)
	}
	if out.Sort != "date_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}

	out, err = List(env, ListInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.HasMore {
		t.Errorf("page 2 = %+v", out)
	}
}

func TestList_LimitBounds(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		in, want int
	}{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{500, MaxListLimit},
		{7, 7},
	}
	for _, tt := range tests {
		out, err := List(env, ListInput{Limit: tt.in, Offset: -1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if out.Pagination.Limit != tt.want {
			t.Errorf("limit %d -> %d, want %d", tt.in, out.Pagination.Limit, tt.want)
		}
		if out.Pagination.Offset != 0 {
			t.Errorf("offset = %d, want 0", out.Pagination.Offset)
		}
		if out.Items == nil {
			t.Error("Items is nil, want empty slice")
		}
	}
}

func TestList_LastRender(t *testing.T) {
	env := newTestEnv(t)
	writeEntryFile(t, env, "2026-01-31", validEntryText)
	exported, err := Export(t.Context(), env, ExportInput{Format: "markdown"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out, err := List(env, ListInput{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if out.LastRender == nil || out.LastRender.Path != exported.Path {
		t.Errorf("LastRender = %+v, want %s", out.LastRender, exported.Path)
	}
}

func TestList_NoIndex(t *testing.T) {
	env := newTestEnv(t)
	env.DB = nil

	if _, err := List(env, ListInput{}); !errors.Is(err, errors.ErrInternal) {
		t.Errorf("List() error = %v, want INTERNAL", err)
	}
	if _, err := Reindex(t.Context(), env); !errors.Is(err, errors.ErrInternal) {
		t.Errorf("Reindex() error = %v, want INTERNAL", err)
	}
}

func TestReindex_DropsRemovedEntries(t *testing.T) {
	env := newTestEnv(t)
	if _, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText}); err != nil {
		t.Fatal(err)
	}
	writeEntryFile(t, env, "2026-01-30", dayEntry("2026-01-30", "Kept"))
	if err := os.Remove(filepath.Join(env.DiaryDir(), "2026-01-31.md")); err != nil {
		t.Fatal(err)
	}

	out, err := Reindex(t.Context(), env)
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if out.Indexed != 1 || out.Dir != env.DiaryDir() {
		t.Errorf("output = %+v", out)
	}

	list, err := List(env, ListInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].Title != "Kept" {
		t.Errorf("items = %+v", list.Items)
	}
}

func TestFetch(t *testing.T) {
	env := newTestEnv(t)
	if _, err := SaveEntry(t.Context(), env, SaveInput{Date: "2026-01-31", Text: validEntryText, TaskID: "task-9"}); err != nil {
		t.Fatal(err)
	}

	out, err := Fetch(env, FetchInput{Date: "2026-01-31"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if out.Text != validEntryText || out.Title != "The Day the Parser Finally Behaved" {
		t.Errorf("output = %+v", out)
	}
	if out.Record == nil || out.Record.TaskID == nil || *out.Record.TaskID != "task-9" {
		t.Errorf("Record = %+v", out.Record)
	}

	out, err = Fetch(env, FetchInput{Date: "2026-01-31", IncludeText: boolPtr(false)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "" {
		t.Error("Text returned with IncludeText=false")
	}
}

func TestFetch_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := Fetch(env, FetchInput{Date: "2026-01-31"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
	if _, err := Fetch(env, FetchInput{Date: "../../etc/passwd"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("error = %v, want VALIDATION_ERROR", err)
	}
}
