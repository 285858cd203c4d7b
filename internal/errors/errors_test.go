package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestChronicleError_Error(t *testing.T) {
	err := &ChronicleError{
		Code:    ErrNotFound,
		Status:  2,
		Message: "entry not found",
	}

	expected := "NOT_FOUND: entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("content is required")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Status != 2 {
		t.Errorf("Status = %d, want 2", err.Status)
	}
	if err.Message != "content is required" {
		t.Errorf("Message = %q, want %q", err.Message, "content is required")
	}
}

func TestNewMissingContent(t *testing.T) {
	err := NewMissingContent("2026-01-31")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Details["date"] != "2026-01-31" {
		t.Errorf("Details[date] = %v, want 2026-01-31", err.Details["date"])
	}
}

func TestNewUnsupported(t *testing.T) {
	err := NewUnsupported("theme", "neon", []string{"velvet", "parchment"})

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Details["field"] != "theme" {
		t.Errorf("Details[field] = %v, want theme", err.Details["field"])
	}
	if err.Details["value"] != "neon" {
		t.Errorf("Details[value] = %v, want neon", err.Details["value"])
	}
}

func TestNewEntryTooThin(t *testing.T) {
	missing := []string{"Summary", "Wins"}
	err := NewEntryTooThin(missing)

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	got, ok := err.Details["missing_sections"].([]string)
	if !ok || len(got) != 2 {
		t.Errorf("Details[missing_sections] = %v, want %v", err.Details["missing_sections"], missing)
	}
}

func TestNewGeneration(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewGeneration("exec", cause)

	if err.Code != ErrGeneration {
		t.Errorf("Code = %q, want %q", err.Code, ErrGeneration)
	}
	if err.Status != 3 {
		t.Errorf("Status = %d, want 3", err.Status)
	}
	if err.Message != "exec backend: connection refused" {
		t.Errorf("Message = %q", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestNewGenerationStatus(t *testing.T) {
	err := NewGenerationStatus("exec", 7, "model unavailable")

	if err.Code != ErrGeneration {
		t.Errorf("Code = %q, want %q", err.Code, ErrGeneration)
	}
	if err.Details["exit_code"] != 7 {
		t.Errorf("Details[exit_code] = %v, want 7", err.Details["exit_code"])
	}
	if err.Message != "exec backend: exited with status 7: model unavailable" {
		t.Errorf("Message = %q", err.Message)
	}

	bare := NewGenerationStatus("exec", 1, "")
	if bare.Message != "exec backend: exited with status 1" {
		t.Errorf("Message = %q", bare.Message)
	}
}

func TestNewRender(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewRender("/out/diary.pdf", cause)

	if err.Code != ErrRender {
		t.Errorf("Code = %q, want %q", err.Code, ErrRender)
	}
	if err.Status != 4 {
		t.Errorf("Status = %d, want 4", err.Status)
	}
	if err.Details["path"] != "/out/diary.pdf" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("2026-01-31")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Details["identifier"] != "2026-01-31" {
		t.Errorf("Details[identifier] = %v", err.Details["identifier"])
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("generate")

	if err.Code != ErrCancelled {
		t.Errorf("Code = %q, want %q", err.Code, ErrCancelled)
	}
	if err.Message != "generate cancelled" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"with error", fmt.Errorf("disk full"), "disk full"},
		{"nil error", nil, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInternal(tt.err)
			if err.Code != ErrInternal {
				t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
		})
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewValidation("x"), ErrValidation, true},
		{"different code", NewValidation("x"), ErrRender, false},
		{"wrapped", fmt.Errorf("outer: %w", NewRender("p", nil)), ErrRender, true},
		{"plain error", fmt.Errorf("plain"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", NewValidation("x"), 2},
		{"generation", NewGeneration("exec", nil), 3},
		{"render", NewRender("p", nil), 4},
		{"internal", NewInternal(nil), 1},
		{"plain", fmt.Errorf("boom"), 1},
		{"wrapped", fmt.Errorf("ctx: %w", NewRender("p", nil)), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
