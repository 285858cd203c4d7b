package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hpungsan/chronicle/internal/errors"
)

func TestValidateConfinedPath_TraversalRejected(t *testing.T) {
	allowed := []string{t.TempDir()}

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../Chronicle.pdf"},
		{"deep traversal", "../../etc/Chronicle.pdf"},
		{"mid-path traversal", filepath.Join(allowed[0], "..", "x.pdf")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfinedPath(tc.path, allowed)
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("expected VALIDATION_ERROR, got: %v", err)
			}
		})
	}
}

func TestValidateConfinedPath_DirectChildOnly(t *testing.T) {
	dir := t.TempDir()
	allowed := []string{dir}

	if err := ValidateConfinedPath(filepath.Join(dir, "Chronicle.pdf"), allowed); err != nil {
		t.Errorf("direct child rejected: %v", err)
	}
	if err := ValidateConfinedPath(filepath.Join(dir, "sub", "Chronicle.pdf"), allowed); err == nil {
		t.Error("subdirectory accepted")
	}
	if err := ValidateConfinedPath(filepath.Join(t.TempDir(), "Chronicle.pdf"), allowed); err == nil {
		t.Error("outside directory accepted")
	}
	if err := ValidateConfinedPath("", allowed); err == nil {
		t.Error("empty path accepted")
	}
}

func TestValidateConfinedPath_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "elsewhere.pdf")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "Chronicle.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	err := ValidateConfinedPath(link, []string{dir})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected VALIDATION_ERROR for symlink, got: %v", err)
	}
}

func TestConfinedDirs(t *testing.T) {
	env := newTestEnv(t)

	dirs := ConfinedDirs(env)
	if len(dirs) != 2 || dirs[0] != env.DiaryDir() || dirs[1] != filepath.Join(env.DiaryDir(), RenderedDirName) {
		t.Errorf("ConfinedDirs() = %v", dirs)
	}
}
