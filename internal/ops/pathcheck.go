package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/fileutil"
)

// ConfinedDirs returns the directories an agent may write documents into:
// the diary directory and its rendered subdirectory.
func ConfinedDirs(env *Env) []string {
	dir := env.DiaryDir()
	return []string{dir, filepath.Join(dir, RenderedDirName)}
}

// ValidateConfinedPath checks an output path supplied over MCP. The file must
// sit directly in one of allowed (no subdirectories), must not traverse with
// "..", and neither it nor its parent may be a symlink.
//
// The "directly in" rule leaves no intermediate directory that could be
// swapped for a symlink between validation and the write, and the final
// component is opened with O_NOFOLLOW.
func ValidateConfinedPath(path string, allowed []string) error {
	if path == "" {
		return errors.NewValidation("path is required")
	}
	if fileutil.ContainsTraversal(path) {
		return errors.NewValidation("path must not contain directory traversal (..)")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return errors.NewValidation(fmt.Sprintf("invalid path: %v", err))
	}

	parentDir := filepath.Dir(absPath)
	if !isDirectlyIn(parentDir, allowed) {
		return errors.NewValidation(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
	}

	if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewValidation("parent directory must not be a symlink")
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewValidation("path must not be a symlink")
	}
	return nil
}

func isDirectlyIn(parentDir string, allowed []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowed {
		abs, err := filepath.Abs(filepath.Clean(dir))
		if err != nil {
			continue
		}
		if parentDir == abs {
			return true
		}
	}
	return false
}
