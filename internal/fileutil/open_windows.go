//go:build windows

package fileutil

import "os"

// OpenNoFollow opens a file. Windows has no O_NOFOLLOW; callers check for
// symlinks with Lstat before getting here.
func OpenNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
