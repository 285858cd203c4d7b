//go:build !windows

package fileutil

import (
	stderrors "errors"
	"fmt"
	"os"
	"syscall"
)

// OpenNoFollow opens a file with O_NOFOLLOW so the final path component can
// never be a symlink. O_CLOEXEC keeps the descriptor out of spawned backends.
func OpenNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, fmt.Errorf("cannot write to symlink %s", path)
		}
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
