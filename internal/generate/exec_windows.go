//go:build windows

package generate

import "os/exec"

// killProcessGroup is a no-op on Windows; WaitDelay still bounds Wait.
func killProcessGroup(_ *exec.Cmd) {}
