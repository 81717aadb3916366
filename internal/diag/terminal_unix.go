//go:build !windows

package diag

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsTerminal reports whether f is attached to an interactive terminal,
// the same ioctl esbuild's logger uses to decide whether to emit color
// by default.
func IsTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlTermiosGet)
	return err == nil
}
