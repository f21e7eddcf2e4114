//go:build unix

package reload

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func executable(path string, _ os.FileInfo) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// Exec replaces the current process image with path, passing argv and the
// current environment. It only returns on failure.
func Exec(path string, argv []string) error {
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
