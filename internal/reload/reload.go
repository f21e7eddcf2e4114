// Package reload detects a rebuilt executable and replaces the running
// process with it.
package reload

import (
	"os"
	"time"
)

// ShouldReload reports whether the file at selfPath exists, is executable and
// was modified at or after since.
func ShouldReload(selfPath string, since time.Time) bool {
	info, err := os.Stat(selfPath)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if !executable(selfPath, info) {
		return false
	}
	return !info.ModTime().Before(since)
}
