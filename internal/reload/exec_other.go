//go:build !unix

package reload

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("process replacement is not supported on this platform")

func executable(_ string, info os.FileInfo) bool {
	return info.Mode().Perm()&0o111 != 0
}

func Exec(path string, _ []string) error {
	return errUnsupported
}
