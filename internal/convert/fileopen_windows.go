//go:build windows

package convert

import (
	"os"
)

// openFileNoFollow opens a file for writing.
// O_NOFOLLOW is not available on Windows; ValidateDestination and the
// pre-rename Lstat still refuse symlinks.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
