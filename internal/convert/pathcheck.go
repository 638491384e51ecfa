package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/pfncards/internal/errors"
)

// ValidateSource checks that path names an existing regular file.
func ValidateSource(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("input path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
		return errors.NewInternal(fmt.Errorf("failed to stat input file: %w", err))
	}
	if info.IsDir() {
		return errors.NewInvalidRequest(fmt.Sprintf("input path is a directory: %s", path))
	}
	return nil
}

// ValidateDestination checks that path can receive the JSON output:
// it needs a .json extension and must not be a symlink or a directory.
// A missing parent directory is fine; it is created at write time.
func ValidateDestination(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("output path is required")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".json" {
		return errors.NewInvalidRequest("output path must have .json extension")
	}

	if info, err := os.Lstat(cleaned); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("output path must not be a symlink")
		}
		if info.IsDir() {
			return errors.NewInvalidRequest(fmt.Sprintf("output path is a directory: %s", path))
		}
	}
	return nil
}
