package convert

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/pfncards/internal/card"
	"github.com/hpungsan/pfncards/internal/errors"
)

// EncodeCards writes cards as an indented JSON array with non-ASCII and HTML
// characters left unescaped.
func EncodeCards(w io.Writer, cards []card.Card) error {
	if cards == nil {
		cards = []card.Card{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cards)
}

// writeCardsAtomic writes cards to a temp file next to path, then renames it
// into place. A pre-existing file at path survives any failure.
func writeCardsAtomic(path string, cards []card.Card) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewWriteFailed(path, fmt.Errorf("create output directory: %w", err))
	}

	tempPath := path + "." + ulid.Make().String() + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return errors.NewWriteFailed(path, fmt.Errorf("create temp file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := EncodeCards(bw, cards); err != nil {
		return errors.NewWriteFailed(path, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewWriteFailed(path, err)
	}

	if err := file.Sync(); err != nil {
		return errors.NewWriteFailed(path, err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewWriteFailed(path, fmt.Errorf("close temp file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted after validation.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewWriteFailed(path, fmt.Errorf("output path is a symlink"))
	}

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewWriteFailed(path, fmt.Errorf("rename temp file: %w", err))
	}

	success = true
	return nil
}
