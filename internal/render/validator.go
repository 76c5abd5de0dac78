package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only accepted source extension (compared case-insensitively).
const Extension = ".pdf"

// ValidatePath checks that path names an existing regular file with the PDF extension.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("unsupported extension %q: %s", filepath.Ext(path), path)
	}
	return nil
}
