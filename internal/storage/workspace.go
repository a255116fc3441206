package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
)

// FindWorkspaceRoot walks up from cwd looking for a .kwaci directory.
// Returns the directory containing it, or an error if none is found.
func FindWorkspaceRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		kwaciPath := filepath.Join(dir, kwaciDir)
		info, err := os.Stat(kwaciPath)
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .kwaci
			return "", kwacierrors.NotInitializedError{}
		}
		dir = parent
	}
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// SanitizeID converts an identifier to a safe file name component. Ids are
// generated lowercase alphanumeric, so this only matters for hand-typed or
// corrupted input, where it keeps a stray "../x" from escaping the store.
func SanitizeID(id string) string {
	result := unsafeIDChars.ReplaceAllString(id, "-")
	return strings.Trim(result, "-")
}
