package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Discover lists the PDF files directly inside dir, sorted by name. The
// extension match is case-insensitive and subdirectories are not searched.
// A missing directory holds no documents.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("batch: input directory does not exist", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// outputName is the artifact file name for an input document.
func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// claimOutputs splits files into those that own their artifact name and
// those whose name an earlier file already claimed. Names are compared
// case-insensitively so that a.pdf and a.PDF collide on every filesystem.
func claimOutputs(files []string) (owned, dup []string) {
	claimed := make(map[string]bool, len(files))
	for _, f := range files {
		key := strings.ToLower(outputName(f))
		if claimed[key] {
			dup = append(dup, f)
			continue
		}
		claimed[key] = true
		owned = append(owned, f)
	}
	return owned, dup
}
