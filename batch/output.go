package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/brunobiangulo/pdfoutline"
)

// WriteResult writes res as <outputDir>/<name>. Readers never observe a
// partial artifact.
func WriteResult(outputDir, name string, res *pdfoutline.DocumentResult) (string, error) {
	data, err := pdfoutline.Marshal(res)
	if err != nil {
		return "", err
	}

	// Every task calls this; MkdirAll tolerates concurrent creation.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", pdfoutline.ErrSerialization, err)
	}

	dst := filepath.Join(outputDir, name)
	if err := renameio.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", pdfoutline.ErrSerialization, name, err)
	}
	return dst, nil
}
