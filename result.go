package pdfoutline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/brunobiangulo/pdfoutline/outline"
)

// Extraction methods reported on DocumentResult.Method.
const (
	MethodNative    = "native"    // the document's own bookmarks
	MethodHeuristic = "heuristic" // font-size inference
	MethodEmpty     = "empty"     // no text; title only
	MethodStored    = "stored"    // reused from the outline store
)

// DocumentResult is the outline of one document.
type DocumentResult struct {
	Title   string          `json:"title"`
	Outline []outline.Entry `json:"outline"`

	// Method records how the outline was obtained. It is not serialized.
	Method string `json:"-"`
}

// Marshal encodes r as the output artifact: two-space indented UTF-8 JSON
// without HTML escaping, followed by a newline. A nil outline is written as
// an empty array.
func Marshal(r *DocumentResult) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil result", ErrSerialization)
	}
	out := *r
	if out.Outline == nil {
		out.Outline = []outline.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}
