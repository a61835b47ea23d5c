package pdfoutline

import "errors"

var (
	// ErrDocumentOpen is returned when the parser backend cannot open a document.
	ErrDocumentOpen = errors.New("pdfoutline: cannot open document")

	// ErrEmptyDocument marks a document that yields no usable text spans.
	// Extract degrades it to a title-only result instead of returning it.
	ErrEmptyDocument = errors.New("pdfoutline: document has no text")

	// ErrExtraction is returned when span extraction fails mid-document.
	ErrExtraction = errors.New("pdfoutline: span extraction failed")

	// ErrSerialization is returned when a result cannot be encoded or written.
	ErrSerialization = errors.New("pdfoutline: serialization failed")

	// ErrNoDocuments is logged when a batch input directory holds no PDFs.
	ErrNoDocuments = errors.New("pdfoutline: no documents found")

	// ErrOutputConflict is returned for a batch input whose artifact name is
	// already claimed by another input in the same run.
	ErrOutputConflict = errors.New("pdfoutline: output name already in use")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("pdfoutline: invalid configuration")

	// ErrUnknownBackend is returned when the configured parser backend is not
	// registered.
	ErrUnknownBackend = errors.New("pdfoutline: unknown parser backend")
)
