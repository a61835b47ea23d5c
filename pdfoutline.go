// Package pdfoutline extracts a title and a flat heading outline from PDF
// documents. Documents with native bookmarks use them directly; all others
// go through font-size heuristics over their text spans.
package pdfoutline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/brunobiangulo/pdfoutline/cache"
	"github.com/brunobiangulo/pdfoutline/outline"
	"github.com/brunobiangulo/pdfoutline/parser"
	"github.com/brunobiangulo/pdfoutline/store"
)

// Extractor turns single documents into DocumentResults. It is safe for
// concurrent use.
type Extractor struct {
	cfg       Config
	registry  *parser.Registry
	opener    parser.Opener
	spans     *cache.SpanCache
	store     *store.Store
	ownsStore bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry resolves Config.Backend against reg instead of the built-in
// registry.
func WithRegistry(reg *parser.Registry) Option {
	return func(e *Extractor) { e.registry = reg }
}

// WithOpener bypasses the registry and opens every document with o.
func WithOpener(o parser.Opener) Option {
	return func(e *Extractor) { e.opener = o }
}

// WithCache shares an existing span cache.
func WithCache(c *cache.SpanCache) Option {
	return func(e *Extractor) { e.spans = c }
}

// WithStore uses an already open outline store. The caller keeps ownership.
func WithStore(s *store.Store) Option {
	return func(e *Extractor) { e.store = s }
}

// New creates an Extractor for cfg.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{cfg: cfg}
	for _, o := range opts {
		o(e)
	}

	if e.opener == nil {
		if e.registry == nil {
			e.registry = parser.NewRegistry()
		}
		o, err := e.registry.Get(cfg.Backend)
		if err != nil {
			return nil, fmt.Errorf("%w: %v (available: %s)", ErrUnknownBackend, err,
				strings.Join(e.registry.Backends(), ", "))
		}
		e.opener = o
	}

	if e.spans == nil {
		c, err := cache.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		e.spans = c
	}

	if e.store == nil && cfg.StorePath != "" {
		s, err := store.New(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		e.store = s
		e.ownsStore = true
	}

	return e, nil
}

// Config returns the configuration the Extractor was built with.
func (e *Extractor) Config() Config { return e.cfg }

// Cache returns the span cache.
func (e *Extractor) Cache() *cache.SpanCache { return e.spans }

// Store returns the outline store, or nil when none is configured.
func (e *Extractor) Store() *store.Store { return e.store }

// Close releases the outline store if the Extractor opened it.
func (e *Extractor) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Extract produces the outline of the document at path. Open failures wrap
// ErrDocumentOpen and span failures wrap ErrExtraction; a document without
// text yields its title and an empty outline.
func (e *Extractor) Extract(ctx context.Context, path string) (*DocumentResult, error) {
	start := time.Now()
	filename := filepath.Base(path)

	var hash string
	if e.store != nil {
		h, err := store.FileHash(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDocumentOpen, err)
		}
		hash = h
		if res, ok := e.stored(ctx, path, hash); ok {
			slog.Debug("extract: reusing stored outline", "file", filename, "headings", len(res.Outline))
			return res, nil
		}
	}

	doc, err := e.opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentOpen, err)
	}
	defer doc.Close()

	res := &DocumentResult{Title: outline.Normalize(doc.Title())}
	if res.Title == "" {
		res.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	if entries := e.native(doc, filename); len(entries) > 0 {
		res.Outline = entries
		res.Method = MethodNative
	} else {
		entries, err := e.heuristic(path, doc)
		switch {
		case errors.Is(err, ErrEmptyDocument):
			slog.Debug("extract: no text spans, title only", "file", filename)
			res.Outline = []outline.Entry{}
			res.Method = MethodEmpty
		case err != nil:
			return nil, err
		default:
			res.Outline = entries
			res.Method = MethodHeuristic
		}
	}

	if e.store != nil {
		e.save(ctx, path, hash, res)
	}

	slog.Debug("extract: outline ready",
		"file", filename,
		"method", res.Method,
		"headings", len(res.Outline),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// native maps the document's bookmarks to outline entries. A bookmark read
// error falls through to the heuristic path.
func (e *Extractor) native(doc parser.Document, filename string) []outline.Entry {
	items, err := doc.NativeOutline()
	if err != nil {
		slog.Debug("extract: native outline unreadable", "file", filename, "error", err)
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	entries := make([]outline.Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, outline.Entry{
			Level: fmt.Sprintf("H%d", it.Depth),
			Text:  outline.Normalize(it.Title),
			Page:  it.Page,
		})
	}
	return entries
}

// heuristic infers headings from font sizes. It returns ErrEmptyDocument when
// the document has no usable spans.
func (e *Extractor) heuristic(path string, doc parser.Document) ([]outline.Entry, error) {
	spans, err := e.normalizedSpans(path, doc)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, ErrEmptyDocument
	}

	body, err := outline.BodyFontSize(spans)
	if err != nil {
		return nil, ErrEmptyDocument
	}
	candidates := outline.NewClassifier(body, e.cfg.HeadingFontRatio).Classify(spans)
	return outline.Assemble(candidates), nil
}

// normalizedSpans scans every page in order, memoized per file identity.
func (e *Extractor) normalizedSpans(path string, doc parser.Document) ([]outline.NormalizedSpan, error) {
	key := cache.KeyFor(path)
	if spans, ok := e.spans.Get(key); ok {
		return spans, nil
	}

	var raw []parser.Span
	for i := 1; i <= doc.NumPage(); i++ {
		spans, err := doc.Page(i).Spans()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		raw = append(raw, spans...)
	}

	spans := outline.NormalizeSpans(raw)
	if e.spans.Put(key, spans) {
		slog.Debug("extract: span cache evicted entry", "capacity", e.spans.Capacity())
	}
	return spans, nil
}

// stored returns a previously saved result for path when its content hash
// and extraction parameters still match.
func (e *Extractor) stored(ctx context.Context, path, hash string) (*DocumentResult, bool) {
	if e.cfg.Force {
		return nil, false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	doc, err := e.store.GetDocumentByPath(ctx, abs)
	if err != nil || doc.ContentHash != hash || doc.Params != e.cfg.params() || doc.Status != "done" {
		return nil, false
	}
	res, err := StoredResult(doc)
	if err != nil {
		slog.Warn("extract: stored outline unreadable", "file", doc.Filename, "error", err)
		return nil, false
	}
	return res, true
}

// StoredResult rebuilds the result saved in a store record.
func StoredResult(doc *store.Document) (*DocumentResult, error) {
	var entries []outline.Entry
	if err := json.Unmarshal([]byte(doc.Outline), &entries); err != nil {
		return nil, fmt.Errorf("%w: stored outline for %s: %v", ErrSerialization, doc.Filename, err)
	}
	if entries == nil {
		entries = []outline.Entry{}
	}
	return &DocumentResult{Title: doc.Title, Outline: entries, Method: MethodStored}, nil
}

func (e *Extractor) save(ctx context.Context, path, hash string, res *DocumentResult) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := json.Marshal(res.Outline)
	if err != nil {
		slog.Warn("extract: encoding outline for store failed", "file", filepath.Base(path), "error", err)
		return
	}
	_, err = e.store.UpsertDocument(ctx, store.Document{
		Path:        abs,
		Filename:    filepath.Base(path),
		ContentHash: hash,
		Params:      e.cfg.params(),
		Title:       res.Title,
		Outline:     string(data),
		Method:      res.Method,
		Status:      "done",
	})
	if err != nil {
		slog.Warn("extract: storing outline failed (non-fatal)", "file", filepath.Base(path), "error", err)
	}
}
