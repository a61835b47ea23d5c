package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Document represents a row in the documents table.
type Document struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	ContentHash string `json:"content_hash"`
	Params      string `json:"params"`
	Title       string `json:"title"`
	Outline     string `json:"outline"` // JSON array of outline entries
	Method      string `json:"method"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Run represents a row in the runs table.
type Run struct {
	ID         string `json:"id"`
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	Workers    int    `json:"workers"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// RunDocument represents a row in the run_documents table.
type RunDocument struct {
	ID         int64  `json:"id"`
	RunID      string `json:"run_id"`
	Filename   string `json:"filename"`
	Success    bool   `json:"success"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Headings   int    `json:"headings"`
	Method     string `json:"method"`
}

// Store wraps the SQLite database holding extracted outlines and the run
// ledger.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Document operations ---

// UpsertDocument inserts or updates a document record. Returns the document ID.
func (s *Store) UpsertDocument(ctx context.Context, doc Document) (int64, error) {
	if doc.Outline == "" {
		doc.Outline = "[]"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, filename, content_hash, params, title, outline, method, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			content_hash = excluded.content_hash,
			params = excluded.params,
			title = excluded.title,
			outline = excluded.outline,
			method = excluded.method,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, doc.Path, doc.Filename, doc.ContentHash, doc.Params, doc.Title, doc.Outline, doc.Method, doc.Status)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// If UPSERT did an UPDATE, LastInsertId may not reflect the existing row.
	if id == 0 {
		row := s.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", doc.Path)
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

const documentColumns = `id, path, filename, content_hash, params, title, outline, method, status, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*Document, error) {
	doc := &Document{}
	err := row.Scan(&doc.ID, &doc.Path, &doc.Filename, &doc.ContentHash, &doc.Params,
		&doc.Title, &doc.Outline, &doc.Method, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	return scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE path = ?", path))
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	return scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
}

// ListDocuments returns all documents ordered by path.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document record.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	return err
}

// Prune deletes the documents whose source file no longer exists and returns
// them.
func (s *Store) Prune(ctx context.Context) ([]Document, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var removed []Document
	for _, d := range docs {
		if _, err := os.Stat(d.Path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.DeleteDocument(ctx, d.ID); err != nil {
			return removed, fmt.Errorf("deleting %s: %w", d.Path, err)
		}
		slog.Debug("store: pruned document", "path", d.Path)
		removed = append(removed, d)
	}
	return removed, nil
}

// --- Run ledger ---

// StartRun records the beginning of a batch run.
func (s *Store) StartRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, input_dir, output_dir, workers, total)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.InputDir, r.OutputDir, r.Workers, r.Total)
	return err
}

// RecordRunDocument stores the outcome of one document within a run.
func (s *Store) RecordRunDocument(ctx context.Context, d RunDocument) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_documents (run_id, filename, success, error_kind, error, duration_ms, headings, method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.RunID, d.Filename, d.Success, d.ErrorKind, d.Error, d.DurationMs, d.Headings, d.Method)
	return err
}

// FinishRun stores the final tally of a run.
func (s *Store) FinishRun(ctx context.Context, id string, total, succeeded int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET total = ?, succeeded = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, total, succeeded, id)
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	var finished sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, input_dir, output_dir, workers, total, succeeded, started_at, finished_at
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.InputDir, &r.OutputDir, &r.Workers, &r.Total, &r.Succeeded, &r.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	r.FinishedAt = finished.String
	return r, nil
}

// ListRunDocuments returns the per-document outcomes of a run in the order
// they were recorded.
func (s *Store) ListRunDocuments(ctx context.Context, runID string) ([]RunDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, filename, success, error_kind, error, duration_ms, headings, method
		FROM run_documents WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []RunDocument
	for rows.Next() {
		var d RunDocument
		if err := rows.Scan(&d.ID, &d.RunID, &d.Filename, &d.Success, &d.ErrorKind,
			&d.Error, &d.DurationMs, &d.Headings, &d.Method); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// --- helpers ---

// FileHash returns the hex SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
