// Package batch runs outline extraction over a directory of PDFs with a
// bounded worker pool, writing one JSON artifact per input.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brunobiangulo/pdfoutline"
	"github.com/brunobiangulo/pdfoutline/store"
)

// Extractor produces the outline of a single document.
type Extractor interface {
	Extract(ctx context.Context, path string) (*pdfoutline.DocumentResult, error)
}

// ErrorKind classifies a per-document failure.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindOpen          ErrorKind = "open"
	KindExtraction    ErrorKind = "extraction"
	KindSerialization ErrorKind = "serialization"
	KindConflict      ErrorKind = "conflict"
	KindUnknown       ErrorKind = "unknown"
)

// Classify maps an extraction or write error to its kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, pdfoutline.ErrDocumentOpen):
		return KindOpen
	case errors.Is(err, pdfoutline.ErrExtraction):
		return KindExtraction
	case errors.Is(err, pdfoutline.ErrSerialization):
		return KindSerialization
	case errors.Is(err, pdfoutline.ErrOutputConflict):
		return KindConflict
	}
	return KindUnknown
}

// Result is the outcome of one document.
type Result struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	OutputPath string        `json:"output_path,omitempty"`
	Duration   time.Duration `json:"duration"`
	Kind       ErrorKind     `json:"kind,omitempty"`
	Err        error         `json:"-"`
	Headings   int           `json:"headings"`
	Method     string        `json:"method,omitempty"`
}

// Success reports whether the document produced an artifact.
func (r Result) Success() bool { return r.Err == nil }

// Summary aggregates a run. Results are in completion order.
type Summary struct {
	RunID     uuid.UUID     `json:"run_id"`
	InputDir  string        `json:"input_dir"`
	OutputDir string        `json:"output_dir"`
	Workers   int           `json:"workers"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"elapsed"`
	Results   []Result      `json:"results"`
}

// Failed returns the number of documents that were processed and failed.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Succeeded
}

// Runner processes directories of documents.
type Runner struct {
	ex     Extractor
	cfg    pdfoutline.Config
	ledger *store.Store
	numCPU int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLedger records each run and its per-document outcomes in s.
func WithLedger(s *store.Store) RunnerOption {
	return func(r *Runner) { r.ledger = s }
}

// NewRunner creates a Runner. Only MaxWorkers, BatchSizeMultiplier and
// ReportPath are read from cfg; extraction settings belong to ex.
func NewRunner(ex Extractor, cfg pdfoutline.Config, opts ...RunnerOption) *Runner {
	r := &Runner{ex: ex, cfg: cfg, numCPU: runtime.NumCPU()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Workers returns the pool size used for n documents.
func (r *Runner) Workers(n int) int {
	return max(1, min(r.cfg.MaxWorkers, r.numCPU, n))
}

// Run extracts every PDF in inputDir and writes <stem>.json files to
// outputDir. Per-document failures are reported in the summary and never
// stop other documents. An input whose artifact name an earlier input
// already claimed fails with ErrOutputConflict without being extracted.
// Cancelling ctx stops dispatching documents that have not started; those
// already running finish. A run cut short this way returns its partial
// summary together with ctx.Err().
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	found, err := Discover(inputDir)
	if err != nil {
		return nil, err
	}
	files, dups := claimOutputs(found)

	summary := &Summary{
		RunID:     uuid.New(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Total:     len(found),
		Results:   []Result{},
	}

	if len(found) == 0 {
		slog.Warn("batch: nothing to do", "dir", inputDir, "error", pdfoutline.ErrNoDocuments)
		return summary, nil
	}

	workers := r.Workers(len(files))
	summary.Workers = workers
	runStart := time.Now()

	slog.Info("batch: starting run",
		"run_id", summary.RunID, "documents", len(found), "workers", workers,
		"input", inputDir, "output", outputDir)

	if r.ledger != nil {
		err := r.ledger.StartRun(ctx, store.Run{
			ID:        summary.RunID.String(),
			InputDir:  inputDir,
			OutputDir: outputDir,
			Workers:   workers,
			Total:     len(found),
		})
		if err != nil {
			slog.Warn("batch: run ledger unavailable (non-fatal)", "error", err)
			r = r.withoutLedger()
		}
	}

	for _, path := range dups {
		r.collect(summary, Result{
			Name: filepath.Base(path),
			Path: path,
			Err:  fmt.Errorf("%w: %s", pdfoutline.ErrOutputConflict, outputName(path)),
			Kind: KindConflict,
		})
	}

	results := make(chan Result, workers*max(1, r.cfg.BatchSizeMultiplier))

	var (
		wg         sync.WaitGroup
		sem        = make(chan struct{}, workers)
		dispatched int // written by the dispatcher only; read after results closes
	)

	// Documents already running are not interrupted.
	taskCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(results)
		for _, path := range files {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}

			dispatched++

			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer func() { <-sem }()
				results <- r.process(taskCtx, path, outputDir)
			}(path)
		}
		wg.Wait()
	}()

	for res := range results {
		r.collect(summary, res)
	}

	summary.Elapsed = time.Since(runStart)
	summary.Skipped = len(files) - dispatched

	slog.Info("batch: run complete",
		"run_id", summary.RunID,
		"progress", fmt.Sprintf("%d/%d succeeded", summary.Succeeded, summary.Total),
		"failed", summary.Failed(),
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed.Round(time.Millisecond))

	if r.ledger != nil {
		if err := r.ledger.FinishRun(taskCtx, summary.RunID.String(), summary.Total, summary.Succeeded); err != nil {
			slog.Warn("batch: finishing run ledger failed (non-fatal)", "error", err)
		}
	}

	if r.cfg.ReportPath != "" {
		if err := WriteReport(r.cfg.ReportPath, summary); err != nil {
			slog.Warn("batch: writing report failed (non-fatal)", "path", r.cfg.ReportPath, "error", err)
		} else {
			slog.Info("batch: report written", "path", r.cfg.ReportPath)
		}
	}

	if err := ctx.Err(); err != nil && summary.Skipped > 0 {
		slog.Warn("batch: run interrupted", "skipped", summary.Skipped)
		return summary, err
	}
	return summary, nil
}

// collect adds res to the summary, logs it and records it in the ledger.
func (r *Runner) collect(summary *Summary, res Result) {
	summary.Results = append(summary.Results, res)
	if res.Success() {
		summary.Succeeded++
		slog.Info("batch: document done",
			"file", res.Name,
			"success", true,
			"method", res.Method,
			"headings", res.Headings,
			"elapsed", res.Duration.Round(time.Millisecond))
	} else {
		slog.Warn("batch: document failed",
			"file", res.Name,
			"success", false,
			"kind", res.Kind,
			"error", res.Err,
			"elapsed", res.Duration.Round(time.Millisecond))
	}
	r.record(summary.RunID, res)
}

// process extracts and writes a single document.
func (r *Runner) process(ctx context.Context, path, outputDir string) Result {
	start := time.Now()
	res := Result{Name: filepath.Base(path), Path: path}

	doc, err := r.ex.Extract(ctx, path)
	if err == nil {
		res.Headings = len(doc.Outline)
		res.Method = doc.Method
		res.OutputPath, err = WriteResult(outputDir, outputName(path), doc)
	}

	res.Duration = time.Since(start)
	res.Err = err
	res.Kind = Classify(err)
	return res
}

func (r *Runner) record(runID uuid.UUID, res Result) {
	if r.ledger == nil {
		return
	}
	var msg string
	if res.Err != nil {
		msg = res.Err.Error()
	}
	err := r.ledger.RecordRunDocument(context.Background(), store.RunDocument{
		RunID:      runID.String(),
		Filename:   res.Name,
		Success:    res.Success(),
		ErrorKind:  string(res.Kind),
		Error:      msg,
		DurationMs: res.Duration.Milliseconds(),
		Headings:   res.Headings,
		Method:     res.Method,
	})
	if err != nil {
		slog.Warn("batch: recording document outcome failed (non-fatal)", "file", res.Name, "error", err)
	}
}

func (r *Runner) withoutLedger() *Runner {
	c := *r
	c.ledger = nil
	return &c
}
