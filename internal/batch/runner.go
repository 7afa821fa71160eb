// SPDX-License-Identifier: Apache-2.0

// Package batch processes many documents with bounded parallelism and folds
// the outcomes into a clinical.Report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/loader"
	"github.com/medlit/clinical-pdf-intel/internal/metrics"
	"github.com/medlit/clinical-pdf-intel/internal/output"
	"github.com/medlit/clinical-pdf-intel/internal/store"
)

// ErrDuplicateDocument marks a file whose document id is already taken by an
// earlier file of the same batch. Ids derive from the file stem, so
// same-named files in different directories collide.
var ErrDuplicateDocument = errors.New("duplicate document id")

// DocumentError carries the failure of a single document.
type DocumentError struct {
	Filename string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Options configures a Runner. Nil collaborators are skipped.
type Options struct {
	Workers int
	Writer  *output.Writer
	Store   *store.Store
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Runner drives load, process and persist for a batch of files.
type Runner struct {
	loader    *loader.Registry
	processor *clinical.Processor
	writer    *output.Writer
	store     *store.Store
	metrics   *metrics.Recorder
	workers   int
	logger    *slog.Logger
	runID     string
}

// NewRunner creates a Runner. Workers below one mean one.
func NewRunner(l *loader.Registry, p *clinical.Processor, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	runID := uuid.NewString()
	return &Runner{
		loader:    l,
		processor: p,
		writer:    opts.Writer,
		store:     opts.Store,
		metrics:   opts.Metrics,
		workers:   opts.Workers,
		logger:    opts.Logger.With("run_id", runID),
		runID:     runID,
	}
}

// RunID identifies this runner's batch in logs and the index.
func (r *Runner) RunID() string {
	return r.runID
}

type outcome struct {
	doc clinical.ProcessedDocument
	err *DocumentError
}

// Run processes paths with at most Workers documents in flight and returns
// report extended with one outcome per path, in input order. Document
// failures are recorded and never stop the batch. A path whose document id
// repeats an earlier path's fails with ErrDuplicateDocument and is never
// loaded. Once ctx is cancelled no new documents are started; the ones not
// started are recorded as failed.
func (r *Runner) Run(ctx context.Context, report clinical.Report, paths []string) clinical.Report {
	start := time.Now()
	r.logger.Info("batch.start", "documents", len(paths), "workers", r.workers)

	outcomes := make([]outcome, len(paths))
	settled := make([]bool, len(paths))

	firstByID := make(map[string]string, len(paths))
	for i, path := range paths {
		id := clinical.DocumentID(filepath.Base(path))
		first, seen := firstByID[id]
		if !seen {
			firstByID[id] = path
			continue
		}
		err := fmt.Errorf("%w %s: already used by %s", ErrDuplicateDocument, id, first)
		r.logger.Warn("batch.document.failed", "file", filepath.Base(path), "path", path, "error", err)
		outcomes[i] = outcome{err: &DocumentError{Filename: filepath.Base(path), Err: err}}
		settled[i] = true
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, path := range paths {
		if settled[i] {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		settled[i] = true
		g.Go(func() error {
			outcomes[i] = r.processOne(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var done clinical.Report
	for i, path := range paths {
		o := outcomes[i]
		if !settled[i] {
			o.err = &DocumentError{Filename: filepath.Base(path), Err: fmt.Errorf("not started: %w", ctx.Err())}
		}
		if o.err != nil {
			done.Failed = append(done.Failed, clinical.FailedDocument{File: o.err.Filename, Error: o.err.Err.Error()})
			if r.metrics != nil {
				r.metrics.Failed()
			}
			continue
		}
		done.Processed = append(done.Processed, o.doc)
		if r.metrics != nil {
			r.metrics.Processed(o.doc.Type, o.doc.Confidence, o.doc.Chunks)
		}
	}
	report = report.Merge(done)

	s := report.Summary()
	r.logger.Info("batch.done",
		"processed", s.TotalProcessed,
		"failed", s.TotalFailed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report
}

func (r *Runner) processOne(ctx context.Context, path string) outcome {
	name := filepath.Base(path)
	fail := func(err error) outcome {
		r.logger.Warn("batch.document.failed", "file", name, "error", err)
		return outcome{err: &DocumentError{Filename: name, Err: err}}
	}

	src, err := r.loader.Load(ctx, path)
	if err != nil {
		return fail(err)
	}

	rec := r.processor.Process(clinical.Input{
		Filename:  name,
		Text:      src.Text,
		PageCount: src.PageCount,
	})

	var folder string
	if r.writer != nil {
		if folder, err = r.writer.Document(name, rec, nil); err != nil {
			return fail(fmt.Errorf("write outputs: %w", err))
		}
	}
	if r.store != nil {
		if err := r.store.SaveDocument(ctx, r.runID, rec); err != nil {
			return fail(fmt.Errorf("index document: %w", err))
		}
	}

	r.logger.Info("batch.document.ok",
		"file", name,
		"document_type", rec.DocumentType,
		"confidence", rec.TypeConfidence,
		"chunks", rec.TotalChunks,
	)
	return outcome{doc: clinical.ProcessedDocument{
		File:       name,
		Type:       rec.DocumentType,
		Confidence: rec.TypeConfidence,
		Folder:     folder,
		Chunks:     rec.TotalChunks,
	}}
}

// ReportPaths names the optional batch-level artifacts.
type ReportPaths struct {
	XLSX    string
	Metrics string
}

// WriteReports writes the master report when a Writer is configured, then
// the optional workbook and metrics textfile. Every artifact is attempted;
// the errors are joined.
func (r *Runner) WriteReports(report clinical.Report, paths ReportPaths) error {
	var errs []error
	if r.writer != nil {
		if path, err := r.writer.Master(report); err != nil {
			errs = append(errs, err)
		} else {
			r.logger.Info("batch.report.ok", "path", path)
		}
	}
	if paths.XLSX != "" {
		if err := output.WriteXLSX(paths.XLSX, report); err != nil {
			errs = append(errs, err)
		}
	}
	if paths.Metrics != "" && r.metrics != nil {
		if err := r.metrics.WriteTextfile(paths.Metrics); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
