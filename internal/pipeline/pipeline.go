// Package pipeline runs one dirdiff batch: validate, fingerprint both trees,
// compute the difference, then copy each unique file with per-file fault isolation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/dirdiff/internal/cli"
	"github.com/hyperjump/dirdiff/internal/config"
	"github.com/hyperjump/dirdiff/internal/copier"
	"github.com/hyperjump/dirdiff/internal/enumerate"
	"github.com/hyperjump/dirdiff/internal/extract"
	"github.com/hyperjump/dirdiff/internal/fingerprint"
	"github.com/hyperjump/dirdiff/internal/models"
	"github.com/hyperjump/dirdiff/internal/scanner"
	"github.com/hyperjump/dirdiff/internal/storage"
	"go.uber.org/zap"
)

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	cfg       *config.Config
	printer   *cli.Printer
	store     storage.Storage // optional run ledger
	extractor *extract.Extractor
	logger    *zap.Logger // optional; when set, logs debug events
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger that is also handed to every stage.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithStorage records the run and its results in store.
func WithStorage(store storage.Storage) PipelineOption {
	return func(p *Pipeline) { p.store = store }
}

// New creates a pipeline for cfg reporting through printer.
func New(cfg *config.Config, printer *cli.Printer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		printer:   printer,
		extractor: extract.NewExtractor(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the batch. It returns an error only for fatal conditions: invalid
// configuration, an output directory that cannot be created, or cancellation.
// Listing, hashing and copy failures are reported through the printer and recorded
// in the returned report. Once validation passes the report is returned even
// alongside an error, and the run is closed in the ledger with whatever results
// exist, so an interrupted run still records the files it copied.
func (p *Pipeline) Run(ctx context.Context) (*cli.Report, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	algorithm, err := fingerprint.ParseAlgorithm(p.cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	hasher, err := fingerprint.NewHasher(algorithm)
	if err != nil {
		return nil, err
	}

	run := &models.Run{
		ReferenceDir: p.cfg.ReferenceDir,
		SourceDir:    p.cfg.SourceDir,
		OutputDir:    p.cfg.OutputDir,
		Algorithm:    string(algorithm),
		DryRun:       p.cfg.DryRun,
		StartedAt:    time.Now(),
	}
	recorded := p.ledger(func() error { return p.store.CreateRun(ctx, run) }, "create run")
	// Closing writes must land even when ctx was cancelled mid-run.
	closeCtx := context.WithoutCancel(ctx)

	scan := p.newScanner(hasher)
	extractSet, extractStats, err := scan.Scan(ctx, p.cfg.SourceDir)
	run.SourceFiles = extractStats.Matched
	if err != nil {
		return p.finish(closeCtx, run, recorded, nil), fmt.Errorf("scan source: %w", err)
	}
	compareSet, compareStats, err := scan.Scan(ctx, p.cfg.ReferenceDir)
	run.ReferenceFiles = compareStats.Matched
	if err != nil {
		return p.finish(closeCtx, run, recorded, nil), fmt.Errorf("scan reference: %w", err)
	}
	unique := extractSet.Difference(compareSet)
	run.Unique = unique.Len()
	if p.logger != nil {
		p.logger.Info("difference computed",
			zap.Int("source_distinct", extractSet.Len()),
			zap.Int("reference_distinct", compareSet.Len()),
			zap.Int("unique", unique.Len()),
		)
	}

	var results []*models.CopyResult
	cp := p.newCopier()
	if p.cfg.DryRun {
		results = cp.Plan(unique.Files(), p.cfg.OutputDir)
		p.reportPlan(results)
	} else {
		results, err = cp.CopyAll(ctx, unique.Files(), p.cfg.OutputDir)
	}
	return p.finish(closeCtx, run, recorded, results), err
}

// finish tallies results, closes the run in the ledger and writes the report file.
// ctx must not be cancelled by the interruption that may have ended the run.
func (p *Pipeline) finish(ctx context.Context, run *models.Run, recorded bool, results []*models.CopyResult) *cli.Report {
	run.Tally(results)
	run.FinishedAt = time.Now()
	report := &cli.Report{Run: run, Results: results}
	if recorded {
		if len(results) > 0 {
			p.ledger(func() error { return p.store.RecordResults(ctx, run.ID, results) }, "record results")
		}
		p.ledger(func() error { return p.store.FinishRun(ctx, run) }, "finish run")
	}
	if p.cfg.ReportPath != "" {
		if werr := cli.WriteReportFile(p.cfg.ReportPath, report); werr != nil {
			p.printer.Errorf("%v", werr)
		}
	}
	if p.logger != nil {
		p.logger.Info("run finished",
			zap.String("run_id", run.ID),
			zap.Int("copied", run.Copied),
			zap.Int("failed", run.Failed),
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
		)
	}
	return report
}

func (p *Pipeline) newScanner(hasher *fingerprint.Hasher) *scanner.Scanner {
	enumOpts := []enumerate.EnumeratorOption{enumerate.WithErrorFunc(p.printer.ListingFailed)}
	scanOpts := []scanner.ScannerOption{
		scanner.WithWorkers(p.cfg.Workers),
		scanner.WithErrorFunc(p.printer.HashFailed),
	}
	if p.logger != nil {
		enumOpts = append(enumOpts, enumerate.WithLogger(p.logger))
		scanOpts = append(scanOpts, scanner.WithLogger(p.logger))
	}
	enumerator := enumerate.NewEnumerator(enumerate.DocumentExtensions, enumOpts...)
	return scanner.NewScanner(enumerator, hasher, scanOpts...)
}

func (p *Pipeline) newCopier() *copier.Copier {
	opts := []copier.CopierOption{copier.WithObserver(p.printer)}
	if p.logger != nil {
		opts = append(opts, copier.WithLogger(p.logger))
	}
	return copier.NewCopier(opts...)
}

func (p *Pipeline) reportPlan(results []*models.CopyResult) {
	for _, res := range results {
		if p.cfg.Preview && res.Status == models.StatusPlanned {
			preview, err := p.extractor.Preview(res.Source, p.cfg.PreviewLength)
			if err != nil {
				if p.logger != nil {
					p.logger.Debug("preview unavailable", zap.String("path", res.Source), zap.Error(err))
				}
				preview = "(no preview)"
			}
			res.Preview = preview
		}
		p.printer.Planned(res, res.Preview)
	}
}

// ledger runs fn against the store when one is configured and reports whether it
// succeeded. Ledger failures are reported but never stop the batch.
func (p *Pipeline) ledger(fn func() error, what string) bool {
	if p.store == nil {
		return false
	}
	if err := fn(); err != nil {
		if p.logger != nil {
			p.logger.Warn("ledger write failed", zap.String("op", what), zap.Error(err))
		}
		p.printer.Errorf("ledger: %s: %v", what, err)
		return false
	}
	return true
}
