// Package scanner builds fingerprinted file sets from directory trees.
package scanner

import (
	"context"

	"github.com/hyperjump/dirdiff/internal/enumerate"
	"github.com/hyperjump/dirdiff/internal/fileset"
	"github.com/hyperjump/dirdiff/internal/fingerprint"
	"github.com/hyperjump/dirdiff/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats counts what one Scan saw.
type Stats struct {
	Matched    int // files the enumerator produced
	Failed     int // files that could not be hashed
	Duplicates int // hashed files whose digest was already in the set
}

// Scanner enumerates a tree and fingerprints every matching file.
type Scanner struct {
	enumerator *enumerate.Enumerator
	hasher     *fingerprint.Hasher
	hashFile   func(string) (fingerprint.Digest, error)
	workers    int
	onError    func(path string, err error)
	logger     *zap.Logger // optional; when set, logs debug events
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for debug output (files hashed, duplicates).
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithWorkers sets how many files are hashed concurrently. Values below 2 hash sequentially.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) { s.workers = n }
}

// WithErrorFunc sets the callback for files that cannot be hashed. The file is skipped.
func WithErrorFunc(fn func(path string, err error)) ScannerOption {
	return func(s *Scanner) { s.onError = fn }
}

// NewScanner creates a scanner from an enumerator and a hasher.
func NewScanner(enumerator *enumerate.Enumerator, hasher *fingerprint.Hasher, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		enumerator: enumerator,
		hasher:     hasher,
		workers:    1,
	}
	s.hashFile = hasher.File
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the set of distinct contents under root. Files are added in
// enumeration order regardless of worker count, so the representative kept for
// duplicate contents is the same for sequential and concurrent scans.
// Only context cancellation is returned as an error; per-file failures are reported and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) (*fileset.Set, Stats, error) {
	if s.workers > 1 {
		return s.scanConcurrent(ctx, root)
	}
	set := fileset.New()
	var stats Stats
	for path := range s.enumerator.Files(root) {
		if err := ctx.Err(); err != nil {
			return set, stats, err
		}
		stats.Matched++
		d, err := s.hashFile(path)
		s.add(set, &stats, path, d, err)
	}
	s.logDone(root, set, stats)
	return set, stats, nil
}

type hashed struct {
	digest fingerprint.Digest
	err    error
}

func (s *Scanner) scanConcurrent(ctx context.Context, root string) (*fileset.Set, Stats, error) {
	paths := enumerate.Collect(s.enumerator.Files(root))
	results := make([]hashed, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := s.hashFile(path)
			results[i] = hashed{digest: d, err: err}
			return nil
		})
	}
	err := g.Wait()

	set := fileset.New()
	stats := Stats{Matched: len(paths)}
	if err != nil {
		return set, stats, err
	}
	for i, path := range paths {
		s.add(set, &stats, path, results[i].digest, results[i].err)
	}
	s.logDone(root, set, stats)
	return set, stats, nil
}

func (s *Scanner) add(set *fileset.Set, stats *Stats, path string, d fingerprint.Digest, err error) {
	if err != nil {
		stats.Failed++
		if s.logger != nil {
			s.logger.Debug("scanner hash failed", zap.String("path", path), zap.Error(err))
		}
		if s.onError != nil {
			s.onError(path, err)
		}
		return
	}
	if !set.Add(models.FingerprintedFile{Digest: d, Path: path}) {
		stats.Duplicates++
		if s.logger != nil {
			s.logger.Debug("scanner duplicate content", zap.String("path", path), zap.String("digest", d.Key()))
		}
		return
	}
	if s.logger != nil {
		s.logger.Debug("scanner hashed file", zap.String("path", path), zap.String("digest", d.Key()))
	}
}

func (s *Scanner) logDone(root string, set *fileset.Set, stats Stats) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("scanner finished",
		zap.String("root", root),
		zap.Int("matched", stats.Matched),
		zap.Int("distinct", set.Len()),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("failed", stats.Failed),
		zap.Int("workers", s.workers),
	)
}
