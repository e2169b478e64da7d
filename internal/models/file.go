// Package models defines core data structures for fingerprinted files, copy results, and runs.
package models

import (
	"time"

	"github.com/hyperjump/dirdiff/internal/fingerprint"
)

// FingerprintedFile pairs a content digest with the path it was read from.
// Identity is the digest alone; Path only records where one copy of the content lives.
type FingerprintedFile struct {
	Digest fingerprint.Digest `json:"digest" yaml:"digest"`
	Path   string             `json:"path" yaml:"path"`
}

// Key returns the identity key of f.
func (f FingerprintedFile) Key() string {
	return f.Digest.Key()
}

// CopyStatus is the outcome of one copy attempt.
type CopyStatus string

const (
	// StatusCopied means the destination was written completely.
	StatusCopied CopyStatus = "copied"
	// StatusFailed means nothing was written for the entry.
	StatusFailed CopyStatus = "failed"
	// StatusPlanned is used by dry runs.
	StatusPlanned CopyStatus = "planned"
)

// CopyResult records what happened to one file of the difference set.
type CopyResult struct {
	Source      string     `json:"source" yaml:"source" db:"source_path"`
	Destination string     `json:"destination" yaml:"destination" db:"dest_path"`
	Digest      string     `json:"digest" yaml:"digest" db:"digest"`
	Status      CopyStatus `json:"status" yaml:"status" db:"status"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty" db:"error"`
	Bytes       int64      `json:"bytes" yaml:"bytes" db:"bytes"`
	Preview     string     `json:"preview,omitempty" yaml:"preview,omitempty" db:"-"`
}

// Run summarizes one invocation.
type Run struct {
	ID             string    `json:"id" yaml:"id" db:"id"`
	ReferenceDir   string    `json:"reference_dir" yaml:"reference_dir" db:"reference_dir"`
	SourceDir      string    `json:"source_dir" yaml:"source_dir" db:"source_dir"`
	OutputDir      string    `json:"output_dir" yaml:"output_dir" db:"output_dir"`
	Algorithm      string    `json:"algorithm" yaml:"algorithm" db:"algorithm"`
	DryRun         bool      `json:"dry_run" yaml:"dry_run" db:"dry_run"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at" db:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at" db:"finished_at"`
	SourceFiles    int       `json:"source_files" yaml:"source_files" db:"source_files"`
	ReferenceFiles int       `json:"reference_files" yaml:"reference_files" db:"reference_files"`
	Unique         int       `json:"unique" yaml:"unique" db:"unique_files"`
	Copied         int       `json:"copied" yaml:"copied" db:"copied"`
	Failed         int       `json:"failed" yaml:"failed" db:"failed"`
}

// Tally updates the copied/failed counters from results.
func (r *Run) Tally(results []*CopyResult) {
	r.Copied, r.Failed = 0, 0
	for _, res := range results {
		switch res.Status {
		case StatusCopied:
			r.Copied++
		case StatusFailed:
			r.Failed++
		}
	}
}
