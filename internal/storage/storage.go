// Package storage defines the persistence interface for the run ledger.
package storage

import (
	"context"

	"github.com/hyperjump/dirdiff/internal/models"
)

// Storage records runs and their copy results. The ledger is write-only for a
// run; nothing in a run reads it back.
type Storage interface {
	CreateRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, run *models.Run) error
	RecordResults(ctx context.Context, runID string, results []*models.CopyResult) error
	Close() error
}
