package storage

import (
	"context"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Storage is the journal of submit runs.
// It only records what was sent; the aggregation itself keeps no state.
type Storage interface {
	// Batch operations
	SaveBatch(ctx context.Context, batch *domain.SubmissionBatch) error
	GetBatch(ctx context.Context, id string) (*domain.SubmissionBatch, error)
	ListBatches(ctx context.Context, limit int) ([]*domain.SubmissionBatch, error)

	// Submitted lines, in submission order
	SaveSubmissions(ctx context.Context, batchID string, subs []domain.Submission) error
	GetSubmissions(ctx context.Context, batchID string) ([]domain.Submission, error)

	// Migration
	Migrate(ctx context.Context) error

	// Close closes the storage connection
	Close() error
}

// DefaultListLimit caps ListBatches when no positive limit is given.
const DefaultListLimit = 50
