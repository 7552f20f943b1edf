package efficiency

import (
	"context"
	"time"
)

// Repository persists prediction history for audit and offline evaluation
type Repository interface {
	// Store records one prediction
	Store(ctx context.Context, record *PredictionRecord) error

	// GetRecent retrieves the most recent predictions, newest first
	GetRecent(ctx context.Context, limit int) ([]PredictionRecord, error)

	// GetHistory retrieves predictions since a given time, newest first
	GetHistory(ctx context.Context, since time.Time) ([]PredictionRecord, error)
}
