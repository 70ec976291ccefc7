package usecase

import (
	"context"

	"github.com/google/uuid"
)

// SyncInput identifies which connection to pull reviews through.
type SyncInput struct {
	TenantID  uuid.UUID
	AccountID uuid.UUID
}

// SyncSummary aggregates what one ingestion run did.
type SyncSummary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// SyncUsecase runs the review ingestion pipeline for one connection.
type SyncUsecase interface {
	// SyncReviews walks the platform directory and ingests every review:
	// unknown records are inserted, records whose source-owned fields
	// changed are updated in place, unchanged records are skipped. Local
	// replies and reviews the platform no longer returns are left alone.
	SyncReviews(ctx context.Context, input SyncInput) (*SyncSummary, error)
}
