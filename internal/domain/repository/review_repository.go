package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrReviewNotFound is returned when a review is not found.
var ErrReviewNotFound = errors.New("review not found")

// ErrReviewAlreadyExists is returned when an insert collides with a stored
// review carrying the same (tenant, source, external id) identity.
var ErrReviewAlreadyExists = errors.New("review already exists")

// ReviewRepository defines persistence operations for synced reviews.
// Uniqueness of (tenant_id, source, external_id) is enforced by the storage
// layer so concurrent ingestion of the same record cannot duplicate it.
type ReviewRepository interface {
	// CreateReview persists a newly ingested review.
	CreateReview(ctx context.Context, review *entity.Review) error

	// UpdateSourceFields overwrites the fields owned by the external source
	// (rating, text) without touching anything edited locally.
	UpdateSourceFields(ctx context.Context, review *entity.Review) error

	// FindReviewByID retrieves a review by its unique ID.
	FindReviewByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)

	// FindReviewByExternalID matches a review by its platform identity
	// scoped to a tenant.
	FindReviewByExternalID(ctx context.Context, tenantID uuid.UUID, source entity.ProviderType, externalID string) (*entity.Review, error)

	// FindReviewsByTenantID lists a tenant's reviews, newest first.
	FindReviewsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.Review, error)

	// IncrementGenerationCount bumps the per-review generation counter after
	// a draft was successfully produced.
	IncrementGenerationCount(ctx context.Context, id uuid.UUID) error
}
