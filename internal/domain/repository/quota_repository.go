package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
)

// QuotaRepository defines persistence operations for the per-tenant daily
// generation counter.
type QuotaRepository interface {
	// FindQuota retrieves the tenant's counter row. A tenant with no row yet
	// gets a zero counter for the given day.
	FindQuota(ctx context.Context, tenantID uuid.UUID, day string) (*entity.GenerationQuota, error)

	// IncrementDaily atomically increments the tenant's counter for the
	// given day, resetting it first when the stored row belongs to an
	// earlier day. Returns the new count.
	IncrementDaily(ctx context.Context, tenantID uuid.UUID, day string) (int, error)
}
