package usecase

import (
	"context"

	"github.com/google/uuid"
)

// CredentialUsecase owns the lifecycle of stored access/refresh token pairs.
type CredentialUsecase interface {
	// EnsureValid returns an access token that is valid for at least the
	// safety margin, refreshing and persisting it first when needed.
	// Concurrent callers for the same account share a single refresh.
	// A rejected refresh surfaces as a reauthorization-required error and
	// drops the stored pair.
	EnsureValid(ctx context.Context, accountID uuid.UUID) (string, error)
}
