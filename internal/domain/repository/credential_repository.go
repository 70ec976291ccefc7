package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrCredentialNotFound is returned when no credential pair is stored for an account.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines persistence operations for access/refresh
// token pairs. A pair is owned by exactly one external account.
type CredentialRepository interface {
	// UpsertCredential creates or replaces the credential pair of an account.
	// Access token and expiry are always written together.
	UpsertCredential(ctx context.Context, credential *entity.Credential) error

	// FindCredentialByAccountID retrieves the stored pair for an account.
	FindCredentialByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error)

	// DeleteCredentialByAccountID removes the stored pair, forcing
	// re-authorization on the next use.
	DeleteCredentialByAccountID(ctx context.Context, accountID uuid.UUID) error
}
