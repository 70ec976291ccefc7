package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrAccountNotFound is returned when an external account is not found.
var ErrAccountNotFound = errors.New("external account not found")

// AccountRepository defines persistence operations for external-platform
// account connections.
type AccountRepository interface {
	// CreateAccount persists a new account connection.
	CreateAccount(ctx context.Context, account *entity.ExternalAccount) error

	// FindAccountByID retrieves a connection by its unique ID.
	FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.ExternalAccount, error)

	// FindAccountByProviderID retrieves a tenant's connection for a given
	// platform account, used to make re-authorization idempotent.
	FindAccountByProviderID(ctx context.Context, tenantID uuid.UUID, provider entity.ProviderType, providerAccountID string) (*entity.ExternalAccount, error)

	// FindAccountsByTenantID retrieves all connections for a tenant.
	FindAccountsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.ExternalAccount, error)
}
