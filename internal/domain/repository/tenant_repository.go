// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTenantNotFound is returned when a tenant is not found.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository defines persistence operations for tenant workspaces.
type TenantRepository interface {
	// FindByID retrieves a tenant by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)

	// FindByEmail retrieves a tenant by its login email.
	FindByEmail(ctx context.Context, email string) (*entity.Tenant, error)

	// UpdateDeviceToken replaces the tenant's registered push token.
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, deviceToken string) error
}
