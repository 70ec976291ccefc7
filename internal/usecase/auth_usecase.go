// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required for a tenant to log in.
type LoginInput struct {
	Email    string
	Password string

	// ClientAddr is the remote address the attempt came from. The login
	// guard throttles per address, so one source cannot spray attempts
	// across many emails and a third party cannot lock a tenant out.
	ClientAddr string
}

// --- Output DTOs ---

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	Tenant       *entity.Tenant
}

// AuthUsecase defines the interface for tenant authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Login validates the tenant's credentials and issues a token pair. Every
	// attempt passes through the login guard first; a guard rejection
	// surfaces as a rate-limit error before any credential check happens.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// RegisterDeviceToken stores the tenant's push token so the worker can
	// deliver new-review notifications. An empty token disables push.
	RegisterDeviceToken(ctx context.Context, tenantID uuid.UUID, deviceToken string) error
}
