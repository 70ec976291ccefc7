package usecase

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
)

// StartConnectInput starts the delegated-authorization handshake for a tenant.
// AccountID is set when re-authorizing an existing connection.
type StartConnectInput struct {
	TenantID   uuid.UUID
	AccountID  uuid.UUID
	ReturnPath string
}

// StartConnectOutput carries the provider consent URL the tenant is sent to.
type StartConnectOutput struct {
	RedirectURL string
}

// CompleteConnectInput is the provider callback: the signed state issued at
// the start of the handshake plus the authorization code.
type CompleteConnectInput struct {
	State string
	Code  string
}

// CompleteConnectOutput returns the connected account and where to send the
// tenant afterwards.
type CompleteConnectOutput struct {
	Account    *entity.ExternalAccount
	ReturnPath string
}

// ConnectUsecase drives the external-platform connection flow.
type ConnectUsecase interface {
	// StartConnect issues a signed state token and builds the authorization
	// redirect for the tenant.
	StartConnect(ctx context.Context, input StartConnectInput) (*StartConnectOutput, error)

	// CompleteConnect verifies the returned state, exchanges the code and
	// persists the account connection together with its credential pair.
	// An unverifiable state is an invalid request, never a crash.
	CompleteConnect(ctx context.Context, input CompleteConnectInput) (*CompleteConnectOutput, error)

	// ListConnections returns the tenant's connected accounts.
	ListConnections(ctx context.Context, tenantID uuid.UUID) ([]*entity.ExternalAccount, error)
}
