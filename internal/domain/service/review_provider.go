package service

import (
	"context"
	"errors"

	"reviewhub/internal/domain/entity"
)

// ErrGrantRejected means the platform refused the authorization itself, as
// opposed to being temporarily unavailable. For a refresh this implies the
// stored refresh token is revoked and the tenant must re-authorize.
var ErrGrantRejected = errors.New("authorization grant rejected by provider")

// TokenGrant is what the identity provider's token endpoint returns for a
// code exchange or a refresh. RefreshToken is empty when the provider did
// not rotate it.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresIn    int // Seconds until the access token expires.
}

// ReviewProvider abstracts the identity-provider side of one review
// platform: building the authorization URL and talking to its token
// endpoint.
type ReviewProvider interface {
	// Provider returns which platform this client talks to.
	Provider() entity.ProviderType

	// AuthorizationURL builds the redirect URL carrying the signed state.
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for the initial token pair.
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)

	// RefreshGrant mints a new access token from a refresh token. A 4xx
	// response surfaces as ErrGrantRejected; callers must treat that as
	// terminal and prompt re-authorization.
	RefreshGrant(ctx context.Context, refreshToken string) (*TokenGrant, error)
}
