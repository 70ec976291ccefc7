package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims for the dashboard session JWTs.
type Claims struct {
	TenantID uuid.UUID
	Type     string // "access" or "refresh".
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating the
// JWTs that authenticate tenants against the inbound API. This abstracts
// the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a tenant.
	GenerateTokens(tenantID uuid.UUID) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks the validity of an access token string.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
