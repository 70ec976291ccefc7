package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies an external review platform.
type ProviderType string

const (
	// ProviderTypeGoogle is the Google Business Profile review platform.
	ProviderTypeGoogle ProviderType = "google"
)

// ExternalAccount links a tenant to an account on an external review
// platform. One tenant may connect several accounts.
type ExternalAccount struct {
	ID                uuid.UUID    // The unique ID for this connection record.
	TenantID          uuid.UUID    // Links the connection to the owning tenant.
	Provider          ProviderType // The review platform, e.g. "google".
	ProviderAccountID string       // The account's unique ID on the external platform.
	Email             string       // The email the account was authorized with, for display.
	CreatedAt         time.Time
}

// Credential is the access/refresh token pair owned by exactly one external
// account. It is mutated only by the credential usecase and persisted on
// every refresh.
type Credential struct {
	ID           uuid.UUID
	AccountID    uuid.UUID // Links the pair to its ExternalAccount.
	AccessToken  string    // Short-lived bearer token for the platform APIs.
	RefreshToken string    // Long-lived token used to mint new access tokens.
	Scope        string    // Space-separated scopes granted during the handshake.
	ExpiresAt    time.Time // When AccessToken stops being accepted upstream.
	UpdatedAt    time.Time
}

// ExpiresWithin reports whether the access token expires inside the given
// safety margin. A token already past its deadline also reports true.
func (c *Credential) ExpiresWithin(margin time.Duration) bool {
	return time.Now().Add(margin).After(c.ExpiresAt)
}
