package service

import (
	"context"
	"time"
)

// RemoteAccount is a business account as reported by the platform directory.
type RemoteAccount struct {
	Name        string // Resource name, e.g. "accounts/123".
	AccountID   string
	DisplayName string
	Email       string
}

// RemoteLocation is one business listing under an account.
type RemoteLocation struct {
	Name        string // Resource name, e.g. "accounts/123/locations/456".
	LocationID  string
	DisplayName string
}

// RemoteReview is a review as returned by the directory API, already
// validated and defaulted at the boundary. Untyped payloads never propagate
// past the directory client.
type RemoteReview struct {
	ExternalID   string
	Rating       int // 1..5, 0 when the platform sent no usable rating.
	Text         string
	ReviewerName string
	CreatedAt    time.Time
}

// DirectoryService queries the external platform for the account's business
// entities and their reviews, using a valid access token. A 404 on a
// sub-resource means "no listings", not a failure.
type DirectoryService interface {
	ListAccounts(ctx context.Context, accessToken string) ([]*RemoteAccount, error)
	ListLocations(ctx context.Context, accessToken, accountName string) ([]*RemoteLocation, error)
	ListReviews(ctx context.Context, accessToken, locationName string) ([]*RemoteReview, error)

	// PutReply upserts the business reply on a review. reviewName is the
	// review's full resource name on the platform.
	PutReply(ctx context.Context, accessToken, reviewName, comment string) error
}
