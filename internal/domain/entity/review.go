package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer review pulled from an external platform. It is
// uniquely identified by (Source, ExternalID) within a tenant. Ingestion
// creates it and only updates the fields the source itself changes.
type Review struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	AccountID    uuid.UUID    // The connection the review was synced through.
	Source       ProviderType // The platform the review originates from.
	ExternalID   string       // The review's ID on the external platform.
	Rating       int          // Star rating 1..5.
	Text         string       // Review body, may be empty for rating-only reviews.
	ReviewerName string
	CreatedAt    time.Time // When the review was written on the platform.
	UpdatedAt    time.Time

	// GenerationCount tracks how many AI drafts were produced for this
	// review. The per-review generation ceiling compares against it.
	GenerationCount int
}

// SourceFieldsEqual reports whether the fields owned by the external source
// match the incoming record. Used by ingestion to classify a record as
// unchanged versus updated.
func (r *Review) SourceFieldsEqual(rating int, text string) bool {
	return r.Rating == rating && r.Text == text
}
