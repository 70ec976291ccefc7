package usecase

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
)

// ReviewWithReply pairs a review with its reply, if one exists.
type ReviewWithReply struct {
	Review *entity.Review
	Reply  *entity.Reply
}

// ReviewUsecase exposes the tenant's synced reviews to the dashboard.
type ReviewUsecase interface {
	// ListReviews returns the tenant's reviews, newest first, each with its
	// reply when present.
	ListReviews(ctx context.Context, tenantID uuid.UUID) ([]*ReviewWithReply, error)
}
