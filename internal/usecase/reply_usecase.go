package usecase

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
)

// EditReplyInput replaces the reply text of a review.
type EditReplyInput struct {
	TenantID uuid.UUID
	ReviewID uuid.UUID
	Text     string
}

// ReplyUsecase owns the reply drafting workflow: AI generation, manual
// editing, approval and upstream publication. It is the only writer of reply
// state; ingestion never touches replies.
type ReplyUsecase interface {
	// GenerateReply produces an AI draft for the review, gated by the
	// per-review and per-tenant-per-day generation ceilings. Quota is only
	// consumed after the backend call succeeds.
	GenerateReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error)

	// EditReply replaces the text and forces the reply back to draft.
	// Editing a posted reply is forbidden.
	EditReply(ctx context.Context, input EditReplyInput) (*entity.Reply, error)

	// ApproveReply signs off a draft for publication.
	ApproveReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error)

	// PostReply publishes an approved reply to the platform. Upstream
	// success moves it to posted; upstream failure marks it failed.
	PostReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error)
}
