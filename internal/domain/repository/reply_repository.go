package repository

import (
	"context"

	"reviewhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrReplyNotFound is returned when a review has no reply yet.
var ErrReplyNotFound = errors.New("reply not found")

// ReplyRepository defines persistence operations for reply drafts.
type ReplyRepository interface {
	// CreateReply persists a new reply draft for a review.
	CreateReply(ctx context.Context, reply *entity.Reply) error

	// FindReplyByReviewID retrieves the reply attached to a review.
	FindReplyByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.Reply, error)

	// UpdateReply persists text and status changes of an existing reply.
	UpdateReply(ctx context.Context, reply *entity.Reply) error
}
