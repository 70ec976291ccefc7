package service

import (
	"context"

	"reviewhub/internal/domain/entity"
)

// ReplyGenerator produces a suggested reply text for a review via the
// generative backend. Quota enforcement happens in the usecase before this
// is called; a failed generation must not consume quota.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, review *entity.Review) (string, error)
}
