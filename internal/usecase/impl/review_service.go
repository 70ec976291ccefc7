package impl

import (
	"context"
	"log/slog"

	"reviewhub/internal/domain/repository"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// reviewService implements the ReviewUsecase interface.
type reviewService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(txManager repository.TransactionManager, logger *slog.Logger) usecase.ReviewUsecase {
	return &reviewService{
		txManager: txManager,
		logger:    logger,
	}
}

// ListReviews returns the tenant's reviews, newest first, each paired with
// its reply when one exists.
func (srv *reviewService) ListReviews(ctx context.Context, tenantID uuid.UUID) ([]*usecase.ReviewWithReply, error) {
	var result []*usecase.ReviewWithReply

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviews, err := repoFactory.ReviewRepo().FindReviewsByTenantID(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list reviews")
		}

		result = make([]*usecase.ReviewWithReply, 0, len(reviews))
		for _, review := range reviews {
			item := &usecase.ReviewWithReply{Review: review}

			reply, err := repoFactory.ReplyRepo().FindReplyByReviewID(ctx, review.ID)
			switch {
			case err == nil:
				item.Reply = reply
			case errors.Is(err, repository.ErrReplyNotFound):
				// A review without a reply is the normal case.
			default:
				return errors.Wrap(err, "failed to find reply")
			}

			result = append(result, item)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
