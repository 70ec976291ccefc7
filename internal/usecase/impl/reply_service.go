package impl

import (
	"context"
	"log/slog"
	"time"

	"reviewhub/config"
	deliverycontext "reviewhub/internal/delivery/context"
	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultPerReviewCap = 5
	defaultDailyCap     = 100
)

// replyService implements the ReplyUsecase interface.
type replyService struct {
	txManager    repository.TransactionManager
	credentialUC usecase.CredentialUsecase
	directory    service.DirectoryService
	generator    service.ReplyGenerator
	logger       *slog.Logger

	perReviewCap int
	dailyCap     int
	now          func() time.Time
}

// NewReplyService is the constructor for replyService.
func NewReplyService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	credentialUC usecase.CredentialUsecase,
	directory service.DirectoryService,
	generator service.ReplyGenerator,
	logger *slog.Logger,
) usecase.ReplyUsecase {
	perReviewCap := defaultPerReviewCap
	dailyCap := defaultDailyCap
	if cfg != nil && cfg.Generation != nil {
		if cfg.Generation.PerReviewCap > 0 {
			perReviewCap = cfg.Generation.PerReviewCap
		}
		if cfg.Generation.DailyCap > 0 {
			dailyCap = cfg.Generation.DailyCap
		}
	}

	return &replyService{
		txManager:    txManager,
		credentialUC: credentialUC,
		directory:    directory,
		generator:    generator,
		logger:       logger,
		perReviewCap: perReviewCap,
		dailyCap:     dailyCap,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *replyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GenerateReply produces an AI draft for the review. Both ceilings are
// checked before the backend call; quota is charged only after the call
// succeeds, so a failed generation costs nothing.
func (srv *replyService) GenerateReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error) {
	review, err := srv.loadReview(ctx, tenantID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := srv.checkCeilings(ctx, review); err != nil {
		return nil, err
	}

	text, err := srv.generator.GenerateReply(ctx, review)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamUnavailable, "reply generation failed")
	}

	var reply *entity.Reply
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		updated, err := srv.storeDraft(ctx, repoFactory.ReplyRepo(), review, text)
		if err != nil {
			return err
		}
		reply = updated

		// The generation succeeded; charge both counters now. The daily
		// increment rolls a stale day over atomically in the store.
		if err := repoFactory.ReviewRepo().IncrementGenerationCount(ctx, review.ID); err != nil {
			return errors.Wrap(err, "failed to increment review generation count")
		}
		if _, err := repoFactory.QuotaRepo().IncrementDaily(ctx, tenantID, entity.QuotaDay(srv.now())); err != nil {
			return errors.Wrap(err, "failed to increment daily quota")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Reply draft generated",
		slog.Any("tenant_id", tenantID),
		slog.Any("review_id", reviewID),
	)

	return reply, nil
}

// checkCeilings enforces the per-review cap first, then the per-tenant daily
// cap; a capped review rejects regardless of the tenant's daily count.
func (srv *replyService) checkCeilings(ctx context.Context, review *entity.Review) error {
	if review.GenerationCount >= srv.perReviewCap {
		return domainerrors.NewRateLimitError(
			domainerrors.ReasonReviewLimit,
			"此評論的產生次數已達上限,請改為編輯現有草稿",
			0,
		)
	}

	now := srv.now()

	var quota *entity.GenerationQuota
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.QuotaRepo().FindQuota(ctx, review.TenantID, entity.QuotaDay(now))
		if err != nil {
			return errors.Wrap(err, "failed to read daily quota")
		}
		quota = found

		return nil
	})
	if err != nil {
		return err
	}

	if quota.Count >= srv.dailyCap {
		return domainerrors.NewRateLimitError(
			domainerrors.ReasonDailyLimit,
			"今日的產生額度已用完,請明天再試",
			entity.NextQuotaReset(now).Sub(now),
		)
	}

	return nil
}

// storeDraft writes the generated text as the review's draft, creating the
// reply on first generation. A posted reply cannot be regenerated.
func (srv *replyService) storeDraft(ctx context.Context, replyRepo repository.ReplyRepository, review *entity.Review, text string) (*entity.Reply, error) {
	reply, err := replyRepo.FindReplyByReviewID(ctx, review.ID)
	switch {
	case err == nil:
		if err := reply.Edit(text); err != nil {
			return nil, errors.Wrap(domainerrors.ErrReplyAlreadyPosted, "cannot regenerate a posted reply")
		}
		if err := replyRepo.UpdateReply(ctx, reply); err != nil {
			return nil, errors.Wrap(err, "failed to update reply draft")
		}

		return reply, nil

	case errors.Is(err, repository.ErrReplyNotFound):
		reply = &entity.Reply{
			ReviewID: review.ID,
			TenantID: review.TenantID,
			Text:     text,
			Status:   entity.ReplyStatusDraft,
		}
		if err := replyRepo.CreateReply(ctx, reply); err != nil {
			return nil, errors.Wrap(err, "failed to create reply draft")
		}

		return reply, nil

	default:
		return nil, errors.Wrap(err, "failed to find reply")
	}
}

// EditReply replaces the reply text. The edit invalidates a prior approval
// by forcing the status back to draft; a posted reply rejects the edit.
func (srv *replyService) EditReply(ctx context.Context, input usecase.EditReplyInput) (*entity.Reply, error) {
	if input.Text == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("reply text must not be empty")
	}

	var reply *entity.Reply
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := srv.loadReply(ctx, repoFactory, input.TenantID, input.ReviewID)
		if err != nil {
			return err
		}

		if err := found.Edit(input.Text); err != nil {
			return errors.Wrap(domainerrors.ErrReplyAlreadyPosted, "posted reply rejects edits")
		}

		if err := repoFactory.ReplyRepo().UpdateReply(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update reply")
		}
		reply = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reply, nil
}

// ApproveReply signs off a draft for publication.
func (srv *replyService) ApproveReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error) {
	var reply *entity.Reply
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := srv.loadReply(ctx, repoFactory, tenantID, reviewID)
		if err != nil {
			return err
		}

		if err := found.Transition(entity.ReplyStatusApproved); err != nil {
			return errors.Wrap(domainerrors.ErrReplyTransition, "only a draft can be approved")
		}

		if err := repoFactory.ReplyRepo().UpdateReply(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update reply")
		}
		reply = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reply, nil
}

// PostReply publishes an approved reply to the platform. Upstream success
// moves it to posted; upstream failure marks it failed and surfaces the
// error.
func (srv *replyService) PostReply(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Reply, error) {
	var (
		review *entity.Review
		reply  *entity.Reply
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		foundReview, err := srv.findTenantReview(ctx, repoFactory, tenantID, reviewID)
		if err != nil {
			return err
		}
		review = foundReview

		foundReply, err := repoFactory.ReplyRepo().FindReplyByReviewID(ctx, reviewID)
		if err != nil {
			if errors.Is(err, repository.ErrReplyNotFound) {
				return errors.Wrap(domainerrors.ErrReplyNotFound, "no reply to post")
			}

			return errors.Wrap(err, "failed to find reply")
		}
		if foundReply.Status != entity.ReplyStatusApproved {
			return errors.Wrap(domainerrors.ErrReplyTransition, "only an approved reply can be posted")
		}
		reply = foundReply

		return nil
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := srv.credentialUC.EnsureValid(ctx, review.AccountID)
	if err != nil {
		return nil, err
	}

	if err := srv.directory.PutReply(ctx, accessToken, review.ExternalID, reply.Text); err != nil {
		srv.markFailed(ctx, reply)
		srv.log(ctx).Error("Failed to post reply upstream", slog.Any("error", err), slog.Any("review_id", reviewID))

		return nil, errors.Wrap(domainerrors.ErrUpstreamUnavailable, "failed to post reply")
	}

	postedAt := srv.now()
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := reply.Transition(entity.ReplyStatusPosted); err != nil {
			return errors.Wrap(domainerrors.ErrReplyTransition, "reply state changed during post")
		}
		reply.PostedAt = &postedAt

		return repoFactory.ReplyRepo().UpdateReply(ctx, reply)
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Reply posted",
		slog.Any("tenant_id", tenantID),
		slog.Any("review_id", reviewID),
	)

	return reply, nil
}

// markFailed records an upstream publish failure. Best effort: the caller
// already surfaces the upstream error.
func (srv *replyService) markFailed(ctx context.Context, reply *entity.Reply) {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := reply.Transition(entity.ReplyStatusFailed); err != nil {
			return err
		}

		return repoFactory.ReplyRepo().UpdateReply(ctx, reply)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to mark reply as failed", slog.Any("error", err), slog.Any("reply_id", reply.ID))
	}
}

// loadReview reads a review and checks tenant ownership.
func (srv *replyService) loadReview(ctx context.Context, tenantID, reviewID uuid.UUID) (*entity.Review, error) {
	var review *entity.Review
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := srv.findTenantReview(ctx, repoFactory, tenantID, reviewID)
		if err != nil {
			return err
		}
		review = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// findTenantReview resolves a review inside an open transaction and rejects
// cross-tenant access.
func (srv *replyService) findTenantReview(ctx context.Context, repoFactory repository.RepositoryFactory, tenantID, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := repoFactory.ReviewRepo().FindReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, errors.Wrap(domainerrors.ErrReviewNotFound, "unknown review")
		}

		return nil, errors.Wrap(err, "failed to find review")
	}
	if review.TenantID != tenantID {
		return nil, errors.Wrap(domainerrors.ErrForbidden, "review does not belong to tenant")
	}

	return review, nil
}

// loadReply resolves the reply of a tenant-owned review.
func (srv *replyService) loadReply(ctx context.Context, repoFactory repository.RepositoryFactory, tenantID, reviewID uuid.UUID) (*entity.Reply, error) {
	if _, err := srv.findTenantReview(ctx, repoFactory, tenantID, reviewID); err != nil {
		return nil, err
	}

	reply, err := repoFactory.ReplyRepo().FindReplyByReviewID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReplyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrReplyNotFound, "review has no reply yet")
		}

		return nil, errors.Wrap(err, "failed to find reply")
	}

	return reply, nil
}
