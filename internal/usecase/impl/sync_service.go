package impl

import (
	"context"
	"log/slog"

	deliverycontext "reviewhub/internal/delivery/context"
	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/usecase"

	"github.com/pkg/errors"
)

// syncService implements the SyncUsecase interface.
type syncService struct {
	txManager    repository.TransactionManager
	credentialUC usecase.CredentialUsecase
	directory    service.DirectoryService
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// NewSyncService is the constructor for syncService.
func NewSyncService(
	txManager repository.TransactionManager,
	credentialUC usecase.CredentialUsecase,
	directory service.DirectoryService,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.SyncUsecase {
	return &syncService{
		txManager:    txManager,
		credentialUC: credentialUC,
		directory:    directory,
		publisher:    publisher,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *syncService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SyncReviews pulls the connection's reviews from the platform and merges
// them into storage. Records are classified as imported, updated or skipped;
// reviews the platform no longer returns are left untouched.
func (srv *syncService) SyncReviews(ctx context.Context, input usecase.SyncInput) (*usecase.SyncSummary, error) {
	account, err := srv.loadAccount(ctx, input)
	if err != nil {
		return nil, err
	}

	accessToken, err := srv.credentialUC.EnsureValid(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	remoteReviews, err := srv.collectRemoteReviews(ctx, accessToken, account)
	if err != nil {
		return nil, err
	}

	summary := &usecase.SyncSummary{}
	newIDs := make([]string, 0, len(remoteReviews))

	// One transaction per batch keeps writes to the same external identity
	// sequential; the unique index on (tenant_id, source, external_id)
	// backstops concurrent syncs of the same connection.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		for _, remote := range remoteReviews {
			review, isNew, err := srv.ingest(ctx, repoFactory.ReviewRepo(), account, remote, summary)
			if err != nil {
				return err
			}
			if isNew {
				newIDs = append(newIDs, review.ID.String())
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Review sync failed", slog.Any("error", err), slog.Any("account_id", account.ID))

		return nil, err
	}

	srv.log(ctx).Info("Review sync finished",
		slog.Any("tenant_id", input.TenantID),
		slog.Any("account_id", account.ID),
		slog.Int("imported", summary.Imported),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
	)

	if summary.Imported > 0 {
		srv.publishSummary(ctx, account, summary, newIDs)
	}

	return summary, nil
}

// loadAccount resolves the connection and checks it belongs to the tenant.
func (srv *syncService) loadAccount(ctx context.Context, input usecase.SyncInput) (*entity.ExternalAccount, error) {
	var account *entity.ExternalAccount

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindAccountByID(ctx, input.AccountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "unknown account")
			}

			return errors.Wrap(err, "failed to find account")
		}
		if found.TenantID != input.TenantID {
			return errors.Wrap(domainerrors.ErrForbidden, "account does not belong to tenant")
		}
		account = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// collectRemoteReviews walks the platform directory: the account's listings,
// then every listing's reviews. A listing-less account yields an empty batch.
func (srv *syncService) collectRemoteReviews(ctx context.Context, accessToken string, account *entity.ExternalAccount) ([]*service.RemoteReview, error) {
	accountName := "accounts/" + account.ProviderAccountID

	locations, err := srv.directory.ListLocations(ctx, accessToken, accountName)
	if err != nil {
		return nil, srv.wrapDirectoryError(err, "failed to list locations")
	}

	var reviews []*service.RemoteReview
	for _, location := range locations {
		locationReviews, err := srv.directory.ListReviews(ctx, accessToken, location.Name)
		if err != nil {
			return nil, srv.wrapDirectoryError(err, "failed to list reviews")
		}
		reviews = append(reviews, locationReviews...)
	}

	return reviews, nil
}

// wrapDirectoryError maps a rejected grant to a reconnect prompt and
// everything else to an upstream failure.
func (srv *syncService) wrapDirectoryError(err error, message string) error {
	if errors.Is(err, service.ErrGrantRejected) {
		return errors.Wrap(domainerrors.ErrReauthorizationRequired, message)
	}

	return errors.Wrap(domainerrors.ErrUpstreamUnavailable, message)
}

// ingest merges one remote record. Re-ingesting an unchanged record is a
// no-op; changed source-owned fields are updated in place without touching
// the locally edited reply.
func (srv *syncService) ingest(
	ctx context.Context,
	reviewRepo repository.ReviewRepository,
	account *entity.ExternalAccount,
	remote *service.RemoteReview,
	summary *usecase.SyncSummary,
) (*entity.Review, bool, error) {
	review, err := reviewRepo.FindReviewByExternalID(ctx, account.TenantID, account.Provider, remote.ExternalID)
	switch {
	case err == nil:
		if review.SourceFieldsEqual(remote.Rating, remote.Text) {
			summary.Skipped++

			return review, false, nil
		}

		review.Rating = remote.Rating
		review.Text = remote.Text
		if err := reviewRepo.UpdateSourceFields(ctx, review); err != nil {
			return nil, false, errors.Wrap(err, "failed to update review source fields")
		}
		summary.Updated++

		return review, false, nil

	case errors.Is(err, repository.ErrReviewNotFound):
		review = &entity.Review{
			TenantID:     account.TenantID,
			AccountID:    account.ID,
			Source:       account.Provider,
			ExternalID:   remote.ExternalID,
			Rating:       remote.Rating,
			Text:         remote.Text,
			ReviewerName: remote.ReviewerName,
			CreatedAt:    remote.CreatedAt,
		}
		if err := reviewRepo.CreateReview(ctx, review); err != nil {
			if errors.Is(err, repository.ErrReviewAlreadyExists) {
				// A concurrent sync inserted the same identity first.
				summary.Skipped++

				return review, false, nil
			}

			return nil, false, errors.Wrap(err, "failed to create review")
		}
		summary.Imported++

		return review, true, nil

	default:
		return nil, false, errors.Wrap(err, "failed to find review by external id")
	}
}

// publishSummary emits the sync event for downstream consumers (the push
// worker). Publishing is best effort; a failure never fails the sync.
func (srv *syncService) publishSummary(ctx context.Context, account *entity.ExternalAccount, summary *usecase.SyncSummary, newIDs []string) {
	event := &service.SyncEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		TenantID:  account.TenantID.String(),
		AccountID: account.ID.String(),
		Provider:  string(account.Provider),
		Imported:  summary.Imported,
		Updated:   summary.Updated,
		Skipped:   summary.Skipped,
		ReviewIDs: newIDs,
	}

	if err := srv.publisher.PublishSyncEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish sync event", slog.Any("error", err))
	}
}
