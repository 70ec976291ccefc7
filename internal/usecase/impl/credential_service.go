package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "reviewhub/internal/delivery/context"
	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// expiryMargin is the safety window before the upstream deadline within
// which an access token is already treated as expired.
const expiryMargin = 300 * time.Second

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	txManager repository.TransactionManager
	provider  service.ReviewProvider
	logger    *slog.Logger

	// refreshGroup collapses concurrent refreshes of the same account into
	// one provider call.
	refreshGroup singleflight.Group
}

// NewCredentialService is the constructor for credentialService.
func NewCredentialService(
	txManager repository.TransactionManager,
	provider service.ReviewProvider,
	logger *slog.Logger,
) usecase.CredentialUsecase {
	return &credentialService{
		txManager: txManager,
		provider:  provider,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// EnsureValid returns an access token valid for at least the safety margin.
func (srv *credentialService) EnsureValid(ctx context.Context, accountID uuid.UUID) (string, error) {
	credential, err := srv.loadCredential(ctx, accountID)
	if err != nil {
		return "", err
	}

	// Fresh enough: hand out the stored token without any network call.
	if !credential.ExpiresWithin(expiryMargin) {
		return credential.AccessToken, nil
	}

	token, err, _ := srv.refreshGroup.Do(accountID.String(), func() (any, error) {
		return srv.refresh(ctx, accountID)
	})
	if err != nil {
		return "", err
	}

	accessToken, ok := token.(string)
	if !ok {
		return "", errors.New("unexpected refresh result type")
	}

	return accessToken, nil
}

// refresh performs one provider refresh and persists the outcome. The
// caller that lost the single-flight race re-reads the row the winner wrote.
func (srv *credentialService) refresh(ctx context.Context, accountID uuid.UUID) (string, error) {
	credential, err := srv.loadCredential(ctx, accountID)
	if err != nil {
		return "", err
	}

	// Another flight may have refreshed while we queued.
	if !credential.ExpiresWithin(expiryMargin) {
		return credential.AccessToken, nil
	}

	if credential.RefreshToken == "" {
		return "", errors.Wrap(domainerrors.ErrCredentialInvalid, "no refresh token stored")
	}

	grant, err := srv.provider.RefreshGrant(ctx, credential.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrGrantRejected) {
			// The refresh token is revoked. Drop the pair so every later use
			// prompts the tenant to reconnect instead of retrying a dead token.
			srv.dropCredential(ctx, accountID)
			srv.log(ctx).Warn("Refresh grant rejected, credential dropped", slog.Any("account_id", accountID))

			return "", errors.Wrap(domainerrors.ErrReauthorizationRequired, "refresh grant rejected")
		}

		return "", errors.Wrap(domainerrors.ErrUpstreamUnavailable, "refresh call failed")
	}

	refreshToken := credential.RefreshToken
	if grant.RefreshToken != "" {
		refreshToken = grant.RefreshToken
	}

	scope := credential.Scope
	if grant.Scope != "" {
		scope = grant.Scope
	}

	updated := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		Scope:        scope,
		ExpiresAt:    time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.CredentialRepo().UpsertCredential(ctx, updated)
	})
	if err != nil {
		// The provider accepted the refresh but we could not store the
		// result. Handing out the unpersisted token would desynchronize
		// state, so this is treated the same as a failed refresh.
		srv.log(ctx).Error("Failed to persist refreshed credential", slog.Any("error", err), slog.Any("account_id", accountID))

		return "", errors.Wrap(domainerrors.ErrReauthorizationRequired, "failed to persist refreshed credential")
	}

	srv.log(ctx).Info("Credential refreshed",
		slog.Any("account_id", accountID),
		slog.Time("expires_at", updated.ExpiresAt),
	)

	return updated.AccessToken, nil
}

// loadCredential reads the stored pair for the account.
func (srv *credentialService) loadCredential(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error) {
	var credential *entity.Credential

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.AccountRepo().FindAccountByID(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "unknown account")
			}

			return errors.Wrap(err, "failed to find account")
		}

		found, err := repoFactory.CredentialRepo().FindCredentialByAccountID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return errors.Wrap(domainerrors.ErrCredentialInvalid, "no credential stored")
			}

			return errors.Wrap(err, "failed to find credential")
		}
		credential = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return credential, nil
}

// dropCredential removes a revoked pair. Best effort: the pair is already
// unusable either way.
func (srv *credentialService) dropCredential(ctx context.Context, accountID uuid.UUID) {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.CredentialRepo().DeleteCredentialByAccountID(ctx, accountID)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to drop revoked credential", slog.Any("error", err), slog.Any("account_id", accountID))
	}
}
