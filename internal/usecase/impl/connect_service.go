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
)

// connectService implements the ConnectUsecase interface.
type connectService struct {
	txManager  repository.TransactionManager
	stateCodec service.StateCodec
	provider   service.ReviewProvider
	directory  service.DirectoryService
	logger     *slog.Logger
}

// NewConnectService is the constructor for connectService.
func NewConnectService(
	txManager repository.TransactionManager,
	stateCodec service.StateCodec,
	provider service.ReviewProvider,
	directory service.DirectoryService,
	logger *slog.Logger,
) usecase.ConnectUsecase {
	return &connectService{
		txManager:  txManager,
		stateCodec: stateCodec,
		provider:   provider,
		directory:  directory,
		logger:     logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *connectService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// StartConnect issues a signed state token and builds the authorization redirect.
func (srv *connectService) StartConnect(ctx context.Context, input usecase.StartConnectInput) (*usecase.StartConnectOutput, error) {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// 1. The state must only ever name a real tenant.
		if _, err := repoFactory.TenantRepo().FindByID(ctx, input.TenantID); err != nil {
			if errors.Is(err, repository.ErrTenantNotFound) {
				return errors.Wrap(domainerrors.ErrTenantNotFound, "unknown tenant")
			}

			return errors.Wrap(err, "failed to find tenant")
		}

		// 2. A re-authorization must reference the tenant's own connection.
		if input.AccountID != uuid.Nil {
			account, err := repoFactory.AccountRepo().FindAccountByID(ctx, input.AccountID)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return errors.Wrap(domainerrors.ErrAccountNotFound, "unknown account")
				}

				return errors.Wrap(err, "failed to find account")
			}
			if account.TenantID != input.TenantID {
				return errors.Wrap(domainerrors.ErrForbidden, "account does not belong to tenant")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	state := &entity.ConnectState{
		TenantID:   input.TenantID,
		AccountID:  input.AccountID,
		ReturnPath: input.ReturnPath,
		IssuedAt:   time.Now().Unix(),
	}

	token, err := srv.stateCodec.Encode(state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode connect state")
	}

	srv.log(ctx).Info("Connect handshake started",
		slog.Any("tenant_id", input.TenantID),
		slog.String("provider", string(srv.provider.Provider())),
	)

	return &usecase.StartConnectOutput{
		RedirectURL: srv.provider.AuthorizationURL(token),
	}, nil
}

// CompleteConnect verifies the returned state, exchanges the code and
// persists the account connection with its credential pair.
func (srv *connectService) CompleteConnect(ctx context.Context, input usecase.CompleteConnectInput) (*usecase.CompleteConnectOutput, error) {
	state := srv.stateCodec.Decode(input.State)
	if state == nil {
		srv.log(ctx).Warn("Connect callback carried an unverifiable state")

		return nil, errors.Wrap(domainerrors.ErrInvalidState, "state did not verify")
	}

	if input.Code == "" {
		return nil, errors.Wrap(domainerrors.ErrOAuthCodeInvalid, "missing authorization code")
	}

	grant, err := srv.provider.ExchangeCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, service.ErrGrantRejected) {
			return nil, errors.Wrap(domainerrors.ErrOAuthCodeInvalid, "code exchange rejected")
		}

		return nil, errors.Wrap(domainerrors.ErrUpstreamUnavailable, "code exchange failed")
	}

	// Resolve which platform account was authorized so re-connecting the
	// same account stays idempotent.
	remoteAccounts, err := srv.directory.ListAccounts(ctx, grant.AccessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamUnavailable, "failed to resolve authorized account")
	}
	if len(remoteAccounts) == 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("authorized identity has no business account")
	}
	remote := remoteAccounts[0]

	var account *entity.ExternalAccount
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		credentialRepo := repoFactory.CredentialRepo()

		// 1. A re-authorization must land on the platform account the
		//    handshake was started for; authorizing a different one would
		//    silently create a second connection instead of renewing the
		//    requested credential.
		if state.AccountID != uuid.Nil {
			requested, err := accountRepo.FindAccountByID(ctx, state.AccountID)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return errors.Wrap(domainerrors.ErrAccountNotFound, "requested connection no longer exists")
				}

				return errors.Wrap(err, "failed to find requested account")
			}
			if requested.ProviderAccountID != remote.AccountID {
				return domainerrors.ErrValidationFailed.WrapMessage("authorized a different platform account than requested")
			}
		}

		// 2. Reuse the existing connection when this platform account was
		//    connected before.
		existing, err := accountRepo.FindAccountByProviderID(ctx, state.TenantID, srv.provider.Provider(), remote.AccountID)
		switch {
		case err == nil:
			account = existing
		case errors.Is(err, repository.ErrAccountNotFound):
			account = &entity.ExternalAccount{
				TenantID:          state.TenantID,
				Provider:          srv.provider.Provider(),
				ProviderAccountID: remote.AccountID,
				Email:             remote.Email,
			}
			if err := accountRepo.CreateAccount(ctx, account); err != nil {
				return err
			}
		default:
			return errors.Wrap(err, "failed to find account by provider identity")
		}

		// 3. A re-authorization without a rotated refresh token keeps the
		//    stored one.
		refreshToken := grant.RefreshToken
		if refreshToken == "" {
			stored, err := credentialRepo.FindCredentialByAccountID(ctx, account.ID)
			if err != nil {
				if errors.Is(err, repository.ErrCredentialNotFound) {
					return errors.Wrap(domainerrors.ErrCredentialInvalid, "provider returned no refresh token")
				}

				return errors.Wrap(err, "failed to find stored credential")
			}
			refreshToken = stored.RefreshToken
		}

		return credentialRepo.UpsertCredential(ctx, &entity.Credential{
			AccountID:    account.ID,
			AccessToken:  grant.AccessToken,
			RefreshToken: refreshToken,
			Scope:        grant.Scope,
			ExpiresAt:    time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
		})
	})
	if err != nil {
		srv.log(ctx).Error("Failed to persist connection", slog.Any("error", err), slog.Any("tenant_id", state.TenantID))

		return nil, err
	}

	srv.log(ctx).Info("Connection established",
		slog.Any("tenant_id", state.TenantID),
		slog.Any("account_id", account.ID),
		slog.String("provider_account_id", account.ProviderAccountID),
	)

	return &usecase.CompleteConnectOutput{
		Account:    account,
		ReturnPath: state.ReturnPath,
	}, nil
}

// ListConnections returns the tenant's connected accounts.
func (srv *connectService) ListConnections(ctx context.Context, tenantID uuid.UUID) ([]*entity.ExternalAccount, error) {
	var accounts []*entity.ExternalAccount

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindAccountsByTenantID(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list accounts")
		}
		accounts = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}
