// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "reviewhub/internal/delivery/context"
	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	loginGuard   service.LoginGuard
	logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	loginGuard service.LoginGuard,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		txManager:    txManager,
		hasher:       hasher,
		tokenService: tokenService,
		loginGuard:   loginGuard,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login validates the tenant's credentials and issues a token pair.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// The guard is keyed by the client address: rotating target emails from
	// one source still trips the window, and a third party hammering a
	// victim's email cannot lock the tenant out. An empty address (a
	// misconfigured proxy) falls back to the email so throttling never
	// silently turns off.
	guardKey := strings.TrimSpace(input.ClientAddr)
	if guardKey == "" {
		guardKey = email
	}

	// The guard counts the attempt before any credential work happens, so a
	// flood of in-flight requests cannot slip under the window.
	if err := srv.loginGuard.Check(guardKey); err != nil {
		srv.log(ctx).Warn("Login attempt rejected by guard", slog.String("client_addr", guardKey))

		return nil, err
	}

	var tenant *entity.Tenant
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.TenantRepo().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrTenantNotFound) {
				// Indistinguishable from a wrong password to the caller.
				return errors.Wrap(domainerrors.ErrInvalidCredentials, "unknown email")
			}

			return errors.Wrap(err, "failed to find tenant by email")
		}
		tenant = found

		return nil
	})
	if err != nil {
		srv.loginGuard.RecordFailure(guardKey)

		return nil, err
	}

	if !srv.hasher.Check(input.Password, tenant.PasswordHash) {
		srv.loginGuard.RecordFailure(guardKey)
		srv.log(ctx).Warn("Login failed, wrong password", slog.Any("tenant_id", tenant.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "wrong password")
	}

	srv.loginGuard.RecordSuccess(guardKey)

	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	srv.log(ctx).Info("Tenant logged in", slog.Any("tenant_id", tenant.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Tenant:       tenant,
	}, nil
}

// RegisterDeviceToken stores the tenant's push token for new-review
// notifications.
func (srv *authService) RegisterDeviceToken(ctx context.Context, tenantID uuid.UUID, deviceToken string) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TenantRepo().UpdateDeviceToken(ctx, tenantID, deviceToken); err != nil {
			if errors.Is(err, repository.ErrTenantNotFound) {
				return errors.Wrap(domainerrors.ErrTenantNotFound, "unknown tenant")
			}

			return errors.Wrap(err, "failed to update device token")
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Device token registered", slog.Any("tenant_id", tenantID))

	return nil
}
