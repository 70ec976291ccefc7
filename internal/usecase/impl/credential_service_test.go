package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/usecase"
	mockRepo "reviewhub/internal/mocks/repository"
	mockSvc "reviewhub/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCredentialFixture(t *testing.T) (*mockRepo.MockAccountRepository, *mockRepo.MockCredentialRepository, *mockSvc.MockReviewProvider, usecase.CredentialUsecase) {
	mockAccountRepo := mockRepo.NewMockAccountRepository(t)
	mockCredentialRepo := mockRepo.NewMockCredentialRepository(t)
	mockProvider := mockSvc.NewMockReviewProvider(t)
	txManager := newStubTx(&mockRepo.StubRepositoryFactory{
		Accounts:    mockAccountRepo,
		Credentials: mockCredentialRepo,
	})

	svc := NewCredentialService(txManager, mockProvider, newDiscardLogger())

	return mockAccountRepo, mockCredentialRepo, mockProvider, svc
}

func TestCredentialService_EnsureValid_FreshTokenNoNetworkCall(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:   accountID,
		AccessToken: "still-good",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)

	token, err := svc.EnsureValid(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "still-good", token)
	mockProvider.AssertNotCalled(t, "RefreshGrant")
}

func TestCredentialService_EnsureValid_ExpiredTokenRefreshesAndPersists(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)
	mockProvider.On("RefreshGrant", ctx, "refresh-1").
		Return(newGrant("fresh", "", 3600), nil).Once()
	mockCredentialRepo.On("UpsertCredential", ctx, mock.MatchedBy(func(c *entity.Credential) bool {
		// Access token and expiry move together; the refresh token stays
		// because the provider did not rotate it.
		return c.AccessToken == "fresh" &&
			c.RefreshToken == "refresh-1" &&
			c.ExpiresAt.After(time.Now().Add(50*time.Minute))
	})).Return(nil).Once()

	token, err := svc.EnsureValid(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
}

// newGrant keeps the fixture construction on one line.
func newGrant(accessToken, refreshToken string, expiresIn int) *service.TokenGrant {
	return &service.TokenGrant{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}
}

func TestCredentialService_EnsureValid_RotatedRefreshTokenIsStored(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)
	mockProvider.On("RefreshGrant", ctx, "refresh-1").
		Return(newGrant("fresh", "refresh-2", 3600), nil).Once()
	mockCredentialRepo.On("UpsertCredential", ctx, mock.MatchedBy(func(c *entity.Credential) bool {
		return c.RefreshToken == "refresh-2"
	})).Return(nil).Once()

	_, err := svc.EnsureValid(ctx, accountID)
	require.NoError(t, err)
}

func TestCredentialService_EnsureValid_GrantRejectedDropsCredential(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  "stale",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)
	mockProvider.On("RefreshGrant", ctx, "revoked").
		Return(nil, errors.Wrap(service.ErrGrantRejected, "invalid_grant")).Once()
	mockCredentialRepo.On("DeleteCredentialByAccountID", ctx, accountID).Return(nil).Once()

	_, err := svc.EnsureValid(ctx, accountID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReauthorizationRequired.ErrorCode(), appErr.ErrorCode())
}

func TestCredentialService_EnsureValid_PersistFailureSurfacesAsRefreshFailed(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)
	mockProvider.On("RefreshGrant", ctx, "refresh-1").
		Return(newGrant("fresh", "", 3600), nil).Once()
	mockCredentialRepo.On("UpsertCredential", ctx, mock.Anything).Return(errors.New("disk full")).Once()

	// The provider accepted the refresh but the write failed. Handing out
	// the unpersisted token is forbidden.
	_, err := svc.EnsureValid(ctx, accountID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReauthorizationRequired.ErrorCode(), appErr.ErrorCode())
}

func TestCredentialService_EnsureValid_MissingAccount(t *testing.T) {
	mockAccountRepo, _, _, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, repository.ErrAccountNotFound)

	_, err := svc.EnsureValid(ctx, accountID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrAccountNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestCredentialService_EnsureValid_SingleFlight(t *testing.T) {
	mockAccountRepo, mockCredentialRepo, mockProvider, svc := newCredentialFixture(t)

	ctx := context.Background()
	accountID := uuid.New()
	credential := &entity.Credential{
		AccountID:    accountID,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&entity.ExternalAccount{ID: accountID}, nil)
	mockCredentialRepo.On("FindCredentialByAccountID", ctx, accountID).Return(credential, nil)
	// Once() makes a second provider call fail the test outright. The sleep
	// keeps the first flight open until every caller has joined it.
	mockProvider.On("RefreshGrant", ctx, "refresh-1").
		Run(func(mock.Arguments) { time.Sleep(50 * time.Millisecond) }).
		Return(newGrant("fresh", "", 3600), nil).Once()
	mockCredentialRepo.On("UpsertCredential", ctx, mock.Anything).Return(nil).Once()

	const callers = 4

	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = svc.EnsureValid(ctx, accountID)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh", tokens[i])
	}
}
