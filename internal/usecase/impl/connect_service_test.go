package impl

import (
	"context"
	"testing"

	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/service"
	mockRepo "reviewhub/internal/mocks/repository"
	mockSvc "reviewhub/internal/mocks/service"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type connectFixture struct {
	accountRepo    *mockRepo.MockAccountRepository
	credentialRepo *mockRepo.MockCredentialRepository
	stateCodec     *mockSvc.MockStateCodec
	provider       *mockSvc.MockReviewProvider
	directory      *mockSvc.MockDirectoryService
	svc            usecase.ConnectUsecase
}

func newConnectFixture(t *testing.T) *connectFixture {
	f := &connectFixture{
		accountRepo:    mockRepo.NewMockAccountRepository(t),
		credentialRepo: mockRepo.NewMockCredentialRepository(t),
		stateCodec:     mockSvc.NewMockStateCodec(t),
		provider:       mockSvc.NewMockReviewProvider(t),
		directory:      mockSvc.NewMockDirectoryService(t),
	}
	txManager := newStubTx(&mockRepo.StubRepositoryFactory{
		Accounts:    f.accountRepo,
		Credentials: f.credentialRepo,
	})
	f.svc = NewConnectService(txManager, f.stateCodec, f.provider, f.directory, newDiscardLogger())

	return f
}

func TestConnectService_CompleteConnect_UnverifiableStateIsBadRequest(t *testing.T) {
	f := newConnectFixture(t)

	f.stateCodec.On("Decode", "tampered").Return(nil)

	_, err := f.svc.CompleteConnect(context.Background(), usecase.CompleteConnectInput{State: "tampered", Code: "code"})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrInvalidState.ErrorCode(), appErr.ErrorCode())
	f.provider.AssertNotCalled(t, "ExchangeCode")
}

func TestConnectService_CompleteConnect_ReauthorizationRenewsRequestedAccount(t *testing.T) {
	f := newConnectFixture(t)
	ctx := context.Background()

	tenantID := uuid.New()
	existing := &entity.ExternalAccount{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Provider:          entity.ProviderTypeGoogle,
		ProviderAccountID: "123",
		Email:             "biz@example.com",
	}

	f.stateCodec.On("Decode", "signed-state").
		Return(&entity.ConnectState{TenantID: tenantID, AccountID: existing.ID})
	f.provider.On("ExchangeCode", ctx, "auth-code").
		Return(&service.TokenGrant{AccessToken: "access-2", RefreshToken: "rotated", Scope: "reviews", ExpiresIn: 3600}, nil)
	f.directory.On("ListAccounts", ctx, "access-2").
		Return([]*service.RemoteAccount{{Name: "accounts/123", AccountID: "123", Email: "biz@example.com"}}, nil)
	f.accountRepo.On("FindAccountByID", ctx, existing.ID).Return(existing, nil)
	f.provider.On("Provider").Return(entity.ProviderTypeGoogle)
	f.accountRepo.On("FindAccountByProviderID", ctx, tenantID, entity.ProviderTypeGoogle, "123").Return(existing, nil)
	f.credentialRepo.On("UpsertCredential", ctx, mock.MatchedBy(func(cred *entity.Credential) bool {
		return cred.AccountID == existing.ID && cred.RefreshToken == "rotated"
	})).Return(nil)

	output, err := f.svc.CompleteConnect(ctx, usecase.CompleteConnectInput{State: "signed-state", Code: "auth-code"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, output.Account.ID)
	f.accountRepo.AssertNotCalled(t, "CreateAccount")
}

func TestConnectService_CompleteConnect_ReauthorizationWrongAccountRejected(t *testing.T) {
	f := newConnectFixture(t)
	ctx := context.Background()

	tenantID := uuid.New()
	requested := &entity.ExternalAccount{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Provider:          entity.ProviderTypeGoogle,
		ProviderAccountID: "123",
	}

	f.stateCodec.On("Decode", "signed-state").
		Return(&entity.ConnectState{TenantID: tenantID, AccountID: requested.ID})
	f.provider.On("ExchangeCode", ctx, "auth-code").
		Return(&service.TokenGrant{AccessToken: "access-2", RefreshToken: "rotated", ExpiresIn: 3600}, nil)
	// The consent screen ended up on a different business account.
	f.directory.On("ListAccounts", ctx, "access-2").
		Return([]*service.RemoteAccount{{Name: "accounts/999", AccountID: "999", Email: "other@example.com"}}, nil)
	f.accountRepo.On("FindAccountByID", ctx, requested.ID).Return(requested, nil)

	output, err := f.svc.CompleteConnect(ctx, usecase.CompleteConnectInput{State: "signed-state", Code: "auth-code"})
	assert.Nil(t, output)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
	// No second connection appears and the stored credential stays untouched.
	f.accountRepo.AssertNotCalled(t, "CreateAccount")
	f.credentialRepo.AssertNotCalled(t, "UpsertCredential")
}
