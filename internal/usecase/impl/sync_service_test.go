package impl

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/domain/service"
	mockRepo "reviewhub/internal/mocks/repository"
	mockSvc "reviewhub/internal/mocks/service"
	mockUC "reviewhub/internal/mocks/usecase"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	accountRepo  *mockRepo.MockAccountRepository
	reviewRepo   *mockRepo.MockReviewRepository
	credentialUC *mockUC.MockCredentialUsecase
	directory    *mockSvc.MockDirectoryService
	publisher    *mockSvc.MockEventPublisher
	svc          usecase.SyncUsecase
}

func newSyncFixture(t *testing.T) *syncFixture {
	f := &syncFixture{
		accountRepo:  mockRepo.NewMockAccountRepository(t),
		reviewRepo:   mockRepo.NewMockReviewRepository(t),
		credentialUC: mockUC.NewMockCredentialUsecase(t),
		directory:    mockSvc.NewMockDirectoryService(t),
		publisher:    mockSvc.NewMockEventPublisher(t),
	}
	txManager := newStubTx(&mockRepo.StubRepositoryFactory{
		Accounts: f.accountRepo,
		Reviews:  f.reviewRepo,
	})
	f.svc = NewSyncService(txManager, f.credentialUC, f.directory, f.publisher, newDiscardLogger())

	return f
}

func (f *syncFixture) expectConnection(ctx context.Context, account *entity.ExternalAccount) {
	f.accountRepo.On("FindAccountByID", ctx, account.ID).Return(account, nil)
	f.credentialUC.On("EnsureValid", ctx, account.ID).Return("token-1", nil)
}

func newConnectedAccount(tenantID uuid.UUID) *entity.ExternalAccount {
	return &entity.ExternalAccount{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Provider:          entity.ProviderTypeGoogle,
		ProviderAccountID: "123",
	}
}

func TestSyncService_SyncReviews_ClassifiesRecords(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return([]*service.RemoteLocation{{Name: "accounts/123/locations/9", LocationID: "9"}}, nil)
	f.directory.On("ListReviews", ctx, "token-1", "accounts/123/locations/9").
		Return([]*service.RemoteReview{
			{ExternalID: "accounts/123/locations/9/reviews/r-new", Rating: 5, Text: "great", CreatedAt: time.Now()},
			{ExternalID: "accounts/123/locations/9/reviews/r-edited", Rating: 2, Text: "edited upstream"},
			{ExternalID: "accounts/123/locations/9/reviews/r-same", Rating: 4, Text: "unchanged"},
		}, nil)

	// r-new: unknown identity, inserted.
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, "accounts/123/locations/9/reviews/r-new").
		Return(nil, repository.ErrReviewNotFound)
	f.reviewRepo.On("CreateReview", ctx, mock.MatchedBy(func(r *entity.Review) bool {
		return r.ExternalID == "accounts/123/locations/9/reviews/r-new" && r.Rating == 5
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = uuid.New()
	}).Return(nil)

	// r-edited: stored with different source fields, updated in place.
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, "accounts/123/locations/9/reviews/r-edited").
		Return(&entity.Review{ID: uuid.New(), TenantID: tenantID, Rating: 4, Text: "original"}, nil)
	f.reviewRepo.On("UpdateSourceFields", ctx, mock.MatchedBy(func(r *entity.Review) bool {
		return r.Rating == 2 && r.Text == "edited upstream"
	})).Return(nil)

	// r-same: stored and identical, skipped.
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, "accounts/123/locations/9/reviews/r-same").
		Return(&entity.Review{ID: uuid.New(), TenantID: tenantID, Rating: 4, Text: "unchanged"}, nil)

	f.publisher.On("PublishSyncEvent", ctx, mock.MatchedBy(func(event *service.SyncEvent) bool {
		return event.Imported == 1 && event.Updated == 1 && event.Skipped == 1 && len(event.ReviewIDs) == 1
	})).Return(nil)

	summary, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSyncService_SyncReviews_ReingestIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	remote := &service.RemoteReview{ExternalID: "accounts/123/locations/9/reviews/r-1", Rating: 5, Text: "great"}
	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return([]*service.RemoteLocation{{Name: "accounts/123/locations/9"}}, nil)
	f.directory.On("ListReviews", ctx, "token-1", "accounts/123/locations/9").
		Return([]*service.RemoteReview{remote}, nil)

	// First sync inserts, second sync finds the stored record unchanged.
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, remote.ExternalID).
		Return(nil, repository.ErrReviewNotFound).Once()
	f.reviewRepo.On("CreateReview", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = uuid.New()
	}).Return(nil).Once()
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, remote.ExternalID).
		Return(&entity.Review{ID: uuid.New(), TenantID: tenantID, Rating: 5, Text: "great"}, nil).Once()
	f.publisher.On("PublishSyncEvent", ctx, mock.Anything).Return(nil).Once()

	first, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)

	second, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Skipped)
}

func TestSyncService_SyncReviews_ConcurrentInsertCountsAsSkipped(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return([]*service.RemoteLocation{{Name: "accounts/123/locations/9"}}, nil)
	f.directory.On("ListReviews", ctx, "token-1", "accounts/123/locations/9").
		Return([]*service.RemoteReview{{ExternalID: "accounts/123/locations/9/reviews/r-1", Rating: 5}}, nil)

	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, "accounts/123/locations/9/reviews/r-1").
		Return(nil, repository.ErrReviewNotFound)
	// Another sync won the insert race; the unique index rejected ours.
	f.reviewRepo.On("CreateReview", ctx, mock.Anything).Return(repository.ErrReviewAlreadyExists)

	summary, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSyncService_SyncReviews_NoListings(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	// A 404 on the locations sub-resource surfaces as an empty slice.
	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return([]*service.RemoteLocation{}, nil)

	summary, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported+summary.Updated+summary.Skipped)
	f.publisher.AssertNotCalled(t, "PublishSyncEvent")
}

func TestSyncService_SyncReviews_ForeignAccountRejected(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	account := newConnectedAccount(uuid.New())
	f.accountRepo.On("FindAccountByID", ctx, account.ID).Return(account, nil)

	_, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: uuid.New(), AccountID: account.ID})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrForbidden.ErrorCode(), appErr.ErrorCode())
}

func TestSyncService_SyncReviews_RejectedGrantPromptsReconnect(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return(nil, errors.Wrap(service.ErrGrantRejected, "401"))

	_, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReauthorizationRequired.ErrorCode(), appErr.ErrorCode())
}

func TestSyncService_SyncReviews_PublishFailureDoesNotFailSync(t *testing.T) {
	f := newSyncFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	account := newConnectedAccount(tenantID)
	f.expectConnection(ctx, account)

	f.directory.On("ListLocations", ctx, "token-1", "accounts/123").
		Return([]*service.RemoteLocation{{Name: "accounts/123/locations/9"}}, nil)
	f.directory.On("ListReviews", ctx, "token-1", "accounts/123/locations/9").
		Return([]*service.RemoteReview{{ExternalID: "accounts/123/locations/9/reviews/r-1", Rating: 5}}, nil)
	f.reviewRepo.On("FindReviewByExternalID", ctx, tenantID, entity.ProviderTypeGoogle, "accounts/123/locations/9/reviews/r-1").
		Return(nil, repository.ErrReviewNotFound)
	f.reviewRepo.On("CreateReview", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = uuid.New()
	}).Return(nil)
	f.publisher.On("PublishSyncEvent", ctx, mock.Anything).Return(errors.New("broker down"))

	summary, err := f.svc.SyncReviews(ctx, usecase.SyncInput{TenantID: tenantID, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
}
