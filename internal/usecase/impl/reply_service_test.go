package impl

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
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

type replyFixture struct {
	reviewRepo   *mockRepo.MockReviewRepository
	replyRepo    *mockRepo.MockReplyRepository
	quotaRepo    *mockRepo.MockQuotaRepository
	credentialUC *mockUC.MockCredentialUsecase
	directory    *mockSvc.MockDirectoryService
	generator    *mockSvc.MockReplyGenerator
	svc          usecase.ReplyUsecase
}

func newReplyFixture(t *testing.T) *replyFixture {
	f := &replyFixture{
		reviewRepo:   mockRepo.NewMockReviewRepository(t),
		replyRepo:    mockRepo.NewMockReplyRepository(t),
		quotaRepo:    mockRepo.NewMockQuotaRepository(t),
		credentialUC: mockUC.NewMockCredentialUsecase(t),
		directory:    mockSvc.NewMockDirectoryService(t),
		generator:    mockSvc.NewMockReplyGenerator(t),
	}
	txManager := newStubTx(&mockRepo.StubRepositoryFactory{
		Reviews: f.reviewRepo,
		Replies: f.replyRepo,
		Quotas:  f.quotaRepo,
	})
	// nil config takes the default ceilings: 5 per review, 100 per day.
	f.svc = NewReplyService(nil, txManager, f.credentialUC, f.directory, f.generator, newDiscardLogger())

	return f
}

func newOwnedReview(tenantID uuid.UUID, generationCount int) *entity.Review {
	return &entity.Review{
		ID:              uuid.New(),
		TenantID:        tenantID,
		AccountID:       uuid.New(),
		Source:          entity.ProviderTypeGoogle,
		ExternalID:      "accounts/123/locations/9/reviews/r-1",
		Rating:          2,
		Text:            "cold food",
		GenerationCount: generationCount,
	}
}

func TestReplyService_GenerateReply_FirstDraft(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 0)

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.quotaRepo.On("FindQuota", ctx, tenantID, mock.AnythingOfType("string")).
		Return(&entity.GenerationQuota{TenantID: tenantID, Count: 3}, nil)
	f.generator.On("GenerateReply", ctx, review).Return("感謝您的回饋", nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(nil, repository.ErrReplyNotFound)
	f.replyRepo.On("CreateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.ReviewID == review.ID && r.Text == "感謝您的回饋" && r.Status == entity.ReplyStatusDraft
	})).Return(nil)
	f.reviewRepo.On("IncrementGenerationCount", ctx, review.ID).Return(nil)
	f.quotaRepo.On("IncrementDaily", ctx, tenantID, mock.AnythingOfType("string")).Return(4, nil)

	reply, err := f.svc.GenerateReply(ctx, tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplyStatusDraft, reply.Status)
	assert.Equal(t, "感謝您的回饋", reply.Text)
}

func TestReplyService_GenerateReply_RegenerateOverwritesDraft(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 2)
	existing := &entity.Reply{
		ID:       uuid.New(),
		ReviewID: review.ID,
		TenantID: tenantID,
		Text:     "old draft",
		Status:   entity.ReplyStatusApproved,
	}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.quotaRepo.On("FindQuota", ctx, tenantID, mock.AnythingOfType("string")).
		Return(&entity.GenerationQuota{TenantID: tenantID, Count: 0}, nil)
	f.generator.On("GenerateReply", ctx, review).Return("new draft", nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(existing, nil)
	// Regeneration invalidates the earlier approval.
	f.replyRepo.On("UpdateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.Text == "new draft" && r.Status == entity.ReplyStatusDraft
	})).Return(nil)
	f.reviewRepo.On("IncrementGenerationCount", ctx, review.ID).Return(nil)
	f.quotaRepo.On("IncrementDaily", ctx, tenantID, mock.AnythingOfType("string")).Return(1, nil)

	reply, err := f.svc.GenerateReply(ctx, tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplyStatusDraft, reply.Status)
}

func TestReplyService_GenerateReply_ReviewCapWinsOverDaily(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 5)

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)

	_, err := f.svc.GenerateReply(ctx, tenantID, review.ID)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, domainerrors.ReasonReviewLimit, rateErr.Reason())
	assert.Equal(t, time.Duration(0), rateErr.RetryAfter)
	// The per-review ceiling rejects before the daily counter is even read.
	f.quotaRepo.AssertNotCalled(t, "FindQuota")
	f.generator.AssertNotCalled(t, "GenerateReply")
}

func TestReplyService_GenerateReply_DailyCapRejectsWithReset(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.quotaRepo.On("FindQuota", ctx, tenantID, mock.AnythingOfType("string")).
		Return(&entity.GenerationQuota{TenantID: tenantID, Count: 100}, nil)

	_, err := f.svc.GenerateReply(ctx, tenantID, review.ID)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, domainerrors.ReasonDailyLimit, rateErr.Reason())
	// Retry-after points at the next UTC midnight.
	assert.Greater(t, rateErr.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rateErr.RetryAfter, 24*time.Hour)
	f.generator.AssertNotCalled(t, "GenerateReply")
}

func TestReplyService_GenerateReply_FailedGenerationCostsNothing(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.quotaRepo.On("FindQuota", ctx, tenantID, mock.AnythingOfType("string")).
		Return(&entity.GenerationQuota{TenantID: tenantID, Count: 10}, nil)
	f.generator.On("GenerateReply", ctx, review).Return("", errors.New("backend 503"))

	_, err := f.svc.GenerateReply(ctx, tenantID, review.ID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrUpstreamUnavailable.ErrorCode(), appErr.ErrorCode())
	f.reviewRepo.AssertNotCalled(t, "IncrementGenerationCount")
	f.quotaRepo.AssertNotCalled(t, "IncrementDaily")
}

func TestReplyService_GenerateReply_ForeignReviewRejected(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	review := newOwnedReview(uuid.New(), 0)

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)

	_, err := f.svc.GenerateReply(ctx, uuid.New(), review.ID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrForbidden.ErrorCode(), appErr.ErrorCode())
}

func TestReplyService_EditReply_ForcesDraft(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{
		ID:       uuid.New(),
		ReviewID: review.ID,
		TenantID: tenantID,
		Text:     "approved text",
		Status:   entity.ReplyStatusApproved,
	}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)
	f.replyRepo.On("UpdateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.Text == "edited" && r.Status == entity.ReplyStatusDraft
	})).Return(nil)

	updated, err := f.svc.EditReply(ctx, usecase.EditReplyInput{TenantID: tenantID, ReviewID: review.ID, Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReplyStatusDraft, updated.Status)
}

func TestReplyService_EditReply_PostedIsImmutable(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	postedAt := time.Now()
	reply := &entity.Reply{
		ID:       uuid.New(),
		ReviewID: review.ID,
		TenantID: tenantID,
		Text:     "published",
		Status:   entity.ReplyStatusPosted,
		PostedAt: &postedAt,
	}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)

	_, err := f.svc.EditReply(ctx, usecase.EditReplyInput{TenantID: tenantID, ReviewID: review.ID, Text: "edited"})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReplyAlreadyPosted.ErrorCode(), appErr.ErrorCode())
	f.replyRepo.AssertNotCalled(t, "UpdateReply")
}

func TestReplyService_EditReply_EmptyText(t *testing.T) {
	f := newReplyFixture(t)

	_, err := f.svc.EditReply(context.Background(), usecase.EditReplyInput{TenantID: uuid.New(), ReviewID: uuid.New()})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
	f.reviewRepo.AssertNotCalled(t, "FindReviewByID")
}

func TestReplyService_ApproveReply(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{ID: uuid.New(), ReviewID: review.ID, TenantID: tenantID, Text: "draft", Status: entity.ReplyStatusDraft}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)
	f.replyRepo.On("UpdateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.Status == entity.ReplyStatusApproved
	})).Return(nil)

	approved, err := f.svc.ApproveReply(ctx, tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplyStatusApproved, approved.Status)
}

func TestReplyService_ApproveReply_OnlyFromDraft(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{ID: uuid.New(), ReviewID: review.ID, TenantID: tenantID, Status: entity.ReplyStatusPosted}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)

	_, err := f.svc.ApproveReply(ctx, tenantID, review.ID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReplyTransition.ErrorCode(), appErr.ErrorCode())
}

func TestReplyService_PostReply_Success(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{ID: uuid.New(), ReviewID: review.ID, TenantID: tenantID, Text: "approved text", Status: entity.ReplyStatusApproved}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)
	f.credentialUC.On("EnsureValid", ctx, review.AccountID).Return("token-1", nil)
	f.directory.On("PutReply", ctx, "token-1", review.ExternalID, "approved text").Return(nil)
	f.replyRepo.On("UpdateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.Status == entity.ReplyStatusPosted && r.PostedAt != nil
	})).Return(nil)

	posted, err := f.svc.PostReply(ctx, tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplyStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)
}

func TestReplyService_PostReply_UpstreamFailureMarksFailed(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{ID: uuid.New(), ReviewID: review.ID, TenantID: tenantID, Text: "approved text", Status: entity.ReplyStatusApproved}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)
	f.credentialUC.On("EnsureValid", ctx, review.AccountID).Return("token-1", nil)
	f.directory.On("PutReply", ctx, "token-1", review.ExternalID, "approved text").
		Return(errors.New("502 bad gateway"))
	f.replyRepo.On("UpdateReply", ctx, mock.MatchedBy(func(r *entity.Reply) bool {
		return r.Status == entity.ReplyStatusFailed
	})).Return(nil)

	_, err := f.svc.PostReply(ctx, tenantID, review.ID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrUpstreamUnavailable.ErrorCode(), appErr.ErrorCode())
}

func TestReplyService_PostReply_RequiresApproval(t *testing.T) {
	f := newReplyFixture(t)

	ctx := context.Background()
	tenantID := uuid.New()
	review := newOwnedReview(tenantID, 1)
	reply := &entity.Reply{ID: uuid.New(), ReviewID: review.ID, TenantID: tenantID, Text: "draft", Status: entity.ReplyStatusDraft}

	f.reviewRepo.On("FindReviewByID", ctx, review.ID).Return(review, nil)
	f.replyRepo.On("FindReplyByReviewID", ctx, review.ID).Return(reply, nil)

	_, err := f.svc.PostReply(ctx, tenantID, review.ID)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrReplyTransition.ErrorCode(), appErr.ErrorCode())
	f.directory.AssertNotCalled(t, "PutReply")
}
