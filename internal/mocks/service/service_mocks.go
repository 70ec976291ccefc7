// Package service contains hand-written testify mocks for the domain
// service interfaces, used by the usecase tests.
package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStateCodec mocks service.StateCodec.
type MockStateCodec struct {
	mock.Mock
}

func NewMockStateCodec(t *testing.T) *MockStateCodec {
	m := &MockStateCodec{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockStateCodec) Encode(state *entity.ConnectState) (string, error) {
	args := m.Called(state)

	return args.String(0), args.Error(1)
}

func (m *MockStateCodec) Decode(token string) *entity.ConnectState {
	args := m.Called(token)
	if state, ok := args.Get(0).(*entity.ConnectState); ok {
		return state
	}

	return nil
}

// MockReviewProvider mocks service.ReviewProvider.
type MockReviewProvider struct {
	mock.Mock
}

func NewMockReviewProvider(t *testing.T) *MockReviewProvider {
	m := &MockReviewProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReviewProvider) Provider() entity.ProviderType {
	args := m.Called()

	return args.Get(0).(entity.ProviderType)
}

func (m *MockReviewProvider) AuthorizationURL(state string) string {
	args := m.Called(state)

	return args.String(0)
}

func (m *MockReviewProvider) ExchangeCode(ctx context.Context, code string) (*service.TokenGrant, error) {
	args := m.Called(ctx, code)
	if grant, ok := args.Get(0).(*service.TokenGrant); ok {
		return grant, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockReviewProvider) RefreshGrant(ctx context.Context, refreshToken string) (*service.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if grant, ok := args.Get(0).(*service.TokenGrant); ok {
		return grant, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockDirectoryService mocks service.DirectoryService.
type MockDirectoryService struct {
	mock.Mock
}

func NewMockDirectoryService(t *testing.T) *MockDirectoryService {
	m := &MockDirectoryService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockDirectoryService) ListAccounts(ctx context.Context, accessToken string) ([]*service.RemoteAccount, error) {
	args := m.Called(ctx, accessToken)
	if accounts, ok := args.Get(0).([]*service.RemoteAccount); ok {
		return accounts, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDirectoryService) ListLocations(ctx context.Context, accessToken, accountName string) ([]*service.RemoteLocation, error) {
	args := m.Called(ctx, accessToken, accountName)
	if locations, ok := args.Get(0).([]*service.RemoteLocation); ok {
		return locations, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDirectoryService) ListReviews(ctx context.Context, accessToken, locationName string) ([]*service.RemoteReview, error) {
	args := m.Called(ctx, accessToken, locationName)
	if reviews, ok := args.Get(0).([]*service.RemoteReview); ok {
		return reviews, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDirectoryService) PutReply(ctx context.Context, accessToken, reviewName, comment string) error {
	args := m.Called(ctx, accessToken, reviewName, comment)

	return args.Error(0)
}

// MockReplyGenerator mocks service.ReplyGenerator.
type MockReplyGenerator struct {
	mock.Mock
}

func NewMockReplyGenerator(t *testing.T) *MockReplyGenerator {
	m := &MockReplyGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReplyGenerator) GenerateReply(ctx context.Context, review *entity.Review) (string, error) {
	args := m.Called(ctx, review)

	return args.String(0), args.Error(1)
}

// MockEventPublisher mocks service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher(t *testing.T) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockEventPublisher) PublishSyncEvent(ctx context.Context, event *service.SyncEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}

// MockTokenService mocks service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTokenService) GenerateTokens(tenantID uuid.UUID) (string, string, error) {
	args := m.Called(tenantID)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.Claims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTokenService) GetRefreshTokenDuration() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

// MockPasswordHasher mocks service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

// MockLoginGuard mocks service.LoginGuard.
type MockLoginGuard struct {
	mock.Mock
}

func NewMockLoginGuard(t *testing.T) *MockLoginGuard {
	m := &MockLoginGuard{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockLoginGuard) Check(key string) error {
	args := m.Called(key)

	return args.Error(0)
}

func (m *MockLoginGuard) RecordFailure(key string) {
	m.Called(key)
}

func (m *MockLoginGuard) RecordSuccess(key string) {
	m.Called(key)
}
