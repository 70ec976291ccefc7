// Package repository contains hand-written testify mocks for the domain
// repository interfaces, used by the usecase tests.
package repository

import (
	"context"
	"testing"

	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// StubTransactionManager runs the transactional function directly against
// the configured factory. Tests assert on the repositories, not on
// transaction mechanics.
type StubTransactionManager struct {
	Factory repository.RepositoryFactory
}

func (m *StubTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.Factory)
}

// StubRepositoryFactory hands out whatever repositories the test configured.
// Unused slots stay nil and panic loudly when touched unexpectedly.
type StubRepositoryFactory struct {
	Tenants     repository.TenantRepository
	Accounts    repository.AccountRepository
	Credentials repository.CredentialRepository
	Reviews     repository.ReviewRepository
	Replies     repository.ReplyRepository
	Quotas      repository.QuotaRepository
}

func (f *StubRepositoryFactory) TenantRepo() repository.TenantRepository         { return f.Tenants }
func (f *StubRepositoryFactory) AccountRepo() repository.AccountRepository       { return f.Accounts }
func (f *StubRepositoryFactory) CredentialRepo() repository.CredentialRepository { return f.Credentials }
func (f *StubRepositoryFactory) ReviewRepo() repository.ReviewRepository         { return f.Reviews }
func (f *StubRepositoryFactory) ReplyRepo() repository.ReplyRepository           { return f.Replies }
func (f *StubRepositoryFactory) QuotaRepo() repository.QuotaRepository           { return f.Quotas }

// MockTenantRepository mocks repository.TenantRepository.
type MockTenantRepository struct {
	mock.Mock
}

func NewMockTenantRepository(t *testing.T) *MockTenantRepository {
	m := &MockTenantRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	args := m.Called(ctx, id)
	if tenant, ok := args.Get(0).(*entity.Tenant); ok {
		return tenant, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTenantRepository) FindByEmail(ctx context.Context, email string) (*entity.Tenant, error) {
	args := m.Called(ctx, email)
	if tenant, ok := args.Get(0).(*entity.Tenant); ok {
		return tenant, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTenantRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, deviceToken string) error {
	args := m.Called(ctx, id, deviceToken)

	return args.Error(0)
}

// MockAccountRepository mocks repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *entity.ExternalAccount) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.ExternalAccount, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*entity.ExternalAccount); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByProviderID(ctx context.Context, tenantID uuid.UUID, provider entity.ProviderType, providerAccountID string) (*entity.ExternalAccount, error) {
	args := m.Called(ctx, tenantID, provider, providerAccountID)
	if account, ok := args.Get(0).(*entity.ExternalAccount); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.ExternalAccount, error) {
	args := m.Called(ctx, tenantID)
	if accounts, ok := args.Get(0).([]*entity.ExternalAccount); ok {
		return accounts, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockCredentialRepository mocks repository.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

func NewMockCredentialRepository(t *testing.T) *MockCredentialRepository {
	m := &MockCredentialRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCredentialRepository) UpsertCredential(ctx context.Context, credential *entity.Credential) error {
	args := m.Called(ctx, credential)

	return args.Error(0)
}

func (m *MockCredentialRepository) FindCredentialByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error) {
	args := m.Called(ctx, accountID)
	if credential, ok := args.Get(0).(*entity.Credential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCredentialRepository) DeleteCredentialByAccountID(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)

	return args.Error(0)
}

// MockReviewRepository mocks repository.ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func NewMockReviewRepository(t *testing.T) *MockReviewRepository {
	m := &MockReviewRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReviewRepository) CreateReview(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)

	return args.Error(0)
}

func (m *MockReviewRepository) UpdateSourceFields(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)

	return args.Error(0)
}

func (m *MockReviewRepository) FindReviewByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if review, ok := args.Get(0).(*entity.Review); ok {
		return review, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockReviewRepository) FindReviewByExternalID(ctx context.Context, tenantID uuid.UUID, source entity.ProviderType, externalID string) (*entity.Review, error) {
	args := m.Called(ctx, tenantID, source, externalID)
	if review, ok := args.Get(0).(*entity.Review); ok {
		return review, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockReviewRepository) FindReviewsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.Review, error) {
	args := m.Called(ctx, tenantID)
	if reviews, ok := args.Get(0).([]*entity.Review); ok {
		return reviews, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockReviewRepository) IncrementGenerationCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockReplyRepository mocks repository.ReplyRepository.
type MockReplyRepository struct {
	mock.Mock
}

func NewMockReplyRepository(t *testing.T) *MockReplyRepository {
	m := &MockReplyRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReplyRepository) CreateReply(ctx context.Context, reply *entity.Reply) error {
	args := m.Called(ctx, reply)

	return args.Error(0)
}

func (m *MockReplyRepository) FindReplyByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.Reply, error) {
	args := m.Called(ctx, reviewID)
	if reply, ok := args.Get(0).(*entity.Reply); ok {
		return reply, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockReplyRepository) UpdateReply(ctx context.Context, reply *entity.Reply) error {
	args := m.Called(ctx, reply)

	return args.Error(0)
}

// MockQuotaRepository mocks repository.QuotaRepository.
type MockQuotaRepository struct {
	mock.Mock
}

func NewMockQuotaRepository(t *testing.T) *MockQuotaRepository {
	m := &MockQuotaRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockQuotaRepository) FindQuota(ctx context.Context, tenantID uuid.UUID, day string) (*entity.GenerationQuota, error) {
	args := m.Called(ctx, tenantID, day)
	if quota, ok := args.Get(0).(*entity.GenerationQuota); ok {
		return quota, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockQuotaRepository) IncrementDaily(ctx context.Context, tenantID uuid.UUID, day string) (int, error) {
	args := m.Called(ctx, tenantID, day)

	return args.Int(0), args.Error(1)
}
