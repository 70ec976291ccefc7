// Package usecase contains hand-written testify mocks for the usecase
// interfaces that other usecases depend on.
package usecase

import (
	"context"
	"testing"

	usecasepkg "reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialUsecase mocks usecase.CredentialUsecase.
type MockCredentialUsecase struct {
	mock.Mock
}

func NewMockCredentialUsecase(t *testing.T) *MockCredentialUsecase {
	m := &MockCredentialUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCredentialUsecase) EnsureValid(ctx context.Context, accountID uuid.UUID) (string, error) {
	args := m.Called(ctx, accountID)

	return args.String(0), args.Error(1)
}

// MockAuthUsecase mocks usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

func NewMockAuthUsecase(t *testing.T) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthUsecase) Login(ctx context.Context, input usecasepkg.LoginInput) (*usecasepkg.LoginOutput, error) {
	args := m.Called(ctx, input)
	if output, ok := args.Get(0).(*usecasepkg.LoginOutput); ok {
		return output, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAuthUsecase) RegisterDeviceToken(ctx context.Context, tenantID uuid.UUID, deviceToken string) error {
	args := m.Called(ctx, tenantID, deviceToken)

	return args.Error(0)
}
