package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/provisioning"
)

type MockBatchImporter struct {
	mock.Mock
}

func (m *MockBatchImporter) ImportBatch(ctx context.Context, req provisioning.Request, defaults domain.ProvisioningDefaults) (*domain.BatchResult, error) {
	args := m.Called(ctx, req, defaults)
	result, _ := args.Get(0).(*domain.BatchResult)
	return result, args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	admin, _ := args.Get(0).(*domain.Admin)
	return admin, args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	admin, _ := args.Get(0).(*domain.Admin)
	return admin, args.Error(1)
}

type MockAccountLookup struct {
	mock.Mock
}

func (m *MockAccountLookup) FindUserByEmail(ctx context.Context, email string) (*domain.IdentityUser, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.IdentityUser)
	return user, args.Error(1)
}

type MockAccountCache struct {
	mock.Mock
}

func (m *MockAccountCache) Get(ctx context.Context, email string) (bool, bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockAccountCache) Set(ctx context.Context, email string, exists bool) error {
	args := m.Called(ctx, email, exists)
	return args.Error(0)
}
