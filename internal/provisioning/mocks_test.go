package provisioning_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/okta-import/internal/domain"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, profile domain.Profile, credentials domain.Credentials) (*domain.IdentityUser, error) {
	args := m.Called(ctx, profile, credentials)
	user, _ := args.Get(0).(*domain.IdentityUser)
	return user, args.Error(1)
}

type MockAccountLookup struct {
	mock.Mock
}

func (m *MockAccountLookup) FindUserByEmail(ctx context.Context, email string) (*domain.IdentityUser, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.IdentityUser)
	return user, args.Error(1)
}
