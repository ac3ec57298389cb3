package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/okta-import/internal/auth"
	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/domain"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

func newAuthService(admins *MockAdminRepository) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}, admins, zap.NewNop())
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestLoginAdmin(t *testing.T) {
	admins := new(MockAdminRepository)
	admin := &domain.Admin{ID: "admin-1", Email: "ops@x.io", PasswordHash: hashed(t, "Sup3rSecret"), Role: domain.AdminRoleAdmin, Active: true}
	admins.On("GetByEmail", mock.Anything, "ops@x.io").Return(admin, nil)

	svc := newAuthService(admins)
	got, token, _, err := svc.LoginAdmin(context.Background(), " OPS@x.io ", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", got.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, domain.AdminRoleAdmin, claims.Role)
}

func TestLoginAdminFailures(t *testing.T) {
	tests := []struct {
		name  string
		admin *domain.Admin
		err   error
		pass  string
	}{
		{"unknown email", nil, pgx.ErrNoRows, "whatever"},
		{"wrong password", &domain.Admin{ID: "a", PasswordHash: "", Active: true}, nil, "wrong"},
		{"inactive", &domain.Admin{ID: "a", Active: false}, nil, "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := new(MockAdminRepository)
			admin := tt.admin
			if admin != nil && admin.Active {
				admin.PasswordHash = hashed(t, "Sup3rSecret")
			}
			admins.On("GetByEmail", mock.Anything, "ops@x.io").Return(admin, tt.err)

			_, _, _, err := newAuthService(admins).LoginAdmin(context.Background(), "ops@x.io", tt.pass)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
		})
	}
}

func TestLoginAdminRepositoryError(t *testing.T) {
	admins := new(MockAdminRepository)
	admins.On("GetByEmail", mock.Anything, "ops@x.io").Return(nil, errors.New("db down"))

	_, _, _, err := newAuthService(admins).LoginAdmin(context.Background(), "ops@x.io", "x")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.ToDomainError(err).HTTPStatus)
}

func TestBootstrapAdminCreatesMissing(t *testing.T) {
	admins := new(MockAdminRepository)
	admins.On("GetByEmail", mock.Anything, "ops@x.io").Return(nil, pgx.ErrNoRows).Once()
	admins.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Admin) bool {
		return a.Email == "ops@x.io" && a.Role == domain.AdminRoleAdmin && a.Active &&
			auth.ComparePassword(a.PasswordHash, "Sup3rSecret") == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Admin).ID = "admin-1"
	}).Return(nil).Once()

	admin, err := newAuthService(admins).BootstrapAdmin(context.Background(), "Ops", "Ops@x.io", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", admin.ID)
	admins.AssertExpectations(t)
}

func TestBootstrapAdminKeepsExisting(t *testing.T) {
	admins := new(MockAdminRepository)
	existing := &domain.Admin{ID: "admin-9", Email: "ops@x.io"}
	admins.On("GetByEmail", mock.Anything, "ops@x.io").Return(existing, nil).Once()

	admin, err := newAuthService(admins).BootstrapAdmin(context.Background(), "Ops", "ops@x.io", "Sup3rSecret")
	require.NoError(t, err)
	assert.Same(t, existing, admin)
	admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrapAdminDisabled(t *testing.T) {
	admins := new(MockAdminRepository)
	admin, err := newAuthService(admins).BootstrapAdmin(context.Background(), "Ops", "", "")
	require.NoError(t, err)
	assert.Nil(t, admin)
	admins.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
