package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/auth"
	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/repository"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

// AuthService coordinates administrator login.
type AuthService struct {
	admins     repository.AdminRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, admins repository.AdminRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins:     admins,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger.Named("auth"),
	}
}

// LoginAdmin authenticates an administrator and returns a signed token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !admin.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("admin inactive")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, exp, nil
}

// BootstrapAdmin creates the initial ADMIN account unless one with that
// email already exists. Empty credentials disable bootstrapping.
func (s *AuthService) BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.Admin, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}

	existing, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.AdminRoleAdmin,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap admin created", zap.String("admin_id", admin.ID), zap.String("email", email))
	return admin, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
