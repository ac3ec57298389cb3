package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/provisioning"
	"github.com/spec-kit/okta-import/internal/repository"
)

// CachedLookup answers account lookups from the account cache before asking
// the identity provider. Cache failures are logged and never fail a lookup.
type CachedLookup struct {
	next   provisioning.AccountLookup
	cache  repository.AccountCache
	logger *zap.Logger
}

// NewCachedLookup decorates next. A nil cache disables caching.
func NewCachedLookup(next provisioning.AccountLookup, cache repository.AccountCache, logger *zap.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, logger: logger.Named("account_lookup")}
}

// FindUserByEmail implements provisioning.AccountLookup. A cached hit only
// carries the email, the provider ID is not cached.
func (l *CachedLookup) FindUserByEmail(ctx context.Context, email string) (*domain.IdentityUser, error) {
	if l.cache != nil {
		exists, found, err := l.cache.Get(ctx, email)
		switch {
		case err != nil:
			l.logger.Warn("account cache read failed", zap.String("email", email), zap.Error(err))
		case found && exists:
			return &domain.IdentityUser{Profile: domain.Profile{Email: email, Login: email}}, nil
		case found:
			return nil, nil
		}
	}

	user, err := l.next.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	l.Remember(ctx, email, user != nil)
	return user, nil
}

// Remember records whether email has an account.
func (l *CachedLookup) Remember(ctx context.Context, email string, exists bool) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, email, exists); err != nil {
		l.logger.Warn("account cache write failed", zap.String("email", email), zap.Error(err))
	}
}
