package provisioning

import (
	"context"
	"fmt"

	"github.com/spec-kit/okta-import/internal/domain"
)

// Overrides are the optional per-user values; empty fields fall back to the
// provisioning defaults.
type Overrides struct {
	Password  string
	Question  string
	Answer    string
	FirstName string
	LastName  string
}

// BuildPendingUser prepares the record for email. Login and email are both
// set to the address.
func BuildPendingUser(email string, o Overrides, defaults domain.ProvisioningDefaults) domain.PendingUser {
	return domain.PendingUser{
		Profile: domain.Profile{
			FirstName: firstNonEmpty(o.FirstName, defaults.FirstName),
			LastName:  firstNonEmpty(o.LastName, defaults.LastName),
			Email:     email,
			Login:     email,
		},
		Credentials: domain.Credentials{
			Password:         firstNonEmpty(o.Password, defaults.Password),
			RecoveryQuestion: firstNonEmpty(o.Question, defaults.Question),
			RecoveryAnswer:   firstNonEmpty(o.Answer, defaults.Answer),
		},
		AlreadyRegistered: false,
		SkipRegister:      false,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// AccountLookup finds an identity-provider account by email. A missing
// account is reported as nil with a nil error.
type AccountLookup interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.IdentityUser, error)
}

// Accounts answers whether an address already has an account.
type Accounts struct {
	lookup AccountLookup
}

// NewAccounts builds the helper around lookup.
func NewAccounts(lookup AccountLookup) *Accounts {
	return &Accounts{lookup: lookup}
}

// AccountExists reports whether email already has an account.
func (a *Accounts) AccountExists(ctx context.Context, email string) (bool, error) {
	if a == nil || a.lookup == nil {
		return false, fmt.Errorf("%w: no lookup configured", ErrExternalLookup)
	}
	user, err := a.lookup.FindUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExternalLookup, err)
	}
	return user != nil, nil
}
