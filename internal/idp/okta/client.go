// Package okta adapts the Okta management SDK to the provisioning pipeline.
package okta

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okta/okta-sdk-golang/v2/okta"
	"github.com/okta/okta-sdk-golang/v2/okta/query"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/domain"
)

const appUserScope = "USER"

// ErrNotConfigured is returned when the org URL or API token is missing.
var ErrNotConfigured = errors.New("okta: org url and api token are required")

type userAPI interface {
	CreateUser(ctx context.Context, body okta.CreateUserRequest, qp *query.Params) (*okta.User, *okta.Response, error)
	ListUsers(ctx context.Context, qp *query.Params) ([]*okta.User, *okta.Response, error)
}

type appAPI interface {
	AssignUserToApplication(ctx context.Context, appId string, body okta.AppUser) (*okta.AppUser, *okta.Response, error)
}

// Client creates, finds and assigns Okta users.
type Client struct {
	users    userAPI
	apps     appAPI
	logger   *zap.Logger
	activate bool
	provider bool
}

// NewClient connects to the Okta org described by cfg.
func NewClient(ctx context.Context, cfg config.OktaConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	_, sdk, err := okta.NewClient(ctx,
		okta.WithOrgUrl(cfg.OrgURL),
		okta.WithToken(cfg.APIToken),
		okta.WithRequestTimeout(int64(cfg.RequestTimeoutSeconds)),
		okta.WithRateLimitMaxRetries(int32(cfg.RateLimitMaxRetries)),
		okta.WithCache(false),
	)
	if err != nil {
		return nil, fmt.Errorf("okta: new client: %w", err)
	}

	return newClient(sdk.User, sdk.Application, logger, cfg), nil
}

func newClient(users userAPI, apps appAPI, logger *zap.Logger, cfg config.OktaConfig) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		users:    users,
		apps:     apps,
		logger:   logger.Named("okta"),
		activate: cfg.Activate,
		provider: cfg.CreateAsProvider,
	}
}

// BuildProfile builds the Okta profile map.
func BuildProfile(firstName, lastName, email, login string) *okta.UserProfile {
	return &okta.UserProfile{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     email,
		"login":     login,
	}
}

// BuildCredentials builds a password plus recovery question credential.
func BuildCredentials(password, question, answer string) *okta.UserCredentials {
	creds := &okta.UserCredentials{
		Password: &okta.PasswordCredential{Value: password},
	}
	if question != "" || answer != "" {
		creds.RecoveryQuestion = &okta.RecoveryQuestionCredential{
			Question: question,
			Answer:   answer,
		}
	}
	return creds
}

// CreateUser creates the account described by profile and credentials.
func (c *Client) CreateUser(ctx context.Context, profile domain.Profile, credentials domain.Credentials) (*domain.IdentityUser, error) {
	body := okta.CreateUserRequest{
		Profile:     BuildProfile(profile.FirstName, profile.LastName, profile.Email, profile.Login),
		Credentials: BuildCredentials(credentials.Password, credentials.RecoveryQuestion, credentials.RecoveryAnswer),
	}
	qp := &query.Params{Activate: boolPtr(c.activate)}
	if c.provider {
		qp.Provider = true
	}

	user, resp, err := c.users.CreateUser(ctx, body, qp)
	if err != nil {
		c.logger.Error("failed to create user", zap.String("email", profile.Email), zap.Error(err))
		return nil, fmt.Errorf("okta: create user: %w", err)
	}
	if resp != nil && resp.Response != nil && resp.StatusCode != http.StatusOK {
		c.logger.Error("failed to create user", zap.String("email", profile.Email), zap.String("status", resp.Status))
		return nil, fmt.Errorf("okta: create user: %s", resp.Status)
	}

	c.logger.Info("created user", zap.String("email", profile.Email))
	return toIdentityUser(user), nil
}

// FindUserByEmail returns the user whose profile email matches, or nil when
// there is none.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*domain.IdentityUser, error) {
	qp := query.NewQueryParams(query.WithSearch(emailSearch(email)), query.WithLimit(1))
	users, _, err := c.users.ListUsers(ctx, qp)
	if err != nil {
		return nil, fmt.Errorf("okta: find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return toIdentityUser(users[0]), nil
}

// AssignUserToApp assigns user to the application appID.
func (c *Client) AssignUserToApp(ctx context.Context, appID string, user domain.IdentityUser) error {
	body := okta.AppUser{
		Id:    user.ID,
		Scope: appUserScope,
		Credentials: &okta.AppUserCredentials{
			UserName: user.Profile.Email,
		},
	}

	if _, _, err := c.apps.AssignUserToApplication(ctx, appID, body); err != nil {
		c.logger.Error("failed to assign app to user",
			zap.String("app_id", appID), zap.String("email", user.Profile.Email), zap.Error(err))
		return fmt.Errorf("okta: assign user to app: %w", err)
	}

	c.logger.Info("assigned app to user", zap.String("app_id", appID), zap.String("email", user.Profile.Email))
	return nil
}

func emailSearch(email string) string {
	return fmt.Sprintf("profile.email eq %q", email)
}

func toIdentityUser(user *okta.User) *domain.IdentityUser {
	if user == nil {
		return nil
	}
	out := &domain.IdentityUser{ID: user.Id, Status: user.Status}
	if user.Profile != nil {
		profile := *user.Profile
		out.Profile = domain.Profile{
			FirstName: stringField(profile, "firstName"),
			LastName:  stringField(profile, "lastName"),
			Email:     stringField(profile, "email"),
			Login:     stringField(profile, "login"),
		}
	}
	return out
}

func stringField(profile okta.UserProfile, key string) string {
	v, _ := profile[key].(string)
	return v
}

func boolPtr(v bool) *bool {
	return &v
}
