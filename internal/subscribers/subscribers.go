package subscribers

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/events"
)

// AccountChecker reports whether an address already has an account.
type AccountChecker interface {
	AccountExists(ctx context.Context, email string) (bool, error)
}

// AppAssigner assigns an identity-provider user to an application.
type AppAssigner interface {
	AssignUserToApp(ctx context.Context, appID string, user domain.IdentityUser) error
}

// AccountRecorder remembers which addresses have accounts.
type AccountRecorder interface {
	Remember(ctx context.Context, email string, exists bool)
}

// Options selects the optional subscribers.
type Options struct {
	DropInvalidEmails bool
	SkipExisting      bool
	DefaultAppID      string
}

// Dependencies are the collaborators subscribers call out to. Nil
// collaborators disable the subscriber that needs them.
type Dependencies struct {
	Accounts AccountChecker
	Apps     AppAssigner
	Recorder AccountRecorder
	Logger   *zap.Logger
}

// Subscribers holds the import pipeline observers.
type Subscribers struct {
	deps   Dependencies
	opts   Options
	logger *zap.Logger
}

// New creates the subscriber set.
func New(deps Dependencies, opts Options) *Subscribers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscribers{deps: deps, opts: opts, logger: logger.Named("subscribers")}
}

// Register subscribes the enabled observers. Audit is registered last so it
// sees the final outcome of every attempt.
func (s *Subscribers) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	if s.opts.DropInvalidEmails {
		dispatcher.OnValidate(s.FilterEmails)
	}
	if s.opts.SkipExisting && s.deps.Accounts != nil {
		dispatcher.OnPreSubmit(s.SkipExistingAccounts)
	}
	if s.opts.DefaultAppID != "" && s.deps.Apps != nil {
		dispatcher.OnPostSubmit(s.AssignDefaultApp)
	}
	dispatcher.OnPostSubmit(s.Audit)
}

// FilterEmails drops malformed entries, lower-cases and de-duplicates the batch.
func (s *Subscribers) FilterEmails(_ context.Context, batch domain.EmailBatch) (domain.EmailBatch, error) {
	seen := make(map[string]struct{}, len(batch))
	out := make(domain.EmailBatch, 0, len(batch))
	for _, raw := range batch {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}
		if err := validation.Validate(email, is.Email); err != nil {
			s.logger.Warn("dropping invalid email", zap.String("email", raw), zap.Error(err))
			continue
		}
		if _, dup := seen[email]; dup {
			s.logger.Info("dropping duplicate email", zap.String("email", email))
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}

// SkipExistingAccounts flags addresses that already have an account.
func (s *Subscribers) SkipExistingAccounts(ctx context.Context, user domain.PendingUser) (domain.PendingUser, error) {
	exists, err := s.deps.Accounts.AccountExists(ctx, user.Profile.Email)
	if err != nil {
		return user, err
	}
	if exists {
		user.AlreadyRegistered = true
		user.SkipRegister = true
	}
	return user, nil
}

// AssignDefaultApp assigns created users to the default application.
// Assignment failures are logged and do not change the outcome.
func (s *Subscribers) AssignDefaultApp(ctx context.Context, user domain.SubmittedUser) (domain.SubmittedUser, error) {
	if !user.Created || user.User == nil {
		return user, nil
	}
	log := s.logger.With(zap.String("email", user.Email()), zap.String("app_id", s.opts.DefaultAppID))
	if err := s.deps.Apps.AssignUserToApp(ctx, s.opts.DefaultAppID, *user.User); err != nil {
		log.Error("app assignment failed", zap.Error(err))
		return user, nil
	}
	log.Info("assigned user to app", zap.String("user_id", user.User.ID))
	user.AppAssigned = true
	return user, nil
}

// Audit logs every creation attempt and records created accounts.
func (s *Subscribers) Audit(ctx context.Context, user domain.SubmittedUser) (domain.SubmittedUser, error) {
	fields := []zap.Field{
		zap.String("email", user.Email()),
		zap.Bool("created", user.Created),
		zap.Bool("app_assigned", user.AppAssigned),
	}
	if user.User != nil {
		fields = append(fields, zap.String("user_id", user.User.ID), zap.String("status", user.User.Status))
	}
	if user.Error != "" {
		fields = append(fields, zap.String("error", user.Error))
	}
	s.logger.Info("account submitted", fields...)

	if user.Created && s.deps.Recorder != nil {
		s.deps.Recorder.Remember(ctx, user.Email(), true)
	}
	return user, nil
}
