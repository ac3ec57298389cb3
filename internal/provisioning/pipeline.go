package provisioning

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/events"
	"github.com/spec-kit/okta-import/internal/policy"
)

const (
	reasonAlreadyRegistered = "account already registered"
	reasonSkipRequested     = "skipped by import observer"
)

// IdentityProvider creates accounts.
type IdentityProvider interface {
	CreateUser(ctx context.Context, profile domain.Profile, credentials domain.Credentials) (*domain.IdentityUser, error)
}

// Options tunes the pipeline.
type Options struct {
	// CheckPasswordPerEmail also applies the email rule of the password
	// policy to every recipient.
	CheckPasswordPerEmail bool
}

// Request is one submitted import.
type Request struct {
	RawEmails string
	Password  string
	Question  string
	Answer    string
}

// Pipeline runs a batch import: validate, then for every email build,
// notify, create and notify again.
type Pipeline struct {
	idp        IdentityProvider
	dispatcher events.Dispatcher
	logger     *zap.Logger
	opts       Options
}

// NewPipeline wires the pipeline. A nil dispatcher means no observers.
func NewPipeline(idp IdentityProvider, dispatcher events.Dispatcher, logger *zap.Logger, opts Options) *Pipeline {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		idp:        idp,
		dispatcher: dispatcher,
		logger:     logger.Named("pipeline"),
		opts:       opts,
	}
}

// ImportBatch processes req. An invalid shared password or a failing
// validate observer aborts before any account is attempted; per-email
// failures are recorded in the result and the batch continues. When ctx is
// cancelled between emails the partial result is returned with ctx.Err().
func (p *Pipeline) ImportBatch(ctx context.Context, req Request, defaults domain.ProvisioningDefaults) (*domain.BatchResult, error) {
	batch := ParseEmailBatch(req.RawEmails)

	// Checked once for the whole batch, without a recipient.
	if err := policy.Validate(req.Password, "").Err(); err != nil {
		p.logger.Info("batch rejected", zap.Error(err))
		return nil, err
	}

	batch, err := p.dispatcher.DispatchValidate(ctx, batch)
	if err != nil {
		p.logger.Error("validate observer failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrObserver, err)
	}

	result := &domain.BatchResult{Results: make([]domain.EmailResult, 0, len(batch))}
	for _, email := range batch {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Add(p.importOne(ctx, email, req, defaults))
	}

	p.logger.Info("batch processed",
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (p *Pipeline) importOne(ctx context.Context, email string, req Request, defaults domain.ProvisioningDefaults) domain.EmailResult {
	res := domain.EmailResult{Email: email}
	log := p.logger.With(zap.String("email", email))

	user := BuildPendingUser(email, Overrides{
		Password: req.Password,
		Question: req.Question,
		Answer:   req.Answer,
	}, defaults)

	if p.opts.CheckPasswordPerEmail {
		if check := policy.Validate(user.Credentials.Password, email); !check.Valid {
			log.Info("password rejected for recipient", zap.String("reason", string(check.Reason)))
			res.Outcome = domain.OutcomeFailed
			res.Reason = check.Message
			return res
		}
	}

	user, err := p.dispatcher.DispatchPreSubmit(ctx, user)
	res.AlreadyRegistered = user.AlreadyRegistered
	switch {
	case errors.Is(err, events.ErrSkip):
		log.Info("skipped by observer")
		res.Outcome = domain.OutcomeSkipped
		res.Reason = reasonSkipRequested
		return res
	case err != nil:
		log.Error("pre-submit observer failed", zap.Error(err))
		res.Outcome = domain.OutcomeFailed
		res.Reason = err.Error()
		return res
	case user.SkipRegister:
		res.Outcome = domain.OutcomeSkipped
		res.Reason = reasonSkipRequested
		if user.AlreadyRegistered {
			res.Reason = reasonAlreadyRegistered
		}
		log.Info("skipped", zap.String("reason", res.Reason))
		return res
	}

	submitted := domain.SubmittedUser{Pending: user}
	created, err := p.idp.CreateUser(ctx, user.Profile, user.Credentials)
	if err == nil && created == nil {
		err = errors.New("identity provider returned no user")
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrAccountCreation, err)
		log.Error("failed to create user", zap.Error(err))
		submitted.Error = err.Error()
	} else {
		log.Info("created user", zap.String("user_id", created.ID))
		submitted.User = created
		submitted.Created = true
	}

	final, postErr := p.dispatcher.DispatchPostSubmit(ctx, submitted)
	if postErr != nil {
		log.Warn("post-submit observer failed", zap.Error(postErr))
	}

	res.AppAssigned = final.AppAssigned
	if submitted.Created {
		res.Outcome = domain.OutcomeCreated
		res.UserID = created.ID
	} else {
		res.Outcome = domain.OutcomeFailed
		res.Reason = submitted.Error
	}
	return res
}
