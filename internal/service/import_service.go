package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/observability"
	"github.com/spec-kit/okta-import/internal/policy"
	"github.com/spec-kit/okta-import/internal/provisioning"
	"github.com/spec-kit/okta-import/internal/repository"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

// BatchImporter runs one import batch.
type BatchImporter interface {
	ImportBatch(ctx context.Context, req provisioning.Request, defaults domain.ProvisioningDefaults) (*domain.BatchResult, error)
}

// ImportInput is the form submitted by an administrator. Empty credential
// fields fall back to the provisioning defaults.
type ImportInput struct {
	EmailsList string
	Password   string
	Question   string
	Answer     string
}

// FormDefaults pre-fills the import form.
type FormDefaults struct {
	Password string
	Question string
	Answer   string
}

// ImportServiceConfig tunes the import service.
type ImportServiceConfig struct {
	MaxEmailsPerBatch int
	ListLimit         int
}

// ImportService records and runs batch imports.
type ImportService struct {
	importer BatchImporter
	runs     repository.ImportRunRepository
	defaults domain.ProvisioningDefaults
	metrics  *observability.Metrics
	logger   *zap.Logger
	cfg      ImportServiceConfig
	newID    func() string
}

// NewImportService constructs the service. defaults is copied per import.
func NewImportService(
	importer BatchImporter,
	runs repository.ImportRunRepository,
	defaults domain.ProvisioningDefaults,
	metrics *observability.Metrics,
	logger *zap.Logger,
	cfg ImportServiceConfig,
) *ImportService {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	return &ImportService{
		importer: importer,
		runs:     runs,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger.Named("import"),
		cfg:      cfg,
		newID:    uuid.NewString,
	}
}

// Import runs a batch on behalf of adminID (empty for CLI runs). A rejected
// password or a batch refused by a validate observer is stored as a REJECTED
// run and its error is returned together with the run.
func (s *ImportService) Import(ctx context.Context, adminID string, in ImportInput) (*domain.ImportRun, error) {
	defaults := s.defaults
	if limit := s.cfg.MaxEmailsPerBatch; limit > 0 {
		if n := len(provisioning.ParseEmailBatch(in.EmailsList)); n > limit {
			return nil, apperrors.NewValidationError("too many emails in batch", map[string]any{
				"max":   limit,
				"count": n,
			})
		}
	}

	run := &domain.ImportRun{
		ID:     s.newID(),
		Status: domain.ImportRunStatusRunning,
	}
	if adminID != "" {
		run.AdminID = &adminID
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}

	log := s.logger.With(zap.String("run_id", run.ID))
	log.Info("import started")

	req := provisioning.Request{
		RawEmails: in.EmailsList,
		Password:  orDefault(in.Password, defaults.Password),
		Question:  orDefault(in.Question, defaults.Question),
		Answer:    orDefault(in.Answer, defaults.Answer),
	}
	result, importErr := s.importer.ImportBatch(ctx, req, defaults)

	var pwErr *policy.PasswordError
	switch {
	case errors.As(importErr, &pwErr):
		run.Status = domain.ImportRunStatusRejected
		run.Error = pwErr.Message
	case errors.Is(importErr, provisioning.ErrObserver):
		run.Status = domain.ImportRunStatusRejected
		run.Error = importErr.Error()
	case importErr != nil:
		run.Apply(result)
		run.Status = domain.ImportRunStatusCompleted
		run.Error = importErr.Error()
	default:
		run.Apply(result)
		run.Status = domain.ImportRunStatusCompleted
	}

	// A cancelled request must still close the run.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.runs.Finish(finishCtx, run); err != nil {
		log.Error("failed to store import run", zap.Error(err))
		return nil, fmt.Errorf("finish import run: %w", err)
	}
	s.metrics.RecordBatch(run.Status, result)

	log.Info("import finished",
		zap.String("status", string(run.Status)),
		zap.Int("created", run.Created),
		zap.Int("failed", run.Failed),
		zap.Int("skipped", run.Skipped))

	if importErr != nil {
		return run, importErr
	}
	return run, nil
}

// Get returns a run with its per-email results.
func (s *ImportService) Get(ctx context.Context, id string) (*domain.ImportRun, error) {
	return s.runs.GetByID(ctx, id)
}

// List returns the most recent runs, newest first.
func (s *ImportService) List(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	return s.runs.List(ctx, limit)
}

// Defaults returns the values the import form is pre-filled with.
func (s *ImportService) Defaults() FormDefaults {
	return FormDefaults{
		Password: s.defaults.Password,
		Question: s.defaults.Question,
		Answer:   s.defaults.Answer,
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
