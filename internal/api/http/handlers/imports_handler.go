package handlers

import (
	"context"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/okta-import/internal/api/dto"
	"github.com/spec-kit/okta-import/internal/auth"
	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/service"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

// ImportService is what the imports endpoints need from the service layer.
type ImportService interface {
	Import(ctx context.Context, adminID string, in service.ImportInput) (*domain.ImportRun, error)
	Get(ctx context.Context, id string) (*domain.ImportRun, error)
	List(ctx context.Context, limit int) ([]domain.ImportRun, error)
	Defaults() service.FormDefaults
}

// ImportsHandler manages batch import endpoints.
type ImportsHandler struct {
	service ImportService
}

// NewImportsHandler constructs handler.
func NewImportsHandler(importService ImportService) *ImportsHandler {
	return &ImportsHandler{service: importService}
}

// Defaults GET /imports/defaults.
func (h *ImportsHandler) Defaults(c *fiber.Ctx) error {
	d := h.service.Defaults()
	return c.JSON(fiber.Map{"data": dto.ImportDefaultsResponse{
		Password: d.Password,
		Question: d.Question,
		Answer:   d.Answer,
	}})
}

// Create POST /imports.
func (h *ImportsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("invalid import request", validationDetails(err))
	}

	run, err := h.service.Import(c.UserContext(), principal.Admin.ID, service.ImportInput{
		EmailsList: req.EmailsList,
		Password:   req.Password,
		Question:   req.Question,
		Answer:     req.Answer,
	})
	if err != nil {
		if run != nil && run.Status == domain.ImportRunStatusRejected {
			domainErr := apperrors.ToDomainError(err)
			if domainErr.Details == nil {
				domainErr.Details = map[string]any{}
			}
			domainErr.Details["run_id"] = run.ID
			return domainErr
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewImportRunDetail(run)})
}

// List GET /imports.
func (h *ImportsHandler) List(c *fiber.Ctx) error {
	runs, err := h.service.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	items := make([]dto.ImportRunSummary, 0, len(runs))
	for i := range runs {
		items = append(items, dto.NewImportRunSummary(&runs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /imports/:id.
func (h *ImportsHandler) Get(c *fiber.Ctx) error {
	run, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewImportRunDetail(run)})
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			details[field] = fieldErr.Error()
		}
		return details
	}
	details["error"] = err.Error()
	return details
}
