package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/observability"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger.Named("http"), metrics))
}

// requestTimeoutMiddleware bounds the context handed to the import pipeline;
// the pipeline stops between emails once it expires.
func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(routeLabel(c), c.Method(), domainErr.Code)
			logDomainError(logger, c, domainErr)
			err = writeError(c, domainErr)
		}()
		return c.Next()
	}
}

// logDomainError logs server faults as errors and rejected batches with
// their reason and run; other client errors stay at debug level.
func logDomainError(logger *zap.Logger, c *fiber.Ctx, domainErr *apperrors.DomainError) {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("route", routeLabel(c)),
		zap.String("code", domainErr.Code),
	}
	switch {
	case domainErr.HTTPStatus >= fiber.StatusInternalServerError:
		logger.Error("request failed", append(fields, zap.Error(domainErr))...)
	case domainErr.Code == "INVALID_PASSWORD" || domainErr.Code == "IMPORT_REJECTED":
		if runID, ok := domainErr.Details["run_id"].(string); ok {
			fields = append(fields, zap.String("run_id", runID))
		}
		if reason, ok := domainErr.Details["reason"].(string); ok {
			fields = append(fields, zap.String("reason", reason))
		}
		logger.Info("import rejected", fields...)
	default:
		logger.Debug("request rejected", append(fields, zap.String("message", domainErr.Message))...)
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// routeLabel prefers the matched route pattern so IDs do not explode metric
// cardinality.
func routeLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
