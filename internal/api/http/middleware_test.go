package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/observability"
)

func newMiddlewareApp(metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, timeout)
	return app
}

func scrape(t *testing.T, metrics *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestErrorsAreCountedByRoutePattern(t *testing.T) {
	metrics := observability.NewMetrics()
	app := newMiddlewareApp(metrics, 0)
	app.Get("/imports/:id", func(c *fiber.Ctx) error { return pgx.ErrNoRows })

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/imports/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	assert.Contains(t, scrape(t, metrics),
		`okta_import_http_errors_total{code="NOT_FOUND",method="GET",path="/imports/:id"} 2`)
}

func TestPanicBecomesInternalError(t *testing.T) {
	app := newMiddlewareApp(observability.NewMetrics(), 0)
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"code":"INTERNAL_ERROR"`)
}

func TestRequestDeadlineBecomesTimeout(t *testing.T) {
	app := newMiddlewareApp(observability.NewMetrics(), 20*time.Millisecond)
	app.Post("/imports", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return c.SendStatus(http.StatusCreated)
		}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/imports", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}
