package loggingmw

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/weld_shop/internal/logging"
)

func TestRequestLoggerWritesCompletionLine(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/products", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("handler_hit")
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := buf.String()
	require.Contains(t, out, `"msg":"request_complete"`)
	require.Contains(t, out, `"route":"/products"`)
	require.Contains(t, out, `"request_id":"req-1"`)
	require.Contains(t, out, `"msg":"handler_hit"`, "request-scoped logger reaches the handler")
	require.Contains(t, out, `"status":200`)
}

func TestRequestLoggerSkipsHealthProbes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, buf.String())
}
