// Package loggingmw installs a request-scoped slog logger on every
// request and writes one completion line per request. Health probe
// endpoints are exempt from completion logging.
package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/logging"
)

const healthPrefix = "/health"

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			l := base.With(
				"method", req.Method,
				"route", c.Path(),
				"path", req.URL.Path,
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			if rid := req.Header.Get(echo.HeaderXRequestID); rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			if strings.HasPrefix(req.URL.Path, healthPrefix) {
				return nil
			}
			complete(l, c, err, time.Since(start))
			return nil
		}
	}
}

// complete writes the single per-request summary line, leveled by how
// the request ended.
func complete(l *slog.Logger, c echo.Context, err error, dur time.Duration) {
	status := c.Response().Status
	attrs := []any{
		"status", status,
		"latency_ms", dur.Milliseconds(),
		"bytes_out", c.Response().Size,
	}
	switch {
	case err != nil || status >= 500:
		if err != nil {
			attrs = append(attrs, "error", err.Error())
		}
		l.Error("request_complete", attrs...)
	case status >= 400:
		l.Warn("request_complete", attrs...)
	default:
		l.Info("request_complete", attrs...)
	}
}
