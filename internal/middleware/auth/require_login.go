package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if FromContext(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "требуется авторизация")
		}
		return next(c)
	}
}
