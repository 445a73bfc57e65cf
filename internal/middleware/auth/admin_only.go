package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin distinguishes missing credentials (401) from present
// but insufficient ones (403).
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := FromContext(c)
		if p == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "требуется авторизация")
		}
		if !p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "недостаточно прав")
		}
		return next(c)
	}
}
