package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	authmw "github.com/Skotchmaster/weld_shop/internal/middleware/auth"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return respondErr(l, "register", err)
	}
	l.Info("register_success", "username", user.Username)
	return c.String(http.StatusOK, "Пользователь успешно зарегистрирован")
}

// Logout is client-side only; the response tells the client how long
// its refresh token would have lived.
func (h *AuthHTTP) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":             "Выход выполнен",
		"refreshExpirationMs": h.Svc.Tokens.RefreshTTL.Milliseconds(),
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	tokens, err := h.Svc.Login(ctx, req)
	if err != nil {
		return respondErr(l, "login", err)
	}
	l.Info("login_success", "username", req.Username)
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	tokens, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondErr(l, "refresh", err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	p := authmw.FromContext(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "требуется авторизация")
	}
	user, err := h.Svc.CurrentUser(ctx, p.Username)
	if err != nil {
		return respondErr(l, "me", err)
	}
	return c.JSON(http.StatusOK, user)
}
