// Package auth holds the route guards. Authentication is optional on
// every route; the guards below add the hard requirements.
package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/weld_shop/internal/tokens"
)

const principalKey = "principal"

// Principal is the authenticated caller, stored on the echo context.
type Principal struct {
	Username string
	Roles    string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && strings.Contains(p.Roles, tokens.RoleClaimAdmin)
}

// FromContext returns the caller, or nil for anonymous requests.
func FromContext(c echo.Context) *Principal {
	p, _ := c.Get(principalKey).(*Principal)
	return p
}

type Gate struct {
	Tokens *tokens.Service
}

// Authenticate resolves a Bearer token into a Principal when one is
// present and valid. Absent or broken tokens leave the request
// anonymous; the route guards decide whether that is acceptable.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return next(c)
		}
		claims, err := g.Tokens.ParseAccess(token)
		if err != nil {
			return next(c)
		}
		c.Set(principalKey, &Principal{Username: claims.Subject, Roles: claims.Roles})
		return next(c)
	}
}
