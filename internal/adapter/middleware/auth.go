package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"smartloans/internal/usecase/auth"
)

const principalKey = "principal"

// TokenParser is the slice of the auth usecase the middleware needs.
type TokenParser interface {
	ParseToken(tokenString string) (*auth.Principal, error)
}

// Auth extracts and validates the bearer token, storing the authenticated
// principal in the request context. The core trusts this principal; it never
// re-authenticates.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			p, err := parser.ParseToken(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "could not validate user"})
			}
			c.Set(principalKey, *p)
			return next(c)
		}
	}
}

// RequireAdmin guards admin-only routes. Run it after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok || p.Role != "admin" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "unauthorized access"})
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal set by Auth.
func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
