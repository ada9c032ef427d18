package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ubateam/uba-backend/internal/logging"
	"github.com/ubateam/uba-backend/internal/rbac"
	"github.com/ubateam/uba-backend/internal/tokens"
)

const contextKey = "auth_user"

// AuthContext carries the verified identity through the request. Roles are
// the names embedded at token issuance; authorization stages below never
// trust them and re-resolve from the store.
type AuthContext struct {
	UserID uint
	Email  string
	Roles  []string
}

func FromContext(c echo.Context) (*AuthContext, bool) {
	ac, ok := c.Get(contextKey).(*AuthContext)
	return ac, ok
}

type Middleware struct {
	Tokens   *tokens.Service
	Resolver *rbac.Resolver
}

// RequireAuth verifies the bearer token and attaches the identity to the
// request. It always runs before any authorization stage.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Auth Error")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		claims, err := m.Tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
		}

		c.Set(contextKey, &AuthContext{
			UserID: userID,
			Email:  claims.Email,
			Roles:  claims.Roles,
		})
		return next(c)
	}
}

// RequireRole admits the request if the user's stored roles intersect the
// required names.
func (m *Middleware) RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := FromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			ok, err := m.Resolver.HasRole(c.Request().Context(), ac.UserID, required...)
			if err != nil {
				return m.resolveError(c, err)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}

// RequirePermission admits the request if any of the user's stored roles
// carries the named permission.
func (m *Middleware) RequirePermission(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := FromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			ok, err := m.Resolver.HasPermission(c.Request().Context(), ac.UserID, name)
			if err != nil {
				return m.resolveError(c, err)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Access Forbidden")
			}
			return next(c)
		}
	}
}

func (m *Middleware) resolveError(c echo.Context, err error) error {
	if errors.Is(err, rbac.ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	logging.FromContext(c.Request().Context()).Error("rbac resolve failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
