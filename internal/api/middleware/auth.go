package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abhicism/dailyplanner/internal/core/domain"
	"github.com/abhicism/dailyplanner/internal/core/ports"
)

// ContextKeyUser is the echo.Context key holding the resolved *domain.User.
const ContextKeyUser = "user"

// Auth resolves the bearer token to a user and injects it into the context.
// Every failure is a 401; the error handler adds the WWW-Authenticate header.
func Auth(sessions ports.SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := sessions.Resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}
