package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhicism/dailyplanner/internal/api/middleware"
	"github.com/abhicism/dailyplanner/internal/core/domain"
)

// currentUser returns the user the Auth middleware resolved for this request.
// Routes mounted without the middleware always get a 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.ContextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return user, nil
}
