package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/abhicism/dailyplanner/internal/core/ports"
)

// DayHandler serves the planner endpoints. Every route requires the Auth
// middleware.
type DayHandler struct {
	planner ports.PlannerService
}

func NewDayHandler(planner ports.PlannerService) *DayHandler {
	return &DayHandler{planner: planner}
}

// SaveDay creates or overwrites the caller's entry for a date key.
//
// @Summary      Save a day
// @Tags         planner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveDayRequest  true  "Date key and payload object"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /save_day [post]
func (h *DayHandler) SaveDay(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req saveDayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.planner.SaveDay(c.Request().Context(), user, req.DateKey, req.Payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "saved"})
}

// GetDay returns the stored payload text for a date key, or null.
//
// @Summary      Get a day
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Param        date_key  path      string  true  "Date key"
// @Success      200       {object}  dayResponse
// @Failure      401       {object}  errorResponse
// @Router       /get_day/{date_key} [get]
func (h *DayHandler) GetDay(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	dateKey, err := pathParam(c, "date_key")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date key")
	}

	payload, err := h.planner.GetDay(c.Request().Context(), user, dateKey)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dayResponse{Data: payload})
}

// History lists every entry of the caller.
//
// @Summary      List saved days
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   historyItem
// @Failure      401  {object}  errorResponse
// @Router       /history [get]
func (h *DayHandler) History(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	entries, err := h.planner.History(c.Request().Context(), user)
	if err != nil {
		return err
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{DateKey: e.DateKey, Payload: e.Payload})
	}
	return c.JSON(http.StatusOK, items)
}

// pathParam returns the decoded value of a path parameter. Echo matches on
// URL.RawPath when the request carries one, and only then are the params
// still escaped.
func pathParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}
