package feedback

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/jwtx"
	"github.com/PawelKwidzinski/console-and-games-rental/model"
	feedbacksvc "github.com/PawelKwidzinski/console-and-games-rental/service/feedback"
)

type Controller struct {
	Svc feedbacksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/feedbacks
func (h *Controller) Create(c echo.Context) error {
	var req model.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, err := h.Svc.Save(c.Request().Context(), uid, req)
	if err != nil {
		switch {
		case errors.Is(err, feedbacksvc.ErrGameNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		case errors.Is(err, feedbacksvc.ErrNotAllowed), errors.Is(err, feedbacksvc.ErrOwnGame):
			return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
		default:
			h.Log.Error("feedback create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/feedbacks/game/:id
func (h *Controller) ListByGame(c echo.Context) error {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || gameID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	p, err := h.Svc.ListByGame(c.Request().Context(), gameID, uid, page, size)
	if err != nil {
		h.Log.Error("feedback list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}
