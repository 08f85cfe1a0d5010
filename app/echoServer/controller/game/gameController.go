package game

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/jwtx"
	"github.com/PawelKwidzinski/console-and-games-rental/model"
	gamesvc "github.com/PawelKwidzinski/console-and-games-rental/service/game"
)

type Controller struct {
	Svc gamesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/games
func (h *Controller) Create(c echo.Context) error {
	var req model.GameRequest
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

	id, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		if errors.Is(err, gamesvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("game create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/games/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	g, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gamesvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		}
		h.Log.Error("game detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, g)
}

// GET /v1/games
func (h *Controller) ListAll(c echo.Context) error {
	return h.list(c, h.Svc.ListAll)
}

// GET /v1/games/owned
func (h *Controller) ListOwned(c echo.Context) error {
	return h.list(c, h.Svc.ListOwned)
}

// GET /v1/games/borrowed
func (h *Controller) ListBorrowed(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	page, size := paging(c)
	p, err := h.Svc.ListBorrowed(c.Request().Context(), uid, page, size)
	if err != nil {
		h.Log.Error("list borrowed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/games/returned
func (h *Controller) ListReturned(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	page, size := paging(c)
	p, err := h.Svc.ListReturned(c.Request().Context(), uid, page, size)
	if err != nil {
		h.Log.Error("list returned", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// POST /v1/games/:id/cover
func (h *Controller) UploadCover(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing file"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable file"})
	}
	defer src.Close()

	path, err := h.Svc.UploadCover(c.Request().Context(), id, uid, fh.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, gamesvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		case errors.Is(err, gamesvc.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("cover upload", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"cover": path})
}

func (h *Controller) list(c echo.Context, fn func(ctx context.Context, uid int64, page, size int) (model.PageResponse[model.Game], error)) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	page, size := paging(c)
	p, err := fn(c.Request().Context(), uid, page, size)
	if err != nil {
		h.Log.Error("game list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

func paging(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	return page, size
}
