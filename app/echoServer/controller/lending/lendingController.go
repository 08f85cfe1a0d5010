package lending

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/jwtx"
	ls "github.com/PawelKwidzinski/console-and-games-rental/service/lending"
)

type Controller struct {
	Svc ls.Service
	Log *slog.Logger
}

// Borrow a game
// @Summary      Borrow game
// @Description  Open a loan on a shareable game owned by someone else
// @Tags         lending
// @Produce      json
// @Param        id  path  int  true  "Game ID"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]any "not lendable or own game"
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "already borrowed"
// @Failure      503  {object}  map[string]any "storage contention, retry"
// @Router       /v1/games/{id}/borrow [post]
func (h *Controller) Borrow(c echo.Context) error {
	gameID, uid, err := h.params(c)
	if err != nil {
		return err
	}
	loanID, err := h.Svc.Borrow(c.Request().Context(), gameID, uid)
	if err != nil {
		return h.fail(c, "borrow", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"loan_id": loanID})
}

// Return a borrowed game
// @Summary      Return game
// @Description  Move the caller's open loan to pending approval
// @Tags         lending
// @Produce      json
// @Param        id  path  int  true  "Game ID"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "not borrowed or already returned"
// @Router       /v1/games/{id}/return [patch]
func (h *Controller) Return(c echo.Context) error {
	gameID, uid, err := h.params(c)
	if err != nil {
		return err
	}
	loanID, err := h.Svc.ReturnGame(c.Request().Context(), gameID, uid)
	if err != nil {
		return h.fail(c, "return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"loan_id": loanID})
}

// Approve a return
// @Summary      Approve return
// @Description  Owner closes the pending loan on their game
// @Tags         lending
// @Produce      json
// @Param        id  path  int  true  "Game ID"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any "caller is not the owner"
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "nothing pending approval"
// @Router       /v1/games/{id}/return/approve [patch]
func (h *Controller) ApproveReturn(c echo.Context) error {
	gameID, uid, err := h.params(c)
	if err != nil {
		return err
	}
	loanID, err := h.Svc.ApproveReturn(c.Request().Context(), gameID, uid)
	if err != nil {
		return h.fail(c, "approve return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"loan_id": loanID})
}

// PATCH /v1/games/:id/shareable
func (h *Controller) SetShareable(c echo.Context) error {
	gameID, uid, err := h.params(c)
	if err != nil {
		return err
	}
	id, err := h.Svc.SetShareable(c.Request().Context(), gameID, uid)
	if err != nil {
		return h.fail(c, "set shareable", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"game_id": id})
}

// PATCH /v1/games/:id/archived
func (h *Controller) SetArchived(c echo.Context) error {
	gameID, uid, err := h.params(c)
	if err != nil {
		return err
	}
	id, err := h.Svc.SetArchived(c.Request().Context(), gameID, uid)
	if err != nil {
		return h.fail(c, "set archived", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"game_id": id})
}

func (h *Controller) params(c echo.Context) (gameID, userID int64, err error) {
	gameID, err = strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || gameID <= 0 {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, err = jwtx.UserIDFromContext(c)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return gameID, userID, nil
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch ls.Code(err) {
	case ls.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
	case ls.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
	case ls.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case ls.ErrUnavailable:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "temporarily unavailable, retry"})
	default:
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
