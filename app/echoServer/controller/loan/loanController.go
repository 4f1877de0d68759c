package loan

import (
	"log/slog"
	"net/http"
	"strconv"

	ledgersvc "biblioteca/service/ledger"
	"biblioteca/util/fault"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ledgersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch fault.KindOf(err) {
	case fault.Validation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case fault.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case fault.Conflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// GET /api/loans/active
func (h *Controller) ListActive(c echo.Context) error {
	rows, err := h.Svc.ListActive(c.Request().Context())
	if err != nil {
		return h.fail(c, "loan list", err)
	}
	if rows == nil {
		rows = []ledgersvc.ActiveLoanRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /api/loans
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookId and studentName are required"})
	}
	l, err := h.Svc.Create(c.Request().Context(), req.BookID, req.StudentName)
	if err != nil {
		return h.fail(c, "loan create", err)
	}
	return c.JSON(http.StatusCreated, l)
}

// POST /api/loans/return/:id
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Svc.Return(c.Request().Context(), id); err != nil {
		return h.fail(c, "loan return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "loan returned"})
}
