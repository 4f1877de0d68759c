package book

import (
	"log/slog"
	"net/http"
	"strconv"

	catalogsvc "biblioteca/service/catalog"
	"biblioteca/util/fault"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc catalogsvc.Service
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

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "book list", err)
	}
	// The frontend consumes the array directly.
	if rows == nil {
		rows = []catalogsvc.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, row)
}

// POST /api/books
func (h *Controller) Create(c echo.Context) error {
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, author and isbn are required; stock must not be negative"})
	}
	b, err := h.Svc.Create(c.Request().Context(), req.Title, req.Author, req.ISBN, req.Stock)
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /api/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, author and isbn are required; stock must not be negative"})
	}
	b, err := h.Svc.Update(c.Request().Context(), id, req.Title, req.Author, req.ISBN, req.Stock)
	if err != nil {
		return h.fail(c, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /api/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /api/books/dar-baja/:id
func (h *Controller) Decommission(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req DecommissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	msg, err := h.Svc.Decommission(c.Request().Context(), id, req.Reason)
	if err != nil {
		return h.fail(c, "book decommission", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
