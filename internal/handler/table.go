package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
)

// TableHandler covers manager-only table administration plus the floor
// overview every role reads.
type TableHandler struct {
	Tables   *repository.TableRepo
	Sessions *repository.SessionRepo
}

func NewTableHandler(tables *repository.TableRepo, sessions *repository.SessionRepo) *TableHandler {
	if tables == nil || sessions == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables, Sessions: sessions}
}

type tableReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
	IsActive *bool  `json:"is_active"`
}

// Create handles POST /v1/tables.
func (h *TableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "capacity must be at least 1"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	t := model.Table{Name: req.Name, Capacity: req.Capacity, IsActive: active}
	if err := h.Tables.Create(c.Request().Context(), &t); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, tableJSON(&t))
}

// List handles GET /v1/tables.  ?active=true filters out retired tables.
func (h *TableHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	tables, err := h.Tables.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]echo.Map, 0, len(tables))
	for i := range tables {
		out = append(out, tableJSON(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tableJSON(t))
}

// Update handles PATCH /v1/tables/:id.  Omitted fields keep their
// current values.
func (h *TableHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx := c.Request().Context()
	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		t.Name = name
	}
	if req.Capacity > 0 {
		t.Capacity = req.Capacity
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if err := h.Tables.Update(ctx, t); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tableJSON(t))
}

// Floor handles GET /v1/floor: every active table with the session
// currently occupying it, if any.  Host stands poll this.
func (h *TableHandler) Floor(c echo.Context) error {
	ctx := c.Request().Context()
	tables, err := h.Tables.List(ctx, true)
	if err != nil {
		return respondErr(c, err)
	}
	occupied, err := h.Sessions.ActiveByTable(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]echo.Map, 0, len(tables))
	for i := range tables {
		entry := tableJSON(&tables[i])
		if s, ok := occupied[tables[i].ID]; ok {
			entry["session"] = sessionJSON(&s)
		} else {
			entry["session"] = nil
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}
