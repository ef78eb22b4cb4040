// Package api contains the HTTP handlers for the template query service.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"workflow-templates/backend/internal/repository"
	"workflow-templates/backend/internal/services"
	"workflow-templates/backend/pkg/models"
)

// Handler holds the dependencies for the query API.
type Handler struct {
	service *services.TemplateService
}

// NewHandler creates a new Handler.
func NewHandler(service *services.TemplateService) *Handler {
	return &Handler{service: service}
}

// Register mounts the query API routes on the given group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/search", h.Search)
	g.GET("/template/:id", h.GetTemplate)
	g.GET("/categories", h.ListCategories)
	g.GET("/triggers", h.ListTriggerTypes)
	g.GET("/services", h.ListServices)
	g.GET("/stats", h.Stats)
	g.GET("/popular", h.Popular)
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Database  bool      `json:"database"`
}

// HandleHealth reports basic liveness plus store reachability.
func (h *Handler) HandleHealth(c echo.Context) error {
	_, err := h.service.Stats(c.Request().Context())
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "workflow-templates",
		Version:   "1.0.0",
		Database:  err == nil,
	})
}

// Search runs a free-text plus filtered search.
// (POST /api/search)
func (h *Handler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	results, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []*models.Template{}
	}
	return c.JSON(http.StatusOK, results)
}

// GetTemplate returns one record with computed statistics.
// (GET /api/template/:id)
func (h *Handler) GetTemplate(c echo.Context) error {
	detail, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Template not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// ListCategories lists distinct categories with counts.
// (GET /api/categories)
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.service.ListCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if categories == nil {
		categories = []models.NamedCount{}
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

// ListTriggerTypes lists distinct trigger types with counts.
// (GET /api/triggers)
func (h *Handler) ListTriggerTypes(c echo.Context) error {
	triggers, err := h.service.ListTriggerTypes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if triggers == nil {
		triggers = []models.TriggerCount{}
	}
	return c.JSON(http.StatusOK, map[string]any{"triggers": triggers})
}

// ListServices lists the most used services across all templates.
// (GET /api/services)
func (h *Handler) ListServices(c echo.Context) error {
	list, err := h.service.ListServices(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if list.Services == nil {
		list.Services = []models.NamedCount{}
	}
	return c.JSON(http.StatusOK, list)
}

// Stats returns aggregate statistics over the whole store.
// (GET /api/stats)
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// Popular returns the top-ranked templates.
// (GET /api/popular?limit=10)
func (h *Handler) Popular(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit: "+raw)
		}
		limit = parsed
	}

	results, err := h.service.Popular(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []*models.Template{}
	}
	return c.JSON(http.StatusOK, results)
}
