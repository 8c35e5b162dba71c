// Package api exposes the backoffice searches over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler serves the search routes of a registry.
type Handler struct {
	registry *backoffice.Registry
	logger   *zap.Logger
}

// NewRouter builds the gin engine serving registry.
func NewRouter(registry *backoffice.Registry, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{registry: registry, logger: logger}

	r := gin.New()
	r.Use(RequestID(), AccessLog(logger), Recovery(logger))

	r.GET("/healthz", h.HandleHealth)
	v1 := r.Group("/api/v1")
	v1.GET("/resources", h.HandleResources)
	v1.GET("/:resource/fields", h.HandleFields)
	v1.POST("/:resource/search", h.HandleSearch)
	return r
}

func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": "ok"}})
}

func (h *Handler) HandleResources(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.registry.Resources()})
}

func (h *Handler) service(c *gin.Context) (*backoffice.SearchService, bool) {
	name := c.Param("resource")
	s, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, Response{Error: "unknown resource: " + name})
	}
	return s, ok
}

func (h *Handler) HandleFields(c *gin.Context) {
	s, ok := h.service(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: s.Fields()})
}

func (h *Handler) HandleSearch(c *gin.Context) {
	s, ok := h.service(c)
	if !ok {
		return
	}

	var req backoffice.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request: " + err.Error()})
		return
	}

	result, err := s.Search(c.Request.Context(), req)
	switch {
	case errors.Is(err, backoffice.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
	case err != nil:
		h.logger.Error("Search failed",
			zap.String("resource", s.Resource()),
			zap.String("request_id", RequestIDOf(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, Response{Error: "search failed"})
	default:
		c.JSON(http.StatusOK, Response{Success: true, Data: result})
	}
}
