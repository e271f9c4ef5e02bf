// Package server exposes a document source over HTTP as cursor-paged JSON.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/paging"
)

// Handler serves pages of one source.
type Handler struct {
	src    document.Source
	order  document.OrderBy
	logger *logger.Logger
}

// NewHandler creates a handler over src. order must match the order src
// pages in, since cursors carry its field.
func NewHandler(src document.Source, order document.OrderBy, l *logger.Logger) *Handler {
	if l == nil {
		l = logger.StdLogger()
	}
	return &Handler{src: src, order: order, logger: l}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/pages", h.List)
}

// List handles GET /pages?cursor=&limit=.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	params := paging.Params{Cursor: c.Query("cursor")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		params.Limit = limit
	}

	result, err := paging.Paginate(ctx, h.src, params, h.order, paging.Documents)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, paging.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		h.logger.Errorf(ctx, "list pages: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "source unavailable"})
	}
}

// NewRouter builds the engine with recovery and request logging.
func NewRouter(h *Handler, l *logger.Logger) *gin.Engine {
	if l == nil {
		l = h.logger
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(l))
	h.RegisterRoutes(router)
	return router
}

func loggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.WithContext(c.Request.Context()).WithFields(map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Debug("HTTP request")
	}
}
