// Package handlers implements the HTTP API over the aggregation core.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/services"
)

// Handler handles HTTP requests against the aggregation core.
type Handler struct {
	services *services.Container
}

// New creates a Handler over the given service container.
func New(services *services.Container) *Handler {
	return &Handler{services: services}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/rows", h.handleRows)
		api.GET("/search", h.handleSearch)

		api.GET("/detail/:type/:id", h.handleDetail)
		api.GET("/seasons/:type/:id", h.handleSeasons)
		api.GET("/episodes/:type/:id", h.handleEpisodes)

		api.GET("/streams/:type/:id", h.handleStreams)

		api.GET("/addons", h.handleListAddons)
		api.POST("/addons", h.handleInstallAddon)
		api.DELETE("/addons/:id", h.handleUninstallAddon)
		api.POST("/addons/:id/catalogs", h.handleToggleCatalog)

		api.GET("/settings/metadata", h.handleGetMetadataSettings)
		api.PUT("/settings/metadata", h.handleSetMetadataSettings)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps a classified error to an HTTP status and a user-facing
// message. Unclassified errors stay opaque.
func (h *Handler) renderError(c *gin.Context, err error) {
	var re *apperrors.ResolveError
	if !errors.As(err, &re) {
		h.services.Logger.Errorf("[Handler] unclassified error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusNotFound
	switch re.Type {
	case apperrors.ErrorTypeConfigValidation:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeNotConfigured:
		status = http.StatusPreconditionFailed
	}
	c.JSON(status, gin.H{"error": re.Message, "type": re.Type})
}
