package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediadeck/internal/constants"
	"mediadeck/pkg/security"
)

type installRequest struct {
	URL string `json:"url" binding:"required"`
}

type toggleCatalogRequest struct {
	Type    string `json:"type" binding:"required"`
	ID      string `json:"id" binding:"required"`
	Enabled bool   `json:"enabled"`
}

type metadataSettingsRequest struct {
	APIKey  string `json:"apiKey"`
	Enabled bool   `json:"enabled"`
}

// handleListAddons returns the installed addon providers.
func (h *Handler) handleListAddons(c *gin.Context) {
	settings, err := h.services.Store.Load()
	if err != nil {
		h.services.Logger.Errorf("[Handler] failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": settings.Providers})
}

// handleInstallAddon installs an addon from its manifest URL.
func (h *Handler) handleInstallAddon(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing manifest url"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.InstallTimeout)
	defer cancel()

	provider, err := h.services.Installer.Install(ctx, req.URL)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"provider": provider})
}

// handleUninstallAddon removes an installed addon.
func (h *Handler) handleUninstallAddon(c *gin.Context) {
	if err := h.services.Installer.Uninstall(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleToggleCatalog enables or disables one declared catalog of an addon.
func (h *Handler) handleToggleCatalog(c *gin.Context) {
	var req toggleCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing catalog type or id"})
		return
	}

	if err := h.services.Installer.ToggleCatalog(c.Param("id"), req.Type, req.ID, req.Enabled); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetMetadataSettings reports the metadata provider state. The API key
// is only ever returned masked.
func (h *Handler) handleGetMetadataSettings(c *gin.Context) {
	settings, err := h.services.Store.Load()
	if err != nil {
		h.services.Logger.Errorf("[Handler] failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	validator := security.NewAPIKeyValidator()
	c.JSON(http.StatusOK, gin.H{
		"enabled":    settings.MetadataProvider.Enabled,
		"configured": settings.MetadataProvider.APIKey != "",
		"apiKey":     validator.MaskAPIKey(settings.MetadataProvider.APIKey),
	})
}

// handleSetMetadataSettings updates the metadata provider key and toggle.
func (h *Handler) handleSetMetadataSettings(c *gin.Context) {
	var req metadataSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.services.Installer.SetMetadataProvider(req.APIKey, req.Enabled); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
