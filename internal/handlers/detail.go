package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediadeck/internal/constants"
)

// handleDetail resolves full metadata for one item. The optional from query
// parameter names the provider whose row the user clicked, so it is asked
// first.
func (h *Handler) handleDetail(c *gin.Context) {
	contentType := c.Param("type")
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout)
	defer cancel()

	record, providerID, err := h.services.Details.Resolve(ctx, contentType, id, c.Query("from"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record, "provider": providerID})
}

// handleSeasons lists the season numbers of a series. Failures degrade to a
// single season rather than an error.
func (h *Handler) handleSeasons(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout)
	defer cancel()

	seasons := h.services.Seasons.ListSeasons(ctx, c.Query("provider"), c.Param("type"), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

// handleEpisodes lists the episodes of one season.
func (h *Handler) handleEpisodes(c *gin.Context) {
	season, err := strconv.Atoi(c.DefaultQuery("season", "1"))
	if err != nil || season < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid season number"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout)
	defer cancel()

	episodes, resolveErr := h.services.Seasons.ListEpisodes(ctx, c.Query("provider"), c.Param("type"), c.Param("id"), season)
	if resolveErr != nil {
		h.renderError(c, resolveErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"episodes": episodes})
}
