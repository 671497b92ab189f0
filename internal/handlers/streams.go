package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediadeck/internal/constants"
)

// handleStreams fans out to every streaming-capable addon and returns ranked
// stream candidates. For series, season and episode query parameters select
// the episode.
func (h *Handler) handleStreams(c *gin.Context) {
	season, err := strconv.Atoi(c.DefaultQuery("season", "0"))
	if err != nil || season < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid season number"})
		return
	}
	episode, err := strconv.Atoi(c.DefaultQuery("episode", "0"))
	if err != nil || episode < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid episode number"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout)
	defer cancel()

	candidates, resolveErr := h.services.Streams.Resolve(ctx, c.Param("type"), c.Param("id"), season, episode)
	if resolveErr != nil {
		h.renderError(c, resolveErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streams": candidates})
}
