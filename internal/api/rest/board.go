package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns one page of the standings.
// GET /api/leaderboard?limit=50&offset=0.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", h.cfg.DefaultLimit, 1)
	if !ok {
		return
	}
	offset, ok := h.queryInt(c, "offset", 0, 0)
	if !ok {
		return
	}

	teams, total, err := h.service.Standings(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().
		Int("limit", limit).
		Int("offset", offset).
		Int("entries", len(teams)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    teams,
		Meta:    PageMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// GetTop returns the leading teams with their most recent scores.
// GET /api/leaderboard/top?limit=10.
func (h *Handler) GetTop(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", h.cfg.DefaultTopLimit, 1)
	if !ok {
		return
	}

	teams, err := h.service.Top(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve top teams")
		return
	}

	h.success(c, http.StatusOK, teams, "")
}

// GetStats returns the board summary.
// GET /api/leaderboard/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Failed to retrieve statistics")
		return
	}

	h.success(c, http.StatusOK, stats, "")
}
