package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
)

// ListProgress returns progress entries, optionally for one team.
// GET /api/progress?team_id=1.
func (h *Handler) ListProgress(c *gin.Context) {
	teamID, ok := h.queryID(c, "team_id")
	if !ok {
		return
	}

	entries, err := h.service.ListProgress(c.Request.Context(), teamID)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve progress")
		return
	}

	h.success(c, http.StatusOK, entries, "")
}

// CreateProgress records a milestone.
// POST /api/progress.
func (h *Handler) CreateProgress(c *gin.Context) {
	var req leaderboard.CreateProgressRequest
	if !h.bindJSON(c, &req, progressFields) {
		return
	}

	entry, err := h.service.CreateProgress(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "Failed to record progress")
		return
	}

	h.success(c, http.StatusCreated, entry, "Progress recorded successfully")
}

// GetProgress returns a progress entry with its team.
// GET /api/progress/:id.
func (h *Handler) GetProgress(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	entry, err := h.service.GetProgress(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve progress")
		return
	}

	h.success(c, http.StatusOK, entry, "")
}

// UpdateProgress applies a partial update to a progress entry.
// PUT/PATCH /api/progress/:id.
func (h *Handler) UpdateProgress(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req leaderboard.UpdateProgressRequest
	if !h.bindJSON(c, &req, progressFields) {
		return
	}

	entry, err := h.service.UpdateProgress(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err, "Failed to update progress")
		return
	}

	h.success(c, http.StatusOK, entry, "Progress updated successfully")
}

// DeleteProgress removes a progress entry.
// DELETE /api/progress/:id.
func (h *Handler) DeleteProgress(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProgress(c.Request.Context(), id); err != nil {
		h.handleError(c, err, "Failed to delete progress")
		return
	}

	h.success(c, http.StatusOK, nil, "Progress deleted successfully")
}
