package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
)

// ListTeams returns active teams by rank with their recent scores.
// GET /api/teams.
func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.service.ListTeams(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Failed to retrieve teams")
		return
	}

	h.success(c, http.StatusOK, teams, "")
}

// CreateTeam creates a team.
// POST /api/teams.
func (h *Handler) CreateTeam(c *gin.Context) {
	var req leaderboard.CreateTeamRequest
	if !h.bindJSON(c, &req, teamFields) {
		return
	}

	team, err := h.service.CreateTeam(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "Failed to create team")
		return
	}

	h.success(c, http.StatusCreated, team, "Team created successfully")
}

// GetTeam returns a team with its scores and progress.
// GET /api/teams/:id.
func (h *Handler) GetTeam(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	team, err := h.service.GetTeam(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve team")
		return
	}

	h.success(c, http.StatusOK, team, "")
}

// UpdateTeam applies a partial update to a team.
// PUT/PATCH /api/teams/:id.
func (h *Handler) UpdateTeam(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req leaderboard.UpdateTeamRequest
	if !h.bindJSON(c, &req, teamFields) {
		return
	}

	team, err := h.service.UpdateTeam(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err, "Failed to update team")
		return
	}

	h.success(c, http.StatusOK, team, "Team updated successfully")
}

// DeleteTeam removes a team with its scores and progress.
// DELETE /api/teams/:id.
func (h *Handler) DeleteTeam(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTeam(c.Request.Context(), id); err != nil {
		h.handleError(c, err, "Failed to delete team")
		return
	}

	h.success(c, http.StatusOK, nil, "Team deleted successfully")
}
