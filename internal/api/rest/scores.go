package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/team-leaderboard/internal/repository"
	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
)

// ListScores returns one page of scores, newest first.
// GET /api/scores?team_id=1&challenge_name=Quiz&page=1&per_page=20.
func (h *Handler) ListScores(c *gin.Context) {
	teamID, ok := h.queryID(c, "team_id")
	if !ok {
		return
	}
	page, ok := h.queryInt(c, "page", 1, 1)
	if !ok {
		return
	}
	perPage, ok := h.queryInt(c, "per_page", h.cfg.DefaultScorePage, 1)
	if !ok {
		return
	}

	filter := repository.ScoreFilter{ChallengeName: c.Query("challenge_name")}
	if teamID != nil {
		filter.TeamID = *teamID
	}

	result, err := h.service.ListScores(c.Request.Context(), filter, page, perPage)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve scores")
		return
	}

	h.success(c, http.StatusOK, result, "")
}

// CreateScore records a score.
// POST /api/scores.
func (h *Handler) CreateScore(c *gin.Context) {
	var req leaderboard.CreateScoreRequest
	if !h.bindJSON(c, &req, scoreFields) {
		return
	}

	score, err := h.service.CreateScore(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "Failed to create score")
		return
	}

	h.success(c, http.StatusCreated, score, "Score added successfully")
}

// AddPoints records an ad-hoc score, accepting negative points.
// POST /api/scores/add-points.
func (h *Handler) AddPoints(c *gin.Context) {
	var req leaderboard.AddPointsRequest
	if !h.bindJSON(c, &req, scoreFields) {
		return
	}

	score, err := h.service.AddPoints(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "Failed to add points")
		return
	}

	h.success(c, http.StatusCreated, score, "Points added successfully")
}

// GetScore returns a score with its team.
// GET /api/scores/:id.
func (h *Handler) GetScore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	score, err := h.service.GetScore(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve score")
		return
	}

	h.success(c, http.StatusOK, score, "")
}

// UpdateScore applies a partial update to a score.
// PUT/PATCH /api/scores/:id.
func (h *Handler) UpdateScore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req leaderboard.UpdateScoreRequest
	if !h.bindJSON(c, &req, scoreFields) {
		return
	}

	score, err := h.service.UpdateScore(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err, "Failed to update score")
		return
	}

	h.success(c, http.StatusOK, score, "Score updated successfully")
}

// DeleteScore removes a score.
// DELETE /api/scores/:id.
func (h *Handler) DeleteScore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteScore(c.Request.Context(), id); err != nil {
		h.handleError(c, err, "Failed to delete score")
		return
	}

	h.success(c, http.StatusOK, nil, "Score deleted successfully")
}
