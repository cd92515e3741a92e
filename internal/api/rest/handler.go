// Package rest provides the JSON API for teams, scores, progress and the leaderboard.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
	"github.com/aimd54/team-leaderboard/internal/service/ranking"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// LeaderboardService is the set of operations the API exposes.
type LeaderboardService interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id uint) (*models.Team, error)
	CreateTeam(ctx context.Context, req leaderboard.CreateTeamRequest) (*models.Team, error)
	UpdateTeam(ctx context.Context, id uint, req leaderboard.UpdateTeamRequest) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uint) error

	ListScores(ctx context.Context, filter repository.ScoreFilter, page, perPage int) (*leaderboard.ScorePage, error)
	GetScore(ctx context.Context, id uint) (*models.Score, error)
	CreateScore(ctx context.Context, req leaderboard.CreateScoreRequest) (*models.Score, error)
	AddPoints(ctx context.Context, req leaderboard.AddPointsRequest) (*models.Score, error)
	UpdateScore(ctx context.Context, id uint, req leaderboard.UpdateScoreRequest) (*models.Score, error)
	DeleteScore(ctx context.Context, id uint) error

	ListProgress(ctx context.Context, teamID *uint) ([]models.Progress, error)
	GetProgress(ctx context.Context, id uint) (*models.Progress, error)
	CreateProgress(ctx context.Context, req leaderboard.CreateProgressRequest) (*models.Progress, error)
	UpdateProgress(ctx context.Context, id uint, req leaderboard.UpdateProgressRequest) (*models.Progress, error)
	DeleteProgress(ctx context.Context, id uint) error

	Standings(ctx context.Context, limit, offset int) ([]models.Team, int64, error)
	Top(ctx context.Context, limit int) ([]models.Team, error)
	Stats(ctx context.Context) (*aggregation.Stats, error)
	Snapshot(ctx context.Context) ([]ranking.Standing, error)
}

// LiveServer upgrades a request to a live standings stream.
type LiveServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, snapshot interface{}) error
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles leaderboard API requests.
type Handler struct {
	service LeaderboardService
	live    LiveServer
	health  map[string]HealthChecker
	cfg     config.LeaderboardConfig
	log     *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	service *leaderboard.Service,
	live LiveServer,
	health map[string]HealthChecker,
	cfg config.LeaderboardConfig,
	log *logger.Logger,
) *Handler {
	return NewHandlerWithInterfaces(service, live, health, cfg, log)
}

// NewHandlerWithInterfaces creates a new API handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	service LeaderboardService,
	live LiveServer,
	health map[string]HealthChecker,
	cfg config.LeaderboardConfig,
	log *logger.Logger,
) *Handler {
	return &Handler{
		service: service,
		live:    live,
		health:  health,
		cfg:     cfg,
		log:     log,
	}
}

// Response is the envelope of every API response.
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Meta    interface{}         `json:"meta,omitempty"`
}

// PageMeta describes an offset-paginated listing.
type PageMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Health returns the status of the database and cache.
// GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, checker := range h.health {
		if err := checker.Health(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data: gin.H{
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		},
	})
}

// LiveStandings upgrades to a websocket and streams standings after every write.
// GET /ws/leaderboard.
func (h *Handler) LiveStandings(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Failed to load standings")
		return
	}

	if err := h.live.ServeWS(c.Writer, c.Request, snapshot); err != nil {
		// The upgrader has already written the failure response.
		h.log.Warn().Err(err).Msg("Failed to open live standings stream")
	}
}

// Helper functions

func (h *Handler) success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string, fields map[string][]string) {
	c.JSON(status, Response{Success: false, Message: message, Errors: fields})
}

// handleError maps service errors to HTTP responses. Anything unrecognised is
// logged and reported as a generic failure.
func (h *Handler) handleError(c *gin.Context, err error, message string) {
	var ve *leaderboard.ValidationError
	switch {
	case errors.As(err, &ve):
		h.errorResponse(c, http.StatusUnprocessableEntity, "The given data was invalid.", ve.Fields)
	case errors.Is(err, leaderboard.ErrNotFound):
		h.errorResponse(c, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, context.Canceled):
		h.log.Debug().Err(err).Str("path", c.FullPath()).Msg("Request cancelled")
		h.errorResponse(c, http.StatusServiceUnavailable, message, nil)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
		h.errorResponse(c, http.StatusInternalServerError, message, nil)
	}
}

// bindJSON decodes the request body into req after applying form conventions
// (see normalizeBody). An empty body decodes to the zero request so that
// missing fields surface as validation errors. It writes the error response
// and returns false when the body cannot be used.
func (h *Handler) bindJSON(c *gin.Context, req interface{}, fields bodyFields) bool {
	body, err := c.GetRawData()
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Unable to read request body", nil)
		return false
	}

	err = binding.JSON.BindBody(normalizeBody(body, fields), req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var (
		typeErr  *json.UnmarshalTypeError
		parseErr *time.ParseError
	)
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		h.errorResponse(c, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			field: {typeMessage(field, typeErr.Type.Kind().String())},
		})
	case errors.As(err, &parseErr) && fields.date != "":
		h.errorResponse(c, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			fields.date: {fmt.Sprintf("The %s field must be a valid date.", fields.date)},
		})
	default:
		h.errorResponse(c, http.StatusBadRequest, "Malformed JSON body", nil)
	}
	return false
}

func typeMessage(field, kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return fmt.Sprintf("The %s field must be an integer.", field)
	case "string":
		return fmt.Sprintf("The %s field must be a string.", field)
	case "bool":
		return fmt.Sprintf("The %s field must be true or false.", field)
	case "map", "struct":
		return fmt.Sprintf("The %s field must be an object.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// parseID extracts the :id path parameter. Non-numeric ids cannot match a
// record, so they are reported as not found.
func (h *Handler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusNotFound, "Resource not found", nil)
		return 0, false
	}
	return uint(id), true
}

// queryInt reads a non-negative integer query parameter, falling back to def
// when absent. min is the smallest accepted value.
func (h *Handler) queryInt(c *gin.Context, name string, def, min int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid %s parameter: %s", name, raw), nil)
		return 0, false
	}
	return v, true
}

// queryID reads an optional id filter.
func (h *Handler) queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid %s parameter: %s", name, raw), nil)
		return nil, false
	}
	id := uint(v)
	return &id, true
}
