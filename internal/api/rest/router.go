package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// NewRouter builds the gin engine with middleware and every API route.
func NewRouter(h *Handler, allowedOrigins []string, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), Metrics(), CORS(allowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		h.errorResponse(c, http.StatusNotFound, "Route not found", nil)
	})

	router.GET("/health", h.Health)
	router.GET("/ws/leaderboard", h.LiveStandings)

	api := router.Group("/api")

	teams := api.Group("/teams")
	teams.GET("", h.ListTeams)
	teams.POST("", h.CreateTeam)
	teams.GET("/:id", h.GetTeam)
	teams.PUT("/:id", h.UpdateTeam)
	teams.PATCH("/:id", h.UpdateTeam)
	teams.DELETE("/:id", h.DeleteTeam)

	board := api.Group("/leaderboard")
	board.GET("", h.GetLeaderboard)
	board.GET("/top", h.GetTop)
	board.GET("/stats", h.GetStats)

	scores := api.Group("/scores")
	scores.GET("", h.ListScores)
	scores.POST("", h.CreateScore)
	scores.POST("/add-points", h.AddPoints)
	scores.GET("/:id", h.GetScore)
	scores.PUT("/:id", h.UpdateScore)
	scores.PATCH("/:id", h.UpdateScore)
	scores.DELETE("/:id", h.DeleteScore)

	progress := api.Group("/progress")
	progress.GET("", h.ListProgress)
	progress.POST("", h.CreateProgress)
	progress.GET("/:id", h.GetProgress)
	progress.PUT("/:id", h.UpdateProgress)
	progress.PATCH("/:id", h.UpdateProgress)
	progress.DELETE("/:id", h.DeleteProgress)

	return router
}
