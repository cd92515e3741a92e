// Package aggregation derives team totals and board-wide statistics from scores.
package aggregation

import (
	"context"
	"fmt"
	"math"

	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// TeamStore is the subset of team persistence used for aggregation.
type TeamStore interface {
	SetTotalScore(id uint, total int) (bool, error)
	CountActive() (int64, error)
	SumActiveTotals() (int64, error)
	TopActive() (*models.Team, error)
}

// ScoreStore is the subset of score persistence used for aggregation.
type ScoreStore interface {
	SumPoints(teamID uint) (int, error)
	Count() (int64, error)
}

// Stats summarizes the whole board.
type Stats struct {
	TotalTeams   int64        `json:"total_teams"`
	TotalScores  int64        `json:"total_scores"`
	TotalPoints  int64        `json:"total_points"`
	AverageScore float64      `json:"average_score"`
	TopTeam      *models.Team `json:"top_team"`
}

// Service computes totals and statistics.
type Service struct {
	log *logger.Logger
}

// NewService creates a new aggregation service.
func NewService(log *logger.Logger) *Service {
	return &Service{log: log}
}

// RecomputeTotal sums the team's scores and stores the result as its total_score.
func (s *Service) RecomputeTotal(ctx context.Context, teams TeamStore, scores ScoreStore, teamID uint) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	total, err := scores.SumPoints(teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum scores: %w", err)
	}

	changed, err := teams.SetTotalScore(teamID, total)
	if err != nil {
		return 0, fmt.Errorf("failed to store total score: %w", err)
	}

	s.log.Debug().
		Uint("team_id", teamID).
		Int("total_score", total).
		Bool("changed", changed).
		Msg("Recomputed team total")

	return total, nil
}

// ComputeStats builds the board summary. Only active teams count toward
// teams, points and the top team; the score count covers every team.
func (s *Service) ComputeStats(ctx context.Context, teams TeamStore, scores ScoreStore) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count, err := teams.CountActive()
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}

	scoreCount, err := scores.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count scores: %w", err)
	}

	sum, err := teams.SumActiveTotals()
	if err != nil {
		return nil, fmt.Errorf("failed to sum totals: %w", err)
	}

	top, err := teams.TopActive()
	if err != nil {
		return nil, fmt.Errorf("failed to find top team: %w", err)
	}

	return &Stats{
		TotalTeams:   count,
		TotalScores:  scoreCount,
		TotalPoints:  sum,
		AverageScore: Average(sum, count),
		TopTeam:      top,
	}, nil
}

// Average returns sum/count rounded to two decimals, or 0 when count is 0.
func Average(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*100) / 100
}
