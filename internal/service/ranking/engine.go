// Package ranking assigns leaderboard positions to active teams.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// TeamStore is the subset of team persistence the engine needs.
type TeamStore interface {
	ListActive() ([]models.Team, error)
	UpdateRank(id uint, rank int) error
}

// Standing is a team's computed position on the board.
type Standing struct {
	TeamID     uint   `json:"team_id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	TotalScore int    `json:"total_score"`
	Rank       int    `json:"rank"`
}

// Engine recomputes and persists ranks.
type Engine struct {
	log *logger.Logger
}

// NewEngine creates a new rank engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// Order sorts the active teams by total_score desc, updated_at asc, id asc and
// assigns ranks 1..N. Inactive teams are dropped.
func Order(teams []models.Team) []Standing {
	active := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.IsActive {
			active = append(active, t)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	standings := make([]Standing, len(active))
	for i, t := range active {
		standings[i] = Standing{
			TeamID:     t.ID,
			Name:       t.Name,
			Code:       t.Code,
			TotalScore: t.TotalScore,
			Rank:       i + 1,
		}
	}
	return standings
}

// RecomputeAllRanks orders every active team and writes each rank, whether or
// not it changed. Inactive teams keep whatever rank they had.
func (e *Engine) RecomputeAllRanks(ctx context.Context, teams TeamStore) ([]Standing, error) {
	start := time.Now()

	standings, err := e.recompute(ctx, teams)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordRankRecompute(status, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.SetActiveTeams(len(standings))
	e.log.Debug().
		Int("teams", len(standings)).
		Dur("duration", time.Since(start)).
		Msg("Recomputed ranks")

	return standings, nil
}

// RecomputeRankFor recomputes the board after a change to teamID. A single
// team's move shifts everyone between its old and new position, so this is a
// full recompute.
func (e *Engine) RecomputeRankFor(ctx context.Context, teams TeamStore, teamID uint) ([]Standing, error) {
	e.log.Debug().Uint("team_id", teamID).Msg("Rank recompute requested for team")
	return e.RecomputeAllRanks(ctx, teams)
}

func (e *Engine) recompute(ctx context.Context, teams TeamStore) ([]Standing, error) {
	active, err := teams.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active teams: %w", err)
	}

	standings := Order(active)
	for _, s := range standings {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rank recompute interrupted: %w", err)
		}
		if err := teams.UpdateRank(s.TeamID, s.Rank); err != nil {
			return nil, fmt.Errorf("failed to persist rank: %w", err)
		}
	}

	return standings, nil
}
