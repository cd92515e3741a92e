package leaderboard

import (
	"context"

	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/service/ranking"
)

// Standings recomputes ranks and returns one page of active teams with their
// score counts, plus the number of active teams.
func (s *Service) Standings(ctx context.Context, limit, offset int) ([]models.Team, int64, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.recomputeRanks(ctx); err != nil {
		return nil, 0, err
	}

	store := s.store.WithContext(ctx)
	teams, err := store.Teams.ListStandings(limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := store.Teams.CountActive()
	if err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// Top recomputes ranks and returns the first limit active teams, each with
// its most recent scores.
func (s *Service) Top(ctx context.Context, limit int) ([]models.Team, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultTopLimit
	}

	if _, err := s.recomputeRanks(ctx); err != nil {
		return nil, err
	}

	store := s.store.WithContext(ctx)
	teams, err := store.Teams.ListActiveByRank(limit, 0)
	if err != nil {
		return nil, err
	}
	if err := attachRecentScores(store, teams, s.cfg.RecentScoresOnTop); err != nil {
		return nil, err
	}

	return teams, nil
}

// Snapshot recomputes ranks and returns the compact standings pushed to live clients.
func (s *Service) Snapshot(ctx context.Context) ([]ranking.Standing, error) {
	return s.recomputeRanks(ctx)
}
