package leaderboard

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
)

// ListScores returns one page of scores, newest first. page and perPage must be positive.
func (s *Service) ListScores(ctx context.Context, filter repository.ScoreFilter, page, perPage int) (*ScorePage, error) {
	scores, total, err := s.store.WithContext(ctx).Scores.List(filter, page, perPage)
	if err != nil {
		return nil, err
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return &ScorePage{
		Data:        scores,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}, nil
}

// GetScore returns a score with its team.
func (s *Service) GetScore(ctx context.Context, id uint) (*models.Score, error) {
	score, err := s.store.WithContext(ctx).Scores.GetByID(id)
	if err != nil {
		return nil, notFound(resourceScore, id, err)
	}
	return score, nil
}

// CreateScore records a score and refreshes its team's total and every rank.
func (s *Service) CreateScore(ctx context.Context, req CreateScoreRequest) (*models.Score, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	score := &models.Score{
		TeamID:        *req.TeamID,
		Points:        *req.Points,
		ChallengeName: req.ChallengeName,
		Description:   req.Description,
		AchievedAt:    time.Now(),
		Metadata:      jsonMap(req.Metadata),
	}
	if req.AchievedAt != nil {
		score.AchievedAt = *req.AchievedAt
	}

	if err := s.insertScore(ctx, "create", score); err != nil {
		return nil, err
	}
	return s.GetScore(ctx, score.ID)
}

// AddPoints records an ad-hoc score achieved now. Unlike CreateScore, negative
// points are accepted so it can be used for penalties.
func (s *Service) AddPoints(ctx context.Context, req AddPointsRequest) (*models.Score, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	score := &models.Score{
		TeamID:        *req.TeamID,
		Points:        *req.Points,
		ChallengeName: req.ChallengeName,
		Description:   req.Description,
		AchievedAt:    time.Now(),
	}

	if err := s.insertScore(ctx, "add_points", score); err != nil {
		return nil, err
	}
	return s.GetScore(ctx, score.ID)
}

func (s *Service) insertScore(ctx context.Context, operation string, score *models.Score) error {
	err := s.mutate(ctx, resourceScore, operation, func(tx *repository.Store) ([]uint, error) {
		if err := requireTeam(tx, score.TeamID); err != nil {
			return nil, err
		}
		if err := tx.Scores.Create(score); err != nil {
			return nil, err
		}
		return []uint{score.TeamID}, nil
	})
	if err != nil {
		return err
	}

	metrics.AddPointsAwarded(score.Points)
	s.log.Info().
		Uint("score_id", score.ID).
		Uint("team_id", score.TeamID).
		Int("points", score.Points).
		Str("challenge", score.ChallengeName).
		Msg("Score recorded")
	return nil
}

// UpdateScore applies a partial update. When the score moves to another team,
// both teams' totals are recomputed.
func (s *Service) UpdateScore(ctx context.Context, id uint, req UpdateScoreRequest) (*models.Score, error) {
	err := s.mutate(ctx, resourceScore, "update", func(tx *repository.Store) ([]uint, error) {
		score, err := tx.Scores.GetByID(id)
		if err != nil {
			return nil, notFound(resourceScore, id, err)
		}
		oldTeamID := score.TeamID

		merged := AddPointsRequest{
			TeamID:        &score.TeamID,
			Points:        &score.Points,
			ChallengeName: score.ChallengeName,
		}
		if req.TeamID.Set {
			merged.TeamID = req.TeamID.ptr()
		}
		if req.Points.Set {
			merged.Points = req.Points.ptr()
		}
		if req.ChallengeName.Set {
			merged.ChallengeName = req.ChallengeName.Value
		}
		if err := validateStruct(merged); err != nil {
			return nil, err
		}

		if *merged.TeamID != oldTeamID {
			if err := requireTeam(tx, *merged.TeamID); err != nil {
				return nil, err
			}
		}

		score.TeamID = *merged.TeamID
		score.Points = *merged.Points
		score.ChallengeName = merged.ChallengeName
		if req.Description.Set {
			score.Description = req.Description.ptr()
		}
		if req.AchievedAt.Set && !req.AchievedAt.Null {
			score.AchievedAt = req.AchievedAt.Value
		}
		if req.Metadata.Set {
			score.Metadata = jsonMap(req.Metadata.Value)
		}
		score.Team = nil

		if err := tx.Scores.Update(score); err != nil {
			return nil, err
		}
		return []uint{oldTeamID, score.TeamID}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("score_id", id).Msg("Score updated")
	return s.GetScore(ctx, id)
}

// DeleteScore removes a score and refreshes its team's total and every rank.
func (s *Service) DeleteScore(ctx context.Context, id uint) error {
	err := s.mutate(ctx, resourceScore, "delete", func(tx *repository.Store) ([]uint, error) {
		score, err := tx.Scores.GetByID(id)
		if err != nil {
			return nil, notFound(resourceScore, id, err)
		}
		if err := tx.Scores.Delete(id); err != nil {
			return nil, notFound(resourceScore, id, err)
		}
		return []uint{score.TeamID}, nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("score_id", id).Msg("Score deleted")
	return nil
}

// requireTeam returns a team_id validation error when the team does not exist.
func requireTeam(tx *repository.Store, teamID uint) error {
	if _, err := tx.Teams.GetByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errTeamInvalid()
		}
		return err
	}
	return nil
}

func jsonMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return nil
	}
	return datatypes.JSONMap(m)
}
