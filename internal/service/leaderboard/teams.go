package leaderboard

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
)

// ListTeams returns active teams by rank, each with its most recent scores.
func (s *Service) ListTeams(ctx context.Context) ([]models.Team, error) {
	store := s.store.WithContext(ctx)

	teams, err := store.Teams.ListActiveByRank(0, 0)
	if err != nil {
		return nil, err
	}
	if err := attachRecentScores(store, teams, s.cfg.RecentScoresOnList); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeam returns a team with all of its scores and progress entries.
func (s *Service) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	team, err := s.store.WithContext(ctx).Teams.GetWithRelations(id)
	if err != nil {
		return nil, notFound(resourceTeam, id, err)
	}
	return team, nil
}

// CreateTeam validates and stores a new team, then recomputes ranks.
func (s *Service) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Color:       req.Color,
		LogoURL:     req.LogoURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		team.IsActive = *req.IsActive
	}

	err := s.mutate(ctx, resourceTeam, "create", func(tx *repository.Store) ([]uint, error) {
		taken, err := tx.Teams.CodeTaken(team.Code, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errCodeTaken()
		}
		if err := tx.Teams.Create(team); err != nil {
			return nil, duplicateCode(err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("team_id", team.ID).Str("code", team.Code).Msg("Team created")
	return s.reloadTeam(ctx, team.ID)
}

// UpdateTeam applies a partial update to a team, then recomputes ranks.
func (s *Service) UpdateTeam(ctx context.Context, id uint, req UpdateTeamRequest) (*models.Team, error) {
	err := s.mutate(ctx, resourceTeam, "update", func(tx *repository.Store) ([]uint, error) {
		team, err := tx.Teams.GetByID(id)
		if err != nil {
			return nil, notFound(resourceTeam, id, err)
		}

		merged := CreateTeamRequest{
			Name:        team.Name,
			Code:        team.Code,
			Description: team.Description,
			Color:       team.Color,
			LogoURL:     team.LogoURL,
			IsActive:    &team.IsActive,
		}
		if req.Name.Set {
			merged.Name = req.Name.Value
		}
		if req.Code.Set {
			merged.Code = req.Code.Value
		}
		if req.Description.Set {
			merged.Description = req.Description.ptr()
		}
		if req.Color.Set {
			merged.Color = req.Color.ptr()
		}
		if req.LogoURL.Set {
			merged.LogoURL = req.LogoURL.ptr()
		}
		if req.IsActive.Set && !req.IsActive.Null {
			merged.IsActive = &req.IsActive.Value
		}

		if err := validateStruct(merged); err != nil {
			return nil, err
		}

		if merged.Code != team.Code {
			taken, err := tx.Teams.CodeTaken(merged.Code, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errCodeTaken()
			}
		}

		team.Name = merged.Name
		team.Code = merged.Code
		team.Description = merged.Description
		team.Color = merged.Color
		team.LogoURL = merged.LogoURL
		team.IsActive = *merged.IsActive

		if err := tx.Teams.Update(team); err != nil {
			return nil, duplicateCode(err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("team_id", id).Msg("Team updated")
	return s.reloadTeam(ctx, id)
}

// DeleteTeam removes a team with its scores and progress, then recomputes ranks.
func (s *Service) DeleteTeam(ctx context.Context, id uint) error {
	err := s.mutate(ctx, resourceTeam, "delete", func(tx *repository.Store) ([]uint, error) {
		if _, err := tx.Teams.GetByID(id); err != nil {
			return nil, notFound(resourceTeam, id, err)
		}
		if err := tx.Teams.Delete(id); err != nil {
			return nil, notFound(resourceTeam, id, err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("team_id", id).Msg("Team deleted")
	return nil
}

func (s *Service) reloadTeam(ctx context.Context, id uint) (*models.Team, error) {
	team, err := s.store.WithContext(ctx).Teams.GetByID(id)
	if err != nil {
		return nil, notFound(resourceTeam, id, err)
	}
	return team, nil
}

// duplicateCode maps a unique violation on teams.code to a validation error.
func duplicateCode(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errCodeTaken()
	}
	return err
}

func attachRecentScores(store *repository.Store, teams []models.Team, perTeam int) error {
	if len(teams) == 0 || perTeam <= 0 {
		return nil
	}

	ids := make([]uint, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}

	recent, err := store.Scores.RecentByTeams(ids, perTeam)
	if err != nil {
		return err
	}
	for i := range teams {
		teams[i].Scores = recent[teams[i].ID]
	}
	return nil
}
