package leaderboard

import (
	"context"
	"time"

	"github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
)

// Progress writes never touch totals or ranks, so they skip the ranked unit of work.

// ListProgress returns progress entries, most recently completed first. A nil
// teamID lists every team.
func (s *Service) ListProgress(ctx context.Context, teamID *uint) ([]models.Progress, error) {
	return s.store.WithContext(ctx).Progress.List(teamID)
}

// GetProgress returns a progress entry with its team.
func (s *Service) GetProgress(ctx context.Context, id uint) (*models.Progress, error) {
	entry, err := s.store.WithContext(ctx).Progress.GetByID(id)
	if err != nil {
		return nil, notFound(resourceProgress, id, err)
	}
	return entry, nil
}

// CreateProgress records a milestone. A 100% milestone without a completion
// time is stamped with the current time.
func (s *Service) CreateProgress(ctx context.Context, req CreateProgressRequest) (*models.Progress, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	entry := &models.Progress{
		TeamID:      *req.TeamID,
		Milestone:   req.Milestone,
		Percentage:  *req.Percentage,
		Notes:       req.Notes,
		CompletedAt: req.CompletedAt,
	}
	if entry.CompletedAt == nil && entry.Percentage == models.CompletePercentage {
		now := time.Now()
		entry.CompletedAt = &now
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requireTeam(tx, entry.TeamID); err != nil {
			return err
		}
		return tx.Progress.Create(entry)
	})
	if err != nil {
		metrics.RecordWrite(resourceProgress, "create", "error")
		return nil, err
	}
	metrics.RecordWrite(resourceProgress, "create", "success")

	s.log.Info().
		Uint("progress_id", entry.ID).
		Uint("team_id", entry.TeamID).
		Int("percentage", entry.Percentage).
		Msg("Progress recorded")
	return s.GetProgress(ctx, entry.ID)
}

// UpdateProgress applies a partial update. Reaching 100% stamps completed_at
// unless one is supplied or already stored.
func (s *Service) UpdateProgress(ctx context.Context, id uint, req UpdateProgressRequest) (*models.Progress, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, err := tx.Progress.GetByID(id)
		if err != nil {
			return notFound(resourceProgress, id, err)
		}
		wasCompleted := entry.IsCompleted()

		merged := CreateProgressRequest{
			TeamID:     &entry.TeamID,
			Milestone:  entry.Milestone,
			Percentage: &entry.Percentage,
		}
		if req.TeamID.Set {
			merged.TeamID = req.TeamID.ptr()
		}
		if req.Milestone.Set {
			merged.Milestone = req.Milestone.Value
		}
		if req.Percentage.Set {
			merged.Percentage = req.Percentage.ptr()
		}
		if err := validateStruct(merged); err != nil {
			return err
		}

		if *merged.TeamID != entry.TeamID {
			if err := requireTeam(tx, *merged.TeamID); err != nil {
				return err
			}
		}

		entry.TeamID = *merged.TeamID
		entry.Milestone = merged.Milestone
		entry.Percentage = *merged.Percentage
		if req.Notes.Set {
			entry.Notes = req.Notes.ptr()
		}
		if req.CompletedAt.Set {
			entry.CompletedAt = req.CompletedAt.ptr()
		}

		suppliedCompletion := req.CompletedAt.Set && !req.CompletedAt.Null
		if req.Percentage.Set && entry.Percentage == models.CompletePercentage && !wasCompleted && !suppliedCompletion {
			now := time.Now()
			entry.CompletedAt = &now
		}

		entry.Team = nil
		return tx.Progress.Update(entry)
	})
	if err != nil {
		metrics.RecordWrite(resourceProgress, "update", "error")
		return nil, err
	}
	metrics.RecordWrite(resourceProgress, "update", "success")

	s.log.Info().Uint("progress_id", id).Msg("Progress updated")
	return s.GetProgress(ctx, id)
}

// DeleteProgress removes a progress entry.
func (s *Service) DeleteProgress(ctx context.Context, id uint) error {
	if err := s.store.WithContext(ctx).Progress.Delete(id); err != nil {
		metrics.RecordWrite(resourceProgress, "delete", "error")
		return notFound(resourceProgress, id, err)
	}
	metrics.RecordWrite(resourceProgress, "delete", "success")

	s.log.Info().Uint("progress_id", id).Msg("Progress deleted")
	return nil
}
