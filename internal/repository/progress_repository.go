package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/team-leaderboard/internal/models"
)

// ProgressRepository handles progress-related database operations.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create creates a new progress entry.
func (r *ProgressRepository) Create(progress *models.Progress) error {
	if err := r.db.Omit(clause.Associations).Create(progress).Error; err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// GetByID retrieves a progress entry with its team.
func (r *ProgressRepository) GetByID(id uint) (*models.Progress, error) {
	var progress models.Progress
	if err := r.db.Preload("Team").First(&progress, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get progress by id %d: %w", id, err)
	}
	return &progress, nil
}

// Update saves every column of progress.
func (r *ProgressRepository) Update(progress *models.Progress) error {
	if err := r.db.Omit(clause.Associations).Save(progress).Error; err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// Delete deletes a progress entry by ID.
func (r *ProgressRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Progress{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete progress %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete progress %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// List returns progress entries with their teams, most recently completed first.
// Entries that are not completed come last. A nil teamID lists every team.
func (r *ProgressRepository) List(teamID *uint) ([]models.Progress, error) {
	query := r.db.Preload("Team")
	if teamID != nil {
		query = query.Where("team_id = ?", *teamID)
	}

	var entries []models.Progress
	err := query.
		Order("CASE WHEN completed_at IS NULL THEN 1 ELSE 0 END").
		Order("completed_at DESC").
		Order("percentage DESC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return entries, nil
}
