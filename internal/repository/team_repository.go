package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/team-leaderboard/internal/models"
)

// TeamRepository handles team-related database operations.
type TeamRepository struct {
	db *DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create creates a new team.
func (r *TeamRepository) Create(team *models.Team) error {
	if err := r.db.Omit(clause.Associations).Create(team).Error; err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// GetByID retrieves a team by ID.
func (r *TeamRepository) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	return &team, nil
}

// GetWithRelations retrieves a team with all its scores (newest first) and progress entries.
func (r *TeamRepository) GetWithRelations(id uint) (*models.Team, error) {
	var team models.Team
	err := r.db.
		Preload("Scores", func(db *gorm.DB) *gorm.DB {
			return db.Order("achieved_at DESC").Order("id DESC")
		}).
		Preload("Progress", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&team, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	return &team, nil
}

// CodeTaken reports whether another team already uses code. excludeID is ignored when zero.
func (r *TeamRepository) CodeTaken(code string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Team{}).Where("code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check team code: %w", err)
	}
	return count > 0, nil
}

// Update saves every column of team and bumps updated_at.
func (r *TeamRepository) Update(team *models.Team) error {
	if err := r.db.Omit(clause.Associations).Save(team).Error; err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	return nil
}

// Delete deletes a team together with its scores and progress entries.
func (r *TeamRepository) Delete(id uint) error {
	if err := r.db.Where("team_id = ?", id).Delete(&models.Score{}).Error; err != nil {
		return fmt.Errorf("failed to delete scores of team %d: %w", id, err)
	}
	if err := r.db.Where("team_id = ?", id).Delete(&models.Progress{}).Error; err != nil {
		return fmt.Errorf("failed to delete progress of team %d: %w", id, err)
	}

	result := r.db.Delete(&models.Team{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete team %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// ListActive retrieves every active team, in no particular order.
func (r *TeamRepository) ListActive() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Where("is_active = ?", true).Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to list active teams: %w", err)
	}
	return teams, nil
}

// ListActiveByRank retrieves active teams ordered by their persisted rank.
// A limit of zero or less returns every team.
func (r *TeamRepository) ListActiveByRank(limit, offset int) ([]models.Team, error) {
	query := r.db.Where("is_active = ?", true).
		Order("rank ASC").
		Order("total_score DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var teams []models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to list teams by rank: %w", err)
	}
	return teams, nil
}

// ListStandings is ListActiveByRank with each team's score count filled in.
func (r *TeamRepository) ListStandings(limit, offset int) ([]models.Team, error) {
	query := r.db.Model(&models.Team{}).
		Select("teams.*, (SELECT COUNT(*) FROM scores WHERE scores.team_id = teams.id) AS scores_count").
		Where("teams.is_active = ?", true).
		Order("teams.rank ASC").
		Order("teams.total_score DESC").
		Order("teams.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var teams []models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	return teams, nil
}

// CountActive returns the number of active teams.
func (r *TeamRepository) CountActive() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Team{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active teams: %w", err)
	}
	return count, nil
}

// SumActiveTotals returns the sum of total_score over active teams.
func (r *TeamRepository) SumActiveTotals() (int64, error) {
	var sum int64
	err := r.db.Model(&models.Team{}).
		Select("COALESCE(SUM(total_score), 0)").
		Where("is_active = ?", true).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum active team totals: %w", err)
	}
	return sum, nil
}

// TopActive returns the active team with the highest total_score, lowest id on ties.
// It returns nil without error when there is no active team.
func (r *TeamRepository) TopActive() (*models.Team, error) {
	var teams []models.Team
	err := r.db.Where("is_active = ?", true).
		Order("total_score DESC").
		Order("id ASC").
		Limit(1).
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top team: %w", err)
	}
	if len(teams) == 0 {
		return nil, nil
	}
	return &teams[0], nil
}

// Leader returns the active team currently holding rank 1, or nil.
func (r *TeamRepository) Leader() (*models.Team, error) {
	teams, err := r.ListActiveByRank(1, 0)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 || teams[0].Rank != 1 {
		return nil, nil
	}
	return &teams[0], nil
}

// UpdateRank persists a team's rank without touching updated_at, which is the
// ranking tie-break key.
func (r *TeamRepository) UpdateRank(id uint, rank int) error {
	err := r.db.Model(&models.Team{}).
		Where("id = ?", id).
		UpdateColumn("rank", rank).Error
	if err != nil {
		return fmt.Errorf("failed to update rank of team %d: %w", id, err)
	}
	return nil
}

// SetTotalScore stores a team's total. updated_at only moves when the total
// actually changes. It reports whether a row was modified.
func (r *TeamRepository) SetTotalScore(id uint, total int) (bool, error) {
	result := r.db.Model(&models.Team{}).
		Where("id = ? AND total_score <> ?", id, total).
		Update("total_score", total)
	if result.Error != nil {
		return false, fmt.Errorf("failed to set total score of team %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
