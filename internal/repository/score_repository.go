package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/team-leaderboard/internal/models"
)

// ScoreFilter narrows a score listing. Zero values are ignored.
type ScoreFilter struct {
	TeamID        uint
	ChallengeName string
}

// ScoreRepository handles score-related database operations.
type ScoreRepository struct {
	db *DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create creates a new score.
func (r *ScoreRepository) Create(score *models.Score) error {
	if err := r.db.Omit(clause.Associations).Create(score).Error; err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	return nil
}

// GetByID retrieves a score with its team.
func (r *ScoreRepository) GetByID(id uint) (*models.Score, error) {
	var score models.Score
	if err := r.db.Preload("Team").First(&score, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get score by id %d: %w", id, err)
	}
	return &score, nil
}

// Update saves every column of score.
func (r *ScoreRepository) Update(score *models.Score) error {
	if err := r.db.Omit(clause.Associations).Save(score).Error; err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return nil
}

// Delete deletes a score by ID.
func (r *ScoreRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Score{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete score %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete score %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// List returns one page of scores, newest first, with their teams, and the
// total number of scores matching filter. Pages start at 1.
func (r *ScoreRepository) List(filter ScoreFilter, page, perPage int) ([]models.Score, int64, error) {
	query := r.db.Model(&models.Score{})
	if filter.TeamID != 0 {
		query = query.Where("team_id = ?", filter.TeamID)
	}
	if filter.ChallengeName != "" {
		query = query.Where("challenge_name = ?", filter.ChallengeName)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count scores: %w", err)
	}

	if page < 1 {
		page = 1
	}

	var scores []models.Score
	err := query.
		Preload("Team").
		Order("achieved_at DESC").
		Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&scores).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scores: %w", err)
	}

	return scores, total, nil
}

// SumPoints returns the sum of points over a team's scores, 0 when it has none.
func (r *ScoreRepository) SumPoints(teamID uint) (int, error) {
	var sum int64
	err := r.db.Model(&models.Score{}).
		Select("COALESCE(SUM(points), 0)").
		Where("team_id = ?", teamID).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum points of team %d: %w", teamID, err)
	}
	return int(sum), nil
}

// Count returns the number of scores across all teams.
func (r *ScoreRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Score{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count, nil
}

// RecentByTeams returns up to perTeam most recently recorded scores for each of
// teamIDs, keyed by team. Recency is by creation, not achieved_at.
func (r *ScoreRepository) RecentByTeams(teamIDs []uint, perTeam int) (map[uint][]models.Score, error) {
	result := make(map[uint][]models.Score, len(teamIDs))
	if len(teamIDs) == 0 || perTeam <= 0 {
		return result, nil
	}

	for _, id := range teamIDs {
		var scores []models.Score
		err := r.db.Where("team_id = ?", id).
			Order("created_at DESC").
			Order("id DESC").
			Limit(perTeam).
			Find(&scores).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get recent scores of team %d: %w", id, err)
		}
		result[id] = scores
	}

	return result, nil
}
