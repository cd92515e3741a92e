// Package models defines domain models for the team leaderboard.
package models

import (
	"time"
)

// Team represents a competing team with its denormalized score and rank.
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Description *string   `gorm:"type:text" json:"description"`
	Color       *string   `gorm:"size:7" json:"color"`
	LogoURL     *string   `gorm:"column:logo_url;type:text" json:"logo_url"`
	IsActive    bool      `gorm:"not null;index:idx_teams_standing,priority:1" json:"is_active"`
	TotalScore  int       `gorm:"not null;default:0;index:idx_teams_standing,priority:2" json:"total_score"`
	Rank        int       `gorm:"not null;default:0" json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated only by leaderboard listings.
	ScoresCount int64 `gorm:"->;-:migration" json:"scores_count"`

	// Relationships
	Scores   []Score    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"scores,omitempty"`
	Progress []Progress `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}

// TableName specifies the table name for Team model.
func (Team) TableName() string {
	return "teams"
}
