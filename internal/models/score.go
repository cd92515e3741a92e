package models

import (
	"time"

	"gorm.io/datatypes"
)

// Score represents one point-earning event attributed to a team.
type Score struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	TeamID        uint              `gorm:"not null;index" json:"team_id"`
	Team          *Team             `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	Points        int               `gorm:"not null" json:"points"`
	ChallengeName string            `gorm:"size:255;not null;index" json:"challenge_name"`
	Description   *string           `gorm:"type:text" json:"description"`
	AchievedAt    time.Time         `gorm:"not null;index" json:"achieved_at"`
	Metadata      datatypes.JSONMap `json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TableName specifies the table name for Score model.
func (Score) TableName() string {
	return "scores"
}
