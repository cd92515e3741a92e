package models

import (
	"time"
)

// CompletePercentage is the percentage at which a milestone counts as completed.
const CompletePercentage = 100

// Progress represents a milestone-completion record for a team. It never affects scoring.
type Progress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TeamID      uint       `gorm:"not null;index" json:"team_id"`
	Team        *Team      `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	Milestone   string     `gorm:"size:255;not null" json:"milestone"`
	Percentage  int        `gorm:"not null;default:0" json:"percentage"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Progress model.
func (Progress) TableName() string {
	return "progress"
}

// IsCompleted reports whether the milestone has a recorded completion time.
func (p *Progress) IsCompleted() bool {
	return p.CompletedAt != nil && !p.CompletedAt.IsZero()
}
