package leaderboard

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aimd54/team-leaderboard/internal/models"
)

// Optional is a JSON field that tells an absent key apart from an explicit null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// ptr returns the value as a pointer: nil when null, otherwise a copy of Value.
func (o Optional[T]) ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// CreateTeamRequest is the payload for creating a team.
type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Code        string  `json:"code" validate:"required,max=50"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,max=7"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateTeamRequest is the payload for a partial team update.
type UpdateTeamRequest struct {
	Name        Optional[string] `json:"name"`
	Code        Optional[string] `json:"code"`
	Description Optional[string] `json:"description"`
	Color       Optional[string] `json:"color"`
	LogoURL     Optional[string] `json:"logo_url"`
	IsActive    Optional[bool]   `json:"is_active"`
}

// CreateScoreRequest is the payload for recording a score.
type CreateScoreRequest struct {
	TeamID        *uint                  `json:"team_id" validate:"required"`
	Points        *int                   `json:"points" validate:"required,gte=0"`
	ChallengeName string                 `json:"challenge_name" validate:"required,max=255"`
	Description   *string                `json:"description"`
	AchievedAt    *time.Time             `json:"achieved_at"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// UpdateScoreRequest is the payload for a partial score update.
type UpdateScoreRequest struct {
	TeamID        Optional[uint]                   `json:"team_id"`
	Points        Optional[int]                    `json:"points"`
	ChallengeName Optional[string]                 `json:"challenge_name"`
	Description   Optional[string]                 `json:"description"`
	AchievedAt    Optional[time.Time]              `json:"achieved_at"`
	Metadata      Optional[map[string]interface{}] `json:"metadata"`
}

// AddPointsRequest is the payload of the add-points shortcut. Points may be negative.
type AddPointsRequest struct {
	TeamID        *uint   `json:"team_id" validate:"required"`
	Points        *int    `json:"points" validate:"required"`
	ChallengeName string  `json:"challenge_name" validate:"required,max=255"`
	Description   *string `json:"description"`
}

// CreateProgressRequest is the payload for recording a milestone.
type CreateProgressRequest struct {
	TeamID      *uint      `json:"team_id" validate:"required"`
	Milestone   string     `json:"milestone" validate:"required,max=255"`
	Percentage  *int       `json:"percentage" validate:"required,gte=0,lte=100"`
	Notes       *string    `json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`
}

// UpdateProgressRequest is the payload for a partial progress update.
type UpdateProgressRequest struct {
	TeamID      Optional[uint]      `json:"team_id"`
	Milestone   Optional[string]    `json:"milestone"`
	Percentage  Optional[int]       `json:"percentage"`
	Notes       Optional[string]    `json:"notes"`
	CompletedAt Optional[time.Time] `json:"completed_at"`
}

// ScorePage is one page of the score listing.
type ScorePage struct {
	Data        []models.Score `json:"data"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	Total       int64          `json:"total"`
	LastPage    int            `json:"last_page"`
}
