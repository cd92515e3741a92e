// Package seed loads teams and their scores from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// File is the seed file layout.
type File struct {
	Teams []Team `yaml:"teams"`
}

// Team is one seeded team with its scores.
type Team struct {
	Name        string  `yaml:"name"`
	Code        string  `yaml:"code"`
	Description *string `yaml:"description"`
	Color       *string `yaml:"color"`
	LogoURL     *string `yaml:"logo_url"`
	IsActive    *bool   `yaml:"is_active"`
	Scores      []Score `yaml:"scores"`
}

// Score is one seeded score. HoursAgo back-dates achieved_at relative to the load time.
type Score struct {
	Points        int                    `yaml:"points"`
	ChallengeName string                 `yaml:"challenge"`
	Description   *string                `yaml:"description"`
	HoursAgo      int                    `yaml:"hours_ago"`
	Metadata      map[string]interface{} `yaml:"metadata"`
}

// Writer creates teams and scores through the leaderboard rules.
type Writer interface {
	CreateTeam(ctx context.Context, req leaderboard.CreateTeamRequest) (*models.Team, error)
	CreateScore(ctx context.Context, req leaderboard.CreateScoreRequest) (*models.Score, error)
}

// Result counts what a load created.
type Result struct {
	TeamsCreated  int
	TeamsSkipped  int
	ScoresCreated int
}

// Parse decodes a seed file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile reads path and loads it through w.
func LoadFile(ctx context.Context, path string, w Writer, log *logger.Logger) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Load(ctx, f, w, time.Now(), log)
}

// Load creates every team in f and its scores. Teams whose code is already
// taken are skipped along with their scores, so a file can be loaded twice.
func Load(ctx context.Context, f *File, w Writer, now time.Time, log *logger.Logger) (*Result, error) {
	result := &Result{}

	for _, t := range f.Teams {
		team, err := w.CreateTeam(ctx, leaderboard.CreateTeamRequest{
			Name:        t.Name,
			Code:        t.Code,
			Description: t.Description,
			Color:       t.Color,
			LogoURL:     t.LogoURL,
			IsActive:    t.IsActive,
		})
		if err != nil {
			if codeTaken(err) {
				log.Info().Str("code", t.Code).Msg("Team already exists, skipping")
				result.TeamsSkipped++
				continue
			}
			return result, fmt.Errorf("team %q: %w", t.Code, err)
		}
		result.TeamsCreated++

		for i, s := range t.Scores {
			points := s.Points
			achievedAt := now.Add(-time.Duration(s.HoursAgo) * time.Hour)
			if _, err := w.CreateScore(ctx, leaderboard.CreateScoreRequest{
				TeamID:        &team.ID,
				Points:        &points,
				ChallengeName: s.ChallengeName,
				Description:   s.Description,
				AchievedAt:    &achievedAt,
				Metadata:      s.Metadata,
			}); err != nil {
				return result, fmt.Errorf("team %q score %d: %w", t.Code, i, err)
			}
			result.ScoresCreated++
		}
	}

	log.Info().
		Int("teams_created", result.TeamsCreated).
		Int("teams_skipped", result.TeamsSkipped).
		Int("scores_created", result.ScoresCreated).
		Msg("Seed data loaded")

	return result, nil
}

func codeTaken(err error) bool {
	var ve *leaderboard.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	_, ok := ve.Fields["code"]
	return ok && len(ve.Fields) == 1
}
