package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

const sample = `
teams:
  - name: Red Dragons
    code: RED
    color: "#ff0000"
    scores:
      - points: 50
        challenge: Quiz
        hours_ago: 2
        metadata:
          difficulty: hard
      - points: 30
        challenge: Relay
  - name: Blue Sharks
    code: BLUE
    is_active: false
`

type fakeWriter struct {
	nextID uint
	codes  map[string]bool
	scores []leaderboard.CreateScoreRequest
	err    error
}

func newFakeWriter(existing ...string) *fakeWriter {
	w := &fakeWriter{codes: make(map[string]bool)}
	for _, c := range existing {
		w.codes[c] = true
	}
	return w
}

func (w *fakeWriter) CreateTeam(_ context.Context, req leaderboard.CreateTeamRequest) (*models.Team, error) {
	if w.codes[req.Code] {
		ve := &leaderboard.ValidationError{}
		ve.Add("code", "The code has already been taken.")
		return nil, ve
	}
	w.codes[req.Code] = true
	w.nextID++
	return &models.Team{ID: w.nextID, Name: req.Name, Code: req.Code}, nil
}

func (w *fakeWriter) CreateScore(_ context.Context, req leaderboard.CreateScoreRequest) (*models.Score, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.scores = append(w.scores, req)
	return &models.Score{TeamID: *req.TeamID, Points: *req.Points}, nil
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Teams, 2)

	red := f.Teams[0]
	assert.Equal(t, "RED", red.Code)
	require.NotNil(t, red.Color)
	assert.Equal(t, "#ff0000", *red.Color)
	assert.Nil(t, red.IsActive)
	require.Len(t, red.Scores, 2)
	assert.Equal(t, "Quiz", red.Scores[0].ChallengeName)
	assert.Equal(t, "hard", red.Scores[0].Metadata["difficulty"])

	require.NotNil(t, f.Teams[1].IsActive)
	assert.False(t, *f.Teams[1].IsActive)

	_, err = Parse([]byte("teams: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w := newFakeWriter()

	result, err := Load(context.Background(), f, w, now, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TeamsCreated)
	assert.Equal(t, 0, result.TeamsSkipped)
	assert.Equal(t, 2, result.ScoresCreated)

	require.Len(t, w.scores, 2)
	assert.Equal(t, uint(1), *w.scores[0].TeamID)
	assert.Equal(t, 50, *w.scores[0].Points)
	assert.True(t, now.Add(-2*time.Hour).Equal(*w.scores[0].AchievedAt))
	assert.True(t, now.Equal(*w.scores[1].AchievedAt))
}

func TestLoad_SkipsExistingCodes(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	w := newFakeWriter("RED")
	result, err := Load(context.Background(), f, w, time.Now(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TeamsCreated)
	assert.Equal(t, 1, result.TeamsSkipped)
	assert.Equal(t, 0, result.ScoresCreated)
}

func TestLoad_StopsOnScoreError(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	w := newFakeWriter()
	w.err = errors.New("database is locked")

	result, err := Load(context.Background(), f, w, time.Now(), logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `team "RED" score 0`)
	assert.Equal(t, 1, result.TeamsCreated)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	result, err := LoadFile(context.Background(), path, newFakeWriter(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TeamsCreated)

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), newFakeWriter(), logger.Nop())
	assert.Error(t, err)
}
