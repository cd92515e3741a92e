package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/mattermost"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

type fakeBoard struct {
	teams     []models.Team
	stats     *aggregation.Stats
	err       error
	lastLimit int
}

func (f *fakeBoard) Top(_ context.Context, limit int) ([]models.Team, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.teams, nil
}

func (f *fakeBoard) Stats(_ context.Context) (*aggregation.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeSender struct {
	digests []*mattermost.Digest
	err     error
}

func (f *fakeSender) SendStandingsDigest(_ context.Context, digest *mattermost.Digest) error {
	f.digests = append(f.digests, digest)
	return f.err
}

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		name         string
		time         string
		skipWeekends bool
		want         string
		wantErr      bool
	}{
		{
			name:         "daily at 6pm",
			time:         "18:00",
			skipWeekends: false,
			want:         "0 18 * * *",
			wantErr:      false,
		},
		{
			name:         "weekdays at 9am",
			time:         "09:00",
			skipWeekends: true,
			want:         "0 9 * * 1-5",
			wantErr:      false,
		},
		{
			name:         "daily at 14:30",
			time:         "14:30",
			skipWeekends: false,
			want:         "30 14 * * *",
			wantErr:      false,
		},
		{
			name:         "invalid format no colon",
			time:         "0900",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
		{
			name:         "invalid hour",
			time:         "25:00",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
		{
			name:         "invalid minute",
			time:         "09:60",
			skipWeekends: false,
			want:         "",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Service{config: &config.SchedulerConfig{
				Time:         tt.time,
				SkipWeekends: tt.skipWeekends,
			}}

			got, err := s.buildCronExpression()

			if (err != nil) != tt.wantErr {
				t.Errorf("buildCronExpression() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if got != tt.want {
				t.Errorf("buildCronExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunDailyDigest_SendsTopTeamsAndStats(t *testing.T) {
	board := &fakeBoard{
		teams: []models.Team{
			{ID: 1, Name: "Red", TotalScore: 50, Rank: 1},
			{ID: 2, Name: "Blue", TotalScore: 30, Rank: 2},
		},
		stats: &aggregation.Stats{TotalTeams: 2, TotalScores: 3, TotalPoints: 80, AverageScore: 40},
	}
	sender := &fakeSender{}
	s := NewService(&config.SchedulerConfig{DigestSize: 5}, board, sender, logger.Nop())

	s.runDailyDigest(context.Background())

	assert.Equal(t, 5, board.lastLimit)
	require.Len(t, sender.digests, 1)
	digest := sender.digests[0]
	assert.Len(t, digest.Teams, 2)
	assert.Equal(t, int64(80), digest.TotalPoints)
	assert.Equal(t, int64(3), digest.TotalScores)
	assert.Equal(t, 40.0, digest.AverageScore)
}

func TestRunDailyDigest_SkipsEmptyBoard(t *testing.T) {
	board := &fakeBoard{stats: &aggregation.Stats{}}
	sender := &fakeSender{}
	s := NewService(&config.SchedulerConfig{DigestSize: 5}, board, sender, logger.Nop())

	s.runDailyDigest(context.Background())

	assert.Empty(t, sender.digests)
}

func TestRunDailyDigest_Errors(t *testing.T) {
	t.Run("board failure does not send", func(t *testing.T) {
		board := &fakeBoard{err: errors.New("database is locked")}
		sender := &fakeSender{}
		s := NewService(&config.SchedulerConfig{DigestSize: 5}, board, sender, logger.Nop())

		s.runDailyDigest(context.Background())

		assert.Empty(t, sender.digests)
	})

	t.Run("send failure is absorbed", func(t *testing.T) {
		board := &fakeBoard{
			teams: []models.Team{{ID: 1, Name: "Red", Rank: 1}},
			stats: &aggregation.Stats{TotalTeams: 1},
		}
		sender := &fakeSender{err: errors.New("webhook returned 500")}
		s := NewService(&config.SchedulerConfig{DigestSize: 5}, board, sender, logger.Nop())

		assert.NotPanics(t, func() { s.runDailyDigest(context.Background()) })
		assert.Len(t, sender.digests, 1)
	})
}

func TestStart(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		s := NewService(&config.SchedulerConfig{Enabled: false}, &fakeBoard{}, &fakeSender{}, logger.Nop())
		require.NoError(t, s.Start())
		assert.Nil(t, s.cron)
		s.Stop()
	})

	t.Run("invalid timezone", func(t *testing.T) {
		s := NewService(&config.SchedulerConfig{Enabled: true, Time: "18:00", Timezone: "Mars/Olympus"}, &fakeBoard{}, &fakeSender{}, logger.Nop())
		assert.Error(t, s.Start())
	})

	t.Run("invalid time", func(t *testing.T) {
		s := NewService(&config.SchedulerConfig{Enabled: true, Time: "6pm", Timezone: "UTC"}, &fakeBoard{}, &fakeSender{}, logger.Nop())
		assert.Error(t, s.Start())
	})

	t.Run("registers one job", func(t *testing.T) {
		s := NewService(&config.SchedulerConfig{Enabled: true, Time: "18:00", Timezone: "UTC"}, &fakeBoard{}, &fakeSender{}, logger.Nop())
		require.NoError(t, s.Start())
		defer s.Stop()
		assert.Len(t, s.cron.Entries(), 1)
	})
}
