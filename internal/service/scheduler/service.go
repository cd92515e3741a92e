// Package scheduler posts the daily standings digest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/mattermost"
	prommetrics "github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

const jobTimeout = time.Minute

// BoardReader reads the current standings and summary.
type BoardReader interface {
	Top(ctx context.Context, limit int) ([]models.Team, error)
	Stats(ctx context.Context) (*aggregation.Stats, error)
}

// DigestSender delivers the standings digest.
type DigestSender interface {
	SendStandingsDigest(ctx context.Context, digest *mattermost.Digest) error
}

// Service handles daily digest scheduling.
type Service struct {
	config *config.SchedulerConfig
	board  BoardReader
	sender DigestSender
	log    *logger.Logger
	cron   *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.SchedulerConfig, board BoardReader, sender DigestSender, log *logger.Logger) *Service {
	return &Service{
		config: cfg,
		board:  board,
		sender: sender,
		log:    log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.runDailyDigest(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register daily digest job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Timezone).
		Str("time", s.config.Time).
		Bool("skip_weekends", s.config.SkipWeekends).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running job.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates a cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// runDailyDigest builds the digest from the current board and sends it.
func (s *Service) runDailyDigest(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	s.log.Info().Msg("Running daily digest job")

	digest, err := s.buildDigest(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build standings digest")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	if len(digest.Teams) == 0 {
		s.log.Debug().Msg("No active teams to report")
		prommetrics.RecordSchedulerJobRun("success")
		return
	}

	sendStart := time.Now()
	if err := s.sender.SendStandingsDigest(ctx, digest); err != nil {
		s.log.Error().
			Err(err).
			Dur("send_duration", time.Since(sendStart)).
			Msg("Failed to send standings digest")
		prommetrics.RecordSchedulerJobRun("error")
		prommetrics.RecordNotificationFailed("digest")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")
	prommetrics.RecordNotificationSent("digest")

	s.log.Info().
		Int("team_count", len(digest.Teams)).
		Dur("send_duration", time.Since(sendStart)).
		Dur("total_duration", time.Since(start)).
		Msg("Successfully sent standings digest")
}

func (s *Service) buildDigest(ctx context.Context) (*mattermost.Digest, error) {
	teams, err := s.board.Top(ctx, s.config.DigestSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load top teams: %w", err)
	}

	stats, err := s.board.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	return &mattermost.Digest{
		Teams:        teams,
		TotalTeams:   stats.TotalTeams,
		TotalScores:  stats.TotalScores,
		TotalPoints:  stats.TotalPoints,
		AverageScore: stats.AverageScore,
	}, nil
}
