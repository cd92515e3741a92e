// Package leaderboard orchestrates team, score and progress writes and keeps
// totals and ranks consistent with them.
package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aimd54/team-leaderboard/internal/cache"
	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/live"
	"github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
	"github.com/aimd54/team-leaderboard/internal/service/ranking"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

const (
	resourceTeam     = "team"
	resourceScore    = "score"
	resourceProgress = "progress"

	statsCacheKey = cache.KeyPrefix + "stats"

	notifyTimeout = 10 * time.Second
)

// Publisher pushes messages to live clients.
type Publisher interface {
	Publish(messageType string, payload interface{})
}

// Notifier announces leaderboard events to a chat channel.
type Notifier interface {
	SendLeaderChange(ctx context.Context, previous, current *models.Team) error
}

// Service handles every leaderboard read and write.
type Service struct {
	store     *repository.Store
	ranks     *ranking.Engine
	agg       *aggregation.Service
	cache     cache.Cache
	publisher Publisher
	notifier  Notifier
	cfg       config.LeaderboardConfig
	log       *logger.Logger

	// writeMu serializes units of work so concurrent recomputes never interleave.
	// Cache fills hold the read side so a commit and its invalidation cannot
	// land between computing a read model and storing it.
	writeMu sync.RWMutex
	pending sync.WaitGroup
}

// NewService creates a new leaderboard service. A nil cache, publisher or
// notifier disables that side effect.
func NewService(
	store *repository.Store,
	ranks *ranking.Engine,
	agg *aggregation.Service,
	c cache.Cache,
	publisher Publisher,
	notifier Notifier,
	cfg config.LeaderboardConfig,
	log *logger.Logger,
) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		store:     store,
		ranks:     ranks,
		agg:       agg,
		cache:     c,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
	}
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// unitOfWork is the body of a ranked write. It returns the teams whose totals
// must be recomputed before ranks are.
type unitOfWork func(tx *repository.Store) ([]uint, error)

// mutate runs fn, the total recompute and the rank recompute in one
// transaction, then fires the post-commit side effects.
func (s *Service) mutate(ctx context.Context, resource, operation string, fn unitOfWork) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		previous  *models.Team
		standings []ranking.Standing
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		previous, err = tx.Teams.Leader()
		if err != nil {
			return err
		}

		teamIDs, err := fn(tx)
		if err != nil {
			return err
		}

		for _, id := range uniqueIDs(teamIDs) {
			if _, err := s.agg.RecomputeTotal(ctx, tx.Teams, tx.Scores, id); err != nil {
				return err
			}
		}

		standings, err = s.ranks.RecomputeAllRanks(ctx, tx.Teams)
		return err
	})
	if err != nil {
		metrics.RecordWrite(resource, operation, "error")
		return err
	}

	metrics.RecordWrite(resource, operation, "success")
	s.afterCommit(ctx, previous, standings)
	return nil
}

// afterCommit invalidates cached read models, publishes the standings and
// announces a leader change.
func (s *Service) afterCommit(ctx context.Context, previous *models.Team, standings []ranking.Standing) {
	if err := s.cache.DelPrefix(ctx, cache.KeyPrefix); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}

	if s.publisher != nil {
		s.publisher.Publish(live.TypeStandings, standings)
	}

	if len(standings) == 0 {
		return
	}
	leaderID := standings[0].TeamID
	if previous != nil && previous.ID == leaderID {
		return
	}

	metrics.RecordLeaderChange()
	if s.notifier == nil {
		return
	}

	current, err := s.store.WithContext(ctx).Teams.GetByID(leaderID)
	if err != nil {
		s.log.Warn().Err(err).Uint("team_id", leaderID).Msg("Failed to load new leader")
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.SendLeaderChange(nctx, previous, current); err != nil {
			metrics.RecordNotificationFailed("leader_change")
			s.log.Warn().Err(err).Uint("team_id", current.ID).Msg("Failed to send leader change notification")
			return
		}
		metrics.RecordNotificationSent("leader_change")
		s.log.Info().Uint("team_id", current.ID).Str("team", current.Name).Msg("Leader change announced")
	}()
}

// recomputeRanks refreshes ranks outside of a write, for reads that must see
// up-to-date positions.
func (s *Service) recomputeRanks(ctx context.Context) ([]ranking.Standing, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var standings []ranking.Standing
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		standings, err = s.ranks.RecomputeAllRanks(ctx, tx.Teams)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recompute ranks: %w", err)
	}
	return standings, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
