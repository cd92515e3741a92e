package leaderboard

import (
	"context"
	"encoding/json"

	"github.com/aimd54/team-leaderboard/internal/metrics"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
)

// Stats returns the board summary, served from cache while it is fresh.
// Every committed team or score write invalidates the cached copy, and no
// write commits while a fresh summary is being computed and stored.
func (s *Service) Stats(ctx context.Context) (*aggregation.Stats, error) {
	if cached, ok := s.cachedStats(ctx); ok {
		return cached, nil
	}

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()

	store := s.store.WithContext(ctx)
	stats, err := s.agg.ComputeStats(ctx, store.Teams, store.Scores)
	if err != nil {
		return nil, err
	}

	if ttl := s.cfg.StatsCacheTTLDuration(); ttl > 0 {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(data), ttl); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache leaderboard stats")
			}
		}
	}

	return stats, nil
}

func (s *Service) cachedStats(ctx context.Context) (*aggregation.Stats, bool) {
	if s.cfg.StatsCacheTTLDuration() <= 0 {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		metrics.RecordCacheRequest("error")
		s.log.Warn().Err(err).Msg("Failed to read cached leaderboard stats")
		return nil, false
	}
	if raw == "" {
		metrics.RecordCacheRequest("miss")
		return nil, false
	}

	var stats aggregation.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		metrics.RecordCacheRequest("error")
		s.log.Warn().Err(err).Msg("Discarding malformed cached leaderboard stats")
		return nil, false
	}

	metrics.RecordCacheRequest("hit")
	return &stats, true
}
