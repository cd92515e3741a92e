package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/internal/repository"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// Mock team store for testing
type mockTeamStore struct {
	teams     []models.Team
	ranks     map[uint]int
	listErr   error
	updateErr error
}

func newMockTeamStore(teams ...models.Team) *mockTeamStore {
	return &mockTeamStore{teams: teams, ranks: make(map[uint]int)}
}

func (m *mockTeamStore) ListActive() ([]models.Team, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var active []models.Team
	for _, t := range m.teams {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

func (m *mockTeamStore) UpdateRank(id uint, rank int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.ranks[id] = rank
	return nil
}

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func team(id uint, total int, updated time.Duration, active bool) models.Team {
	return models.Team{
		ID:         id,
		Name:       "team",
		Code:       "T",
		TotalScore: total,
		IsActive:   active,
		UpdatedAt:  epoch.Add(updated),
	}
}

func TestOrder_SortsByTotalDescending(t *testing.T) {
	standings := Order([]models.Team{
		team(1, 50, 0, true),
		team(2, 80, 0, true),
		team(3, 10, 0, true),
	})

	require.Len(t, standings, 3)
	assert.Equal(t, uint(2), standings[0].TeamID)
	assert.Equal(t, uint(1), standings[1].TeamID)
	assert.Equal(t, uint(3), standings[2].TeamID)
	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
	}
}

func TestOrder_TieBreaksOnEarlierUpdate(t *testing.T) {
	standings := Order([]models.Team{
		team(1, 100, 2*time.Minute, true),
		team(2, 100, time.Minute, true),
	})

	require.Len(t, standings, 2)
	assert.Equal(t, uint(2), standings[0].TeamID, "team that reached the total first ranks higher")
	assert.Equal(t, uint(1), standings[1].TeamID)
}

func TestOrder_FullTieFallsBackToID(t *testing.T) {
	standings := Order([]models.Team{
		team(9, 100, 0, true),
		team(4, 100, 0, true),
	})

	require.Len(t, standings, 2)
	assert.Equal(t, uint(4), standings[0].TeamID)
	assert.Equal(t, uint(9), standings[1].TeamID)
}

func TestOrder_SkipsInactiveTeams(t *testing.T) {
	standings := Order([]models.Team{
		team(1, 500, 0, false),
		team(2, 10, 0, true),
		team(3, 20, 0, true),
	})

	require.Len(t, standings, 2)
	assert.Equal(t, uint(3), standings[0].TeamID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, uint(2), standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestOrder_Empty(t *testing.T) {
	assert.Empty(t, Order(nil))
}

func TestRecomputeAllRanks_WritesEveryRank(t *testing.T) {
	store := newMockTeamStore(
		team(1, 50, 0, true),
		team(2, 80, 0, true),
		team(3, 999, 0, false),
	)
	engine := NewEngine(logger.Nop())

	standings, err := engine.RecomputeAllRanks(context.Background(), store)

	require.NoError(t, err)
	assert.Len(t, standings, 2)
	assert.Equal(t, map[uint]int{2: 1, 1: 2}, store.ranks)
}

func TestRecomputeAllRanks_ListError(t *testing.T) {
	store := newMockTeamStore()
	store.listErr = errors.New("db down")
	engine := NewEngine(logger.Nop())

	_, err := engine.RecomputeAllRanks(context.Background(), store)

	assert.Error(t, err)
	assert.ErrorIs(t, err, store.listErr)
}

func TestRecomputeAllRanks_UpdateError(t *testing.T) {
	store := newMockTeamStore(team(1, 10, 0, true))
	store.updateErr = errors.New("write failed")
	engine := NewEngine(logger.Nop())

	_, err := engine.RecomputeAllRanks(context.Background(), store)

	assert.ErrorIs(t, err, store.updateErr)
}

func TestRecomputeAllRanks_CancelledContext(t *testing.T) {
	store := newMockTeamStore(team(1, 10, 0, true))
	engine := NewEngine(logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.RecomputeAllRanks(ctx, store)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.ranks)
}

func TestRecomputeRankFor_RecomputesEveryone(t *testing.T) {
	store := newMockTeamStore(
		team(1, 10, 0, true),
		team(2, 20, 0, true),
		team(3, 30, 0, true),
	)
	engine := NewEngine(logger.Nop())

	_, err := engine.RecomputeRankFor(context.Background(), store, 1)

	require.NoError(t, err)
	assert.Equal(t, map[uint]int{3: 1, 2: 2, 1: 3}, store.ranks)
}

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	db, err := repository.NewDB(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewStore(db)
}

func TestRecomputeAllRanks_DenseAfterDeactivation(t *testing.T) {
	store := setupTestStore(t)
	engine := NewEngine(logger.Nop())
	ctx := context.Background()

	var ids []uint
	for i, total := range []int{40, 30, 20, 10} {
		tm := &models.Team{Name: "T", Code: string(rune('A' + i)), IsActive: true}
		require.NoError(t, store.Teams.Create(tm))
		_, err := store.Teams.SetTotalScore(tm.ID, total)
		require.NoError(t, err)
		ids = append(ids, tm.ID)
	}

	_, err := engine.RecomputeAllRanks(ctx, store.Teams)
	require.NoError(t, err)

	// Deactivate the second-placed team.
	second, err := store.Teams.GetByID(ids[1])
	require.NoError(t, err)
	second.IsActive = false
	require.NoError(t, store.Teams.Update(second))

	standings, err := engine.RecomputeAllRanks(ctx, store.Teams)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	active, err := store.Teams.ListActiveByRank(0, 0)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for i, tm := range active {
		assert.Equal(t, i+1, tm.Rank, "ranks stay dense over active teams")
	}
	assert.Equal(t, []uint{ids[0], ids[2], ids[3]}, []uint{active[0].ID, active[1].ID, active[2].ID})

	stale, err := store.Teams.GetByID(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 2, stale.Rank, "inactive team keeps its last rank")

	// Reactivate: it slots back in by total.
	stale.IsActive = true
	require.NoError(t, store.Teams.Update(stale))

	standings, err = engine.RecomputeAllRanks(ctx, store.Teams)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	assert.Equal(t, ids[1], standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Rank)
}
