package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/models"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(logger.Nop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}

// createTestTeam creates an active team in the database.
func createTestTeam(t *testing.T, repo *TeamRepository, name, code string) *models.Team {
	t.Helper()

	team := &models.Team{Name: name, Code: code, IsActive: true}
	if err := repo.Create(team); err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}
	return team
}

// createTestScore creates a score for a team.
func createTestScore(t *testing.T, repo *ScoreRepository, teamID uint, points int, challenge string, achievedAt time.Time) *models.Score {
	t.Helper()

	score := &models.Score{TeamID: teamID, Points: points, ChallengeName: challenge, AchievedAt: achievedAt}
	if err := repo.Create(score); err != nil {
		t.Fatalf("Failed to create test score: %v", err)
	}
	return score
}

func TestTeamRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	color := "#FF0000"
	team := &models.Team{Name: "Red Dragons", Code: "RED", Color: &color, IsActive: true}
	if err := repo.Create(team); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if team.ID == 0 {
		t.Error("Expected team ID to be set after creation")
	}
	if team.CreatedAt.IsZero() || team.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
	if team.TotalScore != 0 || team.Rank != 0 {
		t.Errorf("Expected zero total and rank, got %d and %d", team.TotalScore, team.Rank)
	}
}

func TestTeamRepository_Create_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	createTestTeam(t, repo, "Alpha", "ALPHA")

	err := repo.Create(&models.Team{Name: "Other", Code: "ALPHA", IsActive: true})
	if err == nil {
		t.Fatal("Expected error for duplicate code")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestTeamRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	created := createTestTeam(t, repo, "Alpha", "ALPHA")

	team, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if team.Code != "ALPHA" {
		t.Errorf("Expected code 'ALPHA', got %q", team.Code)
	}

	_, err = repo.GetByID(999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestTeamRepository_GetWithRelations(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	team := createTestTeam(t, store.Teams, "Alpha", "ALPHA")
	now := time.Now()
	createTestScore(t, store.Scores, team.ID, 10, "first", now.Add(-time.Hour))
	createTestScore(t, store.Scores, team.ID, 20, "second", now)
	if err := store.Progress.Create(&models.Progress{TeamID: team.ID, Milestone: "Kickoff", Percentage: 40}); err != nil {
		t.Fatalf("Failed to create progress: %v", err)
	}

	loaded, err := store.Teams.GetWithRelations(team.ID)
	if err != nil {
		t.Fatalf("GetWithRelations() failed: %v", err)
	}
	if len(loaded.Scores) != 2 {
		t.Fatalf("Expected 2 scores, got %d", len(loaded.Scores))
	}
	if loaded.Scores[0].ChallengeName != "second" {
		t.Errorf("Expected newest score first, got %q", loaded.Scores[0].ChallengeName)
	}
	if len(loaded.Progress) != 1 {
		t.Errorf("Expected 1 progress entry, got %d", len(loaded.Progress))
	}
}

func TestTeamRepository_CodeTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	alpha := createTestTeam(t, repo, "Alpha", "ALPHA")

	tests := []struct {
		name      string
		code      string
		excludeID uint
		want      bool
	}{
		{"taken", "ALPHA", 0, true},
		{"free", "BETA", 0, false},
		{"taken by itself", "ALPHA", alpha.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CodeTaken(tt.code, tt.excludeID)
			if err != nil {
				t.Fatalf("CodeTaken() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CodeTaken(%q, %d) = %v, want %v", tt.code, tt.excludeID, got, tt.want)
			}
		})
	}
}

func TestTeamRepository_Delete_RemovesChildren(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	team := createTestTeam(t, store.Teams, "Alpha", "ALPHA")
	createTestScore(t, store.Scores, team.ID, 10, "c1", time.Now())
	if err := store.Progress.Create(&models.Progress{TeamID: team.ID, Milestone: "m", Percentage: 10}); err != nil {
		t.Fatalf("Failed to create progress: %v", err)
	}

	if err := store.Teams.Delete(team.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	count, err := store.Scores.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected scores to be removed, got %d", count)
	}

	entries, err := store.Progress.List(nil)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected progress to be removed, got %d", len(entries))
	}

	if err := store.Teams.Delete(team.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected gorm.ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestTeamRepository_ListStandings(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	a := createTestTeam(t, store.Teams, "A", "A")
	b := createTestTeam(t, store.Teams, "B", "B")
	c := createTestTeam(t, store.Teams, "C", "C")
	inactive := &models.Team{Name: "D", Code: "D", IsActive: false}
	if err := store.Teams.Create(inactive); err != nil {
		t.Fatalf("Failed to create inactive team: %v", err)
	}

	createTestScore(t, store.Scores, b.ID, 5, "x", time.Now())
	createTestScore(t, store.Scores, b.ID, 5, "y", time.Now())

	for id, rank := range map[uint]int{a.ID: 3, b.ID: 1, c.ID: 2} {
		if err := store.Teams.UpdateRank(id, rank); err != nil {
			t.Fatalf("UpdateRank() failed: %v", err)
		}
	}

	teams, err := store.Teams.ListStandings(0, 0)
	if err != nil {
		t.Fatalf("ListStandings() failed: %v", err)
	}
	if len(teams) != 3 {
		t.Fatalf("Expected 3 active teams, got %d", len(teams))
	}
	if teams[0].ID != b.ID || teams[1].ID != c.ID || teams[2].ID != a.ID {
		t.Errorf("Unexpected order: %d, %d, %d", teams[0].ID, teams[1].ID, teams[2].ID)
	}
	if teams[0].ScoresCount != 2 {
		t.Errorf("Expected scores_count 2, got %d", teams[0].ScoresCount)
	}

	page, err := store.Teams.ListStandings(1, 1)
	if err != nil {
		t.Fatalf("ListStandings() failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != c.ID {
		t.Errorf("Expected second-ranked team on page, got %+v", page)
	}
}

func TestTeamRepository_Aggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	a := createTestTeam(t, repo, "A", "A")
	b := createTestTeam(t, repo, "B", "B")
	inactive := &models.Team{Name: "C", Code: "C"}
	if err := repo.Create(inactive); err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}

	for id, total := range map[uint]int{a.ID: 80, b.ID: 80, inactive.ID: 500} {
		if _, err := repo.SetTotalScore(id, total); err != nil {
			t.Fatalf("SetTotalScore() failed: %v", err)
		}
	}

	count, err := repo.CountActive()
	if err != nil {
		t.Fatalf("CountActive() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 active teams, got %d", count)
	}

	sum, err := repo.SumActiveTotals()
	if err != nil {
		t.Fatalf("SumActiveTotals() failed: %v", err)
	}
	if sum != 160 {
		t.Errorf("Expected sum 160, got %d", sum)
	}

	top, err := repo.TopActive()
	if err != nil {
		t.Fatalf("TopActive() failed: %v", err)
	}
	if top == nil || top.ID != a.ID {
		t.Errorf("Expected lowest id to win the tie, got %+v", top)
	}
}

func TestTeamRepository_TopActive_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	top, err := repo.TopActive()
	if err != nil {
		t.Fatalf("TopActive() failed: %v", err)
	}
	if top != nil {
		t.Errorf("Expected nil top team, got %+v", top)
	}
}

func TestTeamRepository_SetTotalScore_OnlyTouchesOnChange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	team := createTestTeam(t, repo, "A", "A")
	before := team.UpdatedAt

	changed, err := repo.SetTotalScore(team.ID, 0)
	if err != nil {
		t.Fatalf("SetTotalScore() failed: %v", err)
	}
	if changed {
		t.Error("Expected no change when total is identical")
	}

	reloaded, err := repo.GetByID(team.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !reloaded.UpdatedAt.Equal(before) {
		t.Errorf("Expected updated_at to stay %v, got %v", before, reloaded.UpdatedAt)
	}

	changed, err = repo.SetTotalScore(team.ID, 42)
	if err != nil {
		t.Fatalf("SetTotalScore() failed: %v", err)
	}
	if !changed {
		t.Error("Expected change when total differs")
	}
}

func TestTeamRepository_UpdateRank_KeepsUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)

	team := createTestTeam(t, repo, "A", "A")

	if err := repo.UpdateRank(team.ID, 7); err != nil {
		t.Fatalf("UpdateRank() failed: %v", err)
	}

	reloaded, err := repo.GetByID(team.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if reloaded.Rank != 7 {
		t.Errorf("Expected rank 7, got %d", reloaded.Rank)
	}
	if !reloaded.UpdatedAt.Equal(team.UpdatedAt) {
		t.Errorf("Expected updated_at unchanged, got %v want %v", reloaded.UpdatedAt, team.UpdatedAt)
	}
}

func TestStore_Transaction_RollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	boom := errors.New("boom")
	err := store.Transaction(context.Background(), func(tx *Store) error {
		createTestTeam(t, tx.Teams, "A", "A")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	count, err := store.Teams.CountActive()
	if err != nil {
		t.Fatalf("CountActive() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to discard team, got %d teams", count)
	}
}
