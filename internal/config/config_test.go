package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "leaderboard.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 50, cfg.Leaderboard.DefaultLimit)
	assert.Equal(t, 10, cfg.Leaderboard.DefaultTopLimit)
	assert.Equal(t, 20, cfg.Leaderboard.DefaultScorePage)
	assert.Equal(t, 30*time.Second, cfg.Leaderboard.StatsCacheTTLDuration())
	assert.Equal(t, "/metrics", cfg.Metrics.Prometheus.Path)
	assert.False(t, cfg.Database.Redis.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  driver: postgres
  postgres:
    host: db.internal
    database: leaderboard
    user: app
  redis:
    enabled: true
    host: cache.internal
leaderboard:
  default_limit: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "cache.internal:6379", cfg.Database.Redis.Addr())
	assert.Equal(t, 25, cfg.Leaderboard.DefaultLimit)
	assert.Equal(t, 10, cfg.Leaderboard.DefaultTopLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("SQLITE_PATH", "/tmp/board.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/board.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: DriverSQLite, SQLite: SQLiteConfig{Path: "x.db"}},
			Leaderboard: LeaderboardConfig{
				DefaultLimit:     50,
				DefaultTopLimit:  10,
				DefaultScorePage: 20,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"origin without scheme", func(c *Config) { c.Server.AllowedOrigins = []string{"board.example.com"} }, "server.allowed_origins"},
		{"explicit origins", func(c *Config) { c.Server.AllowedOrigins = []string{"https://board.example.com"} }, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"postgres without host", func(c *Config) { c.Database.Driver = DriverPostgres }, "database.postgres.host"},
		{"sqlite without path", func(c *Config) { c.Database.SQLite.Path = "" }, "database.sqlite.path"},
		{"redis without host", func(c *Config) { c.Database.Redis.Enabled = true }, "database.redis.host"},
		{"mattermost without webhook", func(c *Config) { c.Mattermost.Enabled = true }, "mattermost.webhook_url"},
		{"scheduler without mattermost", func(c *Config) { c.Scheduler.Enabled = true }, "scheduler requires mattermost"},
		{"zero limit", func(c *Config) { c.Leaderboard.DefaultLimit = 0 }, "default limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchedulerLocation(t *testing.T) {
	cfg := &SchedulerConfig{Timezone: "Europe/Paris"}
	loc, err := cfg.GetLocation()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())

	cfg.Timezone = "Nowhere/Special"
	_, err = cfg.GetLocation()
	assert.Error(t, err)
}
