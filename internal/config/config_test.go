package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Path:        "./data/arena.db",
			BusyTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{JWTSecret: "test-secret-of-at-least-32-characters!!"},
		Battle: BattleConfig{
			TurnTimeout:            30 * time.Second,
			MaxConsecutiveTimeouts: 3,
			SchedulerTick:          5 * time.Second,
		},
		Matchmaking: MatchmakingConfig{
			EloWindows:    []int{100, 200, 350, 500, 0},
			DrainInterval: 15 * time.Second,
		},
		Webhook: WebhookConfig{MaxRetries: 3, Workers: 4},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "too-short" }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero turn timeout", func(c *Config) { c.Battle.TurnTimeout = 0 }},
		{"zero max timeouts", func(c *Config) { c.Battle.MaxConsecutiveTimeouts = 0 }},
		{"scheduler tick too slow", func(c *Config) { c.Battle.SchedulerTick = time.Minute }},
		{"no elo windows", func(c *Config) { c.Matchmaking.EloWindows = nil }},
		{"zero webhook retries", func(c *Config) { c.Webhook.MaxRetries = 0 }},
		{"zero webhook workers", func(c *Config) { c.Webhook.Workers = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{Path: "./data/arena.db", BusyTimeout: 5 * time.Second}

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "file:./data/arena.db")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_foreign_keys=on")
	assert.Contains(t, dsn, "_busy_timeout=5000")
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&ServerConfig{Environment: "production"}).IsProduction())
	assert.False(t, (&ServerConfig{Environment: "development"}).IsProduction())
	assert.False(t, (&ServerConfig{}).IsProduction())
}
