package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration 1: Table des agents
const createAgentsTable = `
CREATE TABLE IF NOT EXISTS agents (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    api_key_hash TEXT NOT NULL UNIQUE,
    owner_id TEXT,
    webhook_url TEXT NOT NULL DEFAULT '',
    webhook_secret TEXT NOT NULL DEFAULT '',
    elemental_type TEXT NOT NULL,
    base_hp INTEGER NOT NULL CHECK (base_hp BETWEEN 1 AND 35),
    base_attack INTEGER NOT NULL CHECK (base_attack BETWEEN 1 AND 35),
    base_defense INTEGER NOT NULL CHECK (base_defense BETWEEN 1 AND 35),
    base_sp_atk INTEGER NOT NULL CHECK (base_sp_atk BETWEEN 1 AND 35),
    base_sp_def INTEGER NOT NULL CHECK (base_sp_def BETWEEN 1 AND 35),
    base_speed INTEGER NOT NULL CHECK (base_speed BETWEEN 1 AND 35),
    nature TEXT NOT NULL,
    ability TEXT NOT NULL,
    move_1 TEXT NOT NULL,
    move_2 TEXT NOT NULL,
    move_3 TEXT NOT NULL,
    move_4 TEXT NOT NULL,
    level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    elo INTEGER NOT NULL DEFAULT 1000,
    wins INTEGER NOT NULL DEFAULT 0,
    fights INTEGER NOT NULL DEFAULT 0,
    win_streak INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'banned', 'system')),
    play_mode TEXT NOT NULL DEFAULT 'auto' CHECK (play_mode IN ('auto', 'manual')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (base_hp + base_attack + base_defense + base_sp_atk + base_sp_def + base_speed = 100)
);`

// Migration 2: Table des combats
const createBattlesTable = `
CREATE TABLE IF NOT EXISTS battles (
    id TEXT PRIMARY KEY,
    battle_number INTEGER NOT NULL UNIQUE,
    agent_a_id TEXT NOT NULL REFERENCES agents(id),
    agent_b_id TEXT NOT NULL REFERENCES agents(id),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active', 'finished', 'forfeited', 'timeout', 'cancelled')),
    current_phase TEXT NOT NULL DEFAULT 'challenge' CHECK (current_phase IN ('challenge', 'waiting', 'resolving', 'finished')),
    turn_number INTEGER NOT NULL DEFAULT 0,
    pending_move_a TEXT,
    pending_move_b TEXT,
    state_blob TEXT NOT NULL DEFAULT '{}',
    winner_id TEXT REFERENCES agents(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    started_at TIMESTAMP,
    last_turn_at TIMESTAMP,
    ended_at TIMESTAMP,
    CONSTRAINT different_agents CHECK (agent_a_id != agent_b_id)
);`

// Migration 3: Table des logs de tours (append-only)
const createBattleTurnsTable = `
CREATE TABLE IF NOT EXISTS battle_turns (
    id TEXT PRIMARY KEY,
    battle_id TEXT NOT NULL REFERENCES battles(id) ON DELETE CASCADE,
    turn_number INTEGER NOT NULL,
    move_a TEXT,
    move_b TEXT,
    events TEXT NOT NULL DEFAULT '[]',
    hp_a INTEGER NOT NULL,
    hp_b INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(battle_id, turn_number)
);`

// Migration 4: File d'attente du matchmaking
const createQueueTable = `
CREATE TABLE IF NOT EXISTS matchmaking_queue (
    agent_id TEXT PRIMARY KEY REFERENCES agents(id),
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Migration 5: Tokens sociaux one-shot émis en fin de combat
const createSocialTokensTable = `
CREATE TABLE IF NOT EXISTS social_tokens (
    token TEXT PRIMARY KEY,
    agent_id TEXT NOT NULL REFERENCES agents(id),
    battle_id TEXT NOT NULL REFERENCES battles(id),
    consumed INTEGER NOT NULL DEFAULT 0,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(agent_id, battle_id)
);`

// Migration 6: Compteur monotone de numéros d'affichage des combats
const createBattleCounterTable = `
CREATE TABLE IF NOT EXISTS battle_counter (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    next_number INTEGER NOT NULL
);
INSERT OR IGNORE INTO battle_counter (id, next_number) VALUES (1, 1);`

// Migration 7: Index pour les performances
const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_agents_status_elo ON agents(status, elo DESC);
CREATE INDEX IF NOT EXISTS idx_agents_api_key_hash ON agents(api_key_hash);

CREATE INDEX IF NOT EXISTS idx_battles_agent_a_status ON battles(agent_a_id, status);
CREATE INDEX IF NOT EXISTS idx_battles_agent_b_status ON battles(agent_b_id, status);
CREATE INDEX IF NOT EXISTS idx_battles_status_phase ON battles(status, current_phase);
CREATE INDEX IF NOT EXISTS idx_battles_last_turn_at ON battles(last_turn_at);

CREATE INDEX IF NOT EXISTS idx_battle_turns_battle_id ON battle_turns(battle_id, turn_number);

CREATE INDEX IF NOT EXISTS idx_queue_joined_at ON matchmaking_queue(joined_at);

CREATE INDEX IF NOT EXISTS idx_social_tokens_agent ON social_tokens(agent_id);
CREATE INDEX IF NOT EXISTS idx_social_tokens_expires_at ON social_tokens(expires_at);`

// RunMigrations exécute toutes les migrations dans une transaction
func RunMigrations(db *DB) error {
	migrations := []struct {
		name  string
		query string
	}{
		{"agents", createAgentsTable},
		{"battles", createBattlesTable},
		{"battle_turns", createBattleTurnsTable},
		{"matchmaking_queue", createQueueTable},
		{"social_tokens", createSocialTokensTable},
		{"battle_counter", createBattleCounterTable},
		{"indexes", createIndexes},
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	for _, m := range migrations {
		if _, err := tx.Exec(m.query); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logrus.WithError(rbErr).Error("Failed to rollback migration")
			}
			return fmt.Errorf("failed to run migration %s: %w", m.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	logrus.WithField("count", len(migrations)).Info("Database migrations completed")
	return nil
}
