package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"arena/internal/config"
)

// DB encapsule la connexion SQLite
type DB struct {
	*sqlx.DB
}

// NewConnection ouvre le store SQLite embarqué (WAL + foreign keys)
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite n'accepte qu'un seul writer; on sérialise au niveau du pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logrus.WithFields(logrus.Fields{
		"path": cfg.Path,
	}).Info("Database connection established")

	return &DB{db}, nil
}

// NewTestConnection ouvre un store en mémoire pour les tests
func NewTestConnection() (*DB, error) {
	db, err := sqlx.Connect("sqlite3", "file::memory:?_journal_mode=WAL&_foreign_keys=on&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &DB{db}, nil
}

// WithTx exécute fn dans une transaction d'écriture; rollback sur erreur
func (db *DB) WithTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Error("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
