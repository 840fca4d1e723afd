package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"arena/internal/database"
	"arena/internal/models"
)

// ErrAlreadyQueued l'agent est déjà dans la file
var ErrAlreadyQueued = errors.New("agent already in queue")

// QueueRepositoryInterface définit les méthodes du repository de file d'attente
type QueueRepositoryInterface interface {
	Join(agentID uuid.UUID) error
	Leave(agentID uuid.UUID) (bool, error)
	Contains(agentID uuid.UUID) (bool, error)
	ListTx(tx *sqlx.Tx) ([]*models.QueuedAgent, error)
	RemoveTx(tx *sqlx.Tx, agentIDs ...uuid.UUID) error
	Size() (int, error)
}

// QueueRepository implémente l'interface QueueRepositoryInterface
type QueueRepository struct {
	db *database.DB
}

// NewQueueRepository crée une nouvelle instance du repository de file
func NewQueueRepository(db *database.DB) QueueRepositoryInterface {
	return &QueueRepository{db: db}
}

// Join ajoute un agent à la file; la clé primaire garantit l'unicité
func (r *QueueRepository) Join(agentID uuid.UUID) error {
	_, err := r.db.Exec(`INSERT INTO matchmaking_queue (agent_id, joined_at) VALUES (?, ?)`,
		agentID, time.Now())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrAlreadyQueued
		}
		return fmt.Errorf("failed to join queue: %w", err)
	}
	return nil
}

// Leave retire un agent de la file; retourne false s'il n'y était pas
func (r *QueueRepository) Leave(agentID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM matchmaking_queue WHERE agent_id = ?`, agentID)
	if err != nil {
		return false, fmt.Errorf("failed to leave queue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check queue removal: %w", err)
	}

	return rows > 0, nil
}

// Contains indique si un agent est dans la file
func (r *QueueRepository) Contains(agentID uuid.UUID) (bool, error) {
	var one int
	err := r.db.Get(&one, `SELECT 1 FROM matchmaking_queue WHERE agent_id = ?`, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check queue membership: %w", err)
	}
	return true, nil
}

// ListTx retourne la file jointe aux champs de rating, du plus ancien au
// plus récent (priorité d'appariement)
func (r *QueueRepository) ListTx(tx *sqlx.Tx) ([]*models.QueuedAgent, error) {
	entries := []*models.QueuedAgent{}
	err := tx.Select(&entries, `
		SELECT q.agent_id, q.joined_at, a.elo, a.level
		FROM matchmaking_queue q
		JOIN agents a ON a.id = q.agent_id
		WHERE a.status IN ('active', 'system')
		ORDER BY q.joined_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return entries, nil
}

// RemoveTx retire des agents appariés de la file, dans la transaction
// d'appariement
func (r *QueueRepository) RemoveTx(tx *sqlx.Tx, agentIDs ...uuid.UUID) error {
	for _, id := range agentIDs {
		if _, err := tx.Exec(`DELETE FROM matchmaking_queue WHERE agent_id = ?`, id); err != nil {
			return fmt.Errorf("failed to remove agent from queue: %w", err)
		}
	}
	return nil
}

// Size retourne la taille courante de la file
func (r *QueueRepository) Size() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM matchmaking_queue`); err != nil {
		return 0, fmt.Errorf("failed to get queue size: %w", err)
	}
	return count, nil
}
