package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"arena/internal/database"
	"arena/internal/models"
)

// AgentRepositoryInterface définit les méthodes du repository agent
type AgentRepositoryInterface interface {
	// CRUD de base
	Create(agent *models.Agent) error
	GetByID(id uuid.UUID) (*models.Agent, error)
	GetByIDTx(tx *sqlx.Tx, id uuid.UUID) (*models.Agent, error)
	GetByName(name string) (*models.Agent, error)
	GetByAPIKeyHash(hash string) (*models.Agent, error)

	// Mise à jour des credentials et du webhook
	UpdateWebhook(id uuid.UUID, url, secret string) error
	UpdateStatus(id uuid.UUID, status models.AgentStatus) error

	// Résultats de combat (appelé dans la transaction de résolution)
	UpdateResultsTx(tx *sqlx.Tx, agent *models.Agent) error

	// Classement
	Leaderboard(limit, offset int) ([]*models.Agent, error)
	Rank(elo int) (int, error)
	CountActive() (int, error)
}

// AgentRepository implémente l'interface AgentRepositoryInterface
type AgentRepository struct {
	db *database.DB
}

// NewAgentRepository crée une nouvelle instance du repository agent
func NewAgentRepository(db *database.DB) AgentRepositoryInterface {
	return &AgentRepository{db: db}
}

// Create enregistre un nouvel agent
func (r *AgentRepository) Create(agent *models.Agent) error {
	query := `
		INSERT INTO agents (
			id, name, api_key_hash, owner_id, webhook_url, webhook_secret,
			elemental_type, base_hp, base_attack, base_defense, base_sp_atk,
			base_sp_def, base_speed, nature, ability,
			move_1, move_2, move_3, move_4,
			level, xp, elo, wins, fights, win_streak,
			status, play_mode, created_at, updated_at
		) VALUES (
			:id, :name, :api_key_hash, :owner_id, :webhook_url, :webhook_secret,
			:elemental_type, :base_hp, :base_attack, :base_defense, :base_sp_atk,
			:base_sp_def, :base_speed, :nature, :ability,
			:move_1, :move_2, :move_3, :move_4,
			:level, :xp, :elo, :wins, :fights, :win_streak,
			:status, :play_mode, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, agent)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// GetByID récupère un agent par son ID
func (r *AgentRepository) GetByID(id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.Get(&agent, `SELECT * FROM agents WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by id: %w", err)
	}
	return &agent, nil
}

// GetByIDTx récupère un agent dans une transaction en cours
func (r *AgentRepository) GetByIDTx(tx *sqlx.Tx, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := tx.Get(&agent, `SELECT * FROM agents WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by id: %w", err)
	}
	return &agent, nil
}

// GetByName récupère un agent par son nom (unique)
func (r *AgentRepository) GetByName(name string) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.Get(&agent, `SELECT * FROM agents WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by name: %w", err)
	}
	return &agent, nil
}

// GetByAPIKeyHash récupère un agent par le digest de sa clé API
func (r *AgentRepository) GetByAPIKeyHash(hash string) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.Get(&agent, `SELECT * FROM agents WHERE api_key_hash = ?`, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by api key: %w", err)
	}
	return &agent, nil
}

// UpdateWebhook remplace l'URL et le secret de webhook d'un agent
func (r *AgentRepository) UpdateWebhook(id uuid.UUID, url, secret string) error {
	query := `
		UPDATE agents
		SET webhook_url = :webhook_url,
		    webhook_secret = :webhook_secret,
		    updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExec(query, map[string]interface{}{
		"id":             id,
		"webhook_url":    url,
		"webhook_secret": secret,
		"updated_at":     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check webhook update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("agent not found")
	}

	return nil
}

// UpdateStatus change le statut de cycle de vie d'un agent
func (r *AgentRepository) UpdateStatus(id uuid.UUID, status models.AgentStatus) error {
	query := `UPDATE agents SET status = :status, updated_at = :updated_at WHERE id = :id`

	_, err := r.db.NamedExec(query, map[string]interface{}{
		"id":         id,
		"status":     status,
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update agent status: %w", err)
	}

	return nil
}

// UpdateResultsTx persiste la progression d'un agent après un combat,
// dans la transaction de résolution
func (r *AgentRepository) UpdateResultsTx(tx *sqlx.Tx, agent *models.Agent) error {
	query := `
		UPDATE agents
		SET level = :level,
		    xp = :xp,
		    elo = :elo,
		    wins = :wins,
		    fights = :fights,
		    win_streak = :win_streak,
		    updated_at = :updated_at
		WHERE id = :id`

	agent.UpdatedAt = time.Now()
	if _, err := tx.NamedExec(query, agent); err != nil {
		return fmt.Errorf("failed to update agent results: %w", err)
	}

	return nil
}

// Leaderboard retourne les agents actifs triés par ELO décroissant
func (r *AgentRepository) Leaderboard(limit, offset int) ([]*models.Agent, error) {
	builder := sq.Select("*").
		From("agents").
		Where(sq.Eq{"status": []string{string(models.AgentActive), string(models.AgentSystem)}}).
		OrderBy("elo DESC", "wins DESC", "created_at ASC").
		Limit(uint64(limit))

	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	agents := []*models.Agent{}
	if err := r.db.Select(&agents, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return agents, nil
}

// Rank retourne le rang 1-indexé correspondant à un ELO donné
func (r *AgentRepository) Rank(elo int) (int, error) {
	var higher int
	err := r.db.Get(&higher, `
		SELECT COUNT(*) FROM agents
		WHERE status IN ('active', 'system') AND elo > ?`, elo)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return higher + 1, nil
}

// CountActive compte les agents pouvant combattre
func (r *AgentRepository) CountActive() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM agents WHERE status IN ('active', 'system')`)
	if err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}
