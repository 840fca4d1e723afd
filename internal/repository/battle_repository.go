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

// BattleRepositoryInterface définit les méthodes du repository battle
type BattleRepositoryInterface interface {
	// Création (alloue le numéro d'affichage dans la transaction)
	CreateTx(tx *sqlx.Tx, battle *models.Battle) error

	// Lectures
	GetByID(id uuid.UUID) (*models.Battle, error)
	GetByIDTx(tx *sqlx.Tx, id uuid.UUID) (*models.Battle, error)
	FindOngoingByAgent(agentID uuid.UUID) (*models.Battle, error)
	FindOngoingByAgentTx(tx *sqlx.Tx, agentID uuid.UUID) (*models.Battle, error)
	FindPendingChallenge(challengedID, challengerID uuid.UUID) (*models.Battle, error)
	History(agentID uuid.UUID, limit int) ([]*models.Battle, error)
	HeadToHead(agentID, opponentID uuid.UUID) (*models.HeadToHead, error)

	// Transitions d'état
	ActivateTx(tx *sqlx.Tx, id uuid.UUID, stateBlob string) error
	SetPendingMoveTx(tx *sqlx.Tx, id uuid.UUID, side string, moveID *string) error
	ClearPendingMoveTx(tx *sqlx.Tx, id uuid.UUID, side string) error
	ApplyTurnTx(tx *sqlx.Tx, battle *models.Battle) error
	FinishTx(tx *sqlx.Tx, battle *models.Battle) error
	Cancel(id uuid.UUID) error

	// Logs de tours
	AppendTurnTx(tx *sqlx.Tx, turn *models.BattleTurn) error
	GetTurns(battleID uuid.UUID) ([]*models.BattleTurn, error)

	// Balayages du scheduler
	FindStale(cutoff time.Time) ([]*models.Battle, error)
	FindExpiredChallenges(cutoff time.Time) ([]*models.Battle, error)
}

// BattleRepository implémente l'interface BattleRepositoryInterface
type BattleRepository struct {
	db *database.DB
}

// NewBattleRepository crée une nouvelle instance du repository battle
func NewBattleRepository(db *database.DB) BattleRepositoryInterface {
	return &BattleRepository{db: db}
}

// CreateTx crée un combat et lui alloue le prochain numéro d'affichage.
// Le compteur et l'insertion partagent la transaction: les numéros sont
// denses et monotones.
func (r *BattleRepository) CreateTx(tx *sqlx.Tx, battle *models.Battle) error {
	var number int64
	if err := tx.Get(&number, `SELECT next_number FROM battle_counter WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to read battle counter: %w", err)
	}
	if _, err := tx.Exec(`UPDATE battle_counter SET next_number = next_number + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to advance battle counter: %w", err)
	}

	battle.BattleNumber = number

	query := `
		INSERT INTO battles (
			id, battle_number, agent_a_id, agent_b_id, status, current_phase,
			turn_number, pending_move_a, pending_move_b, state_blob, winner_id,
			created_at, started_at, last_turn_at, ended_at
		) VALUES (
			:id, :battle_number, :agent_a_id, :agent_b_id, :status, :current_phase,
			:turn_number, :pending_move_a, :pending_move_b, :state_blob, :winner_id,
			:created_at, :started_at, :last_turn_at, :ended_at
		)`

	if _, err := tx.NamedExec(query, battle); err != nil {
		return fmt.Errorf("failed to create battle: %w", err)
	}

	return nil
}

// GetByID récupère un combat par son ID
func (r *BattleRepository) GetByID(id uuid.UUID) (*models.Battle, error) {
	var battle models.Battle
	err := r.db.Get(&battle, `SELECT * FROM battles WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get battle: %w", err)
	}
	return &battle, nil
}

// GetByIDTx récupère un combat dans une transaction en cours
func (r *BattleRepository) GetByIDTx(tx *sqlx.Tx, id uuid.UUID) (*models.Battle, error) {
	var battle models.Battle
	err := tx.Get(&battle, `SELECT * FROM battles WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get battle: %w", err)
	}
	return &battle, nil
}

// FindOngoingByAgent retourne le combat pending ou active d'un agent, nil sinon
func (r *BattleRepository) FindOngoingByAgent(agentID uuid.UUID) (*models.Battle, error) {
	var battle models.Battle
	err := r.db.Get(&battle, `
		SELECT * FROM battles
		WHERE (agent_a_id = ? OR agent_b_id = ?)
		  AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1`, agentID, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ongoing battle: %w", err)
	}
	return &battle, nil
}

// FindOngoingByAgentTx même recherche dans une transaction en cours (le
// matchmaker vérifie l'éligibilité des entrées dans sa transaction
// d'appariement)
func (r *BattleRepository) FindOngoingByAgentTx(tx *sqlx.Tx, agentID uuid.UUID) (*models.Battle, error) {
	var battle models.Battle
	err := tx.Get(&battle, `
		SELECT * FROM battles
		WHERE (agent_a_id = ? OR agent_b_id = ?)
		  AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1`, agentID, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ongoing battle: %w", err)
	}
	return &battle, nil
}

// FindPendingChallenge retourne le défi en attente émis par challengerID
// vers challengedID, nil sinon
func (r *BattleRepository) FindPendingChallenge(challengedID, challengerID uuid.UUID) (*models.Battle, error) {
	var battle models.Battle
	err := r.db.Get(&battle, `
		SELECT * FROM battles
		WHERE agent_a_id = ? AND agent_b_id = ?
		  AND status = 'pending' AND current_phase = 'challenge'
		ORDER BY created_at DESC
		LIMIT 1`, challengerID, challengedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending challenge: %w", err)
	}
	return &battle, nil
}

// History retourne les combats terminés d'un agent, du plus récent au plus ancien
func (r *BattleRepository) History(agentID uuid.UUID, limit int) ([]*models.Battle, error) {
	builder := sq.Select("*").
		From("battles").
		Where(sq.Or{
			sq.Eq{"agent_a_id": agentID},
			sq.Eq{"agent_b_id": agentID},
		}).
		Where(sq.Eq{"status": []string{
			string(models.BattleFinished),
			string(models.BattleForfeited),
			string(models.BattleTimeout),
		}}).
		OrderBy("ended_at DESC").
		Limit(uint64(limit))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	battles := []*models.Battle{}
	if err := r.db.Select(&battles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get battle history: %w", err)
	}

	return battles, nil
}

// HeadToHead compte les victoires mutuelles entre deux agents
func (r *BattleRepository) HeadToHead(agentID, opponentID uuid.UUID) (*models.HeadToHead, error) {
	h2h := &models.HeadToHead{}

	err := r.db.Get(&h2h.Wins, `
		SELECT COUNT(*) FROM battles
		WHERE winner_id = ?
		  AND ((agent_a_id = ? AND agent_b_id = ?) OR (agent_a_id = ? AND agent_b_id = ?))`,
		agentID, agentID, opponentID, opponentID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count head-to-head wins: %w", err)
	}

	err = r.db.Get(&h2h.Losses, `
		SELECT COUNT(*) FROM battles
		WHERE winner_id = ?
		  AND ((agent_a_id = ? AND agent_b_id = ?) OR (agent_a_id = ? AND agent_b_id = ?))`,
		opponentID, agentID, opponentID, opponentID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count head-to-head losses: %w", err)
	}

	return h2h, nil
}

// ActivateTx fait passer un défi accepté à l'état actif avec son blob initial
func (r *BattleRepository) ActivateTx(tx *sqlx.Tx, id uuid.UUID, stateBlob string) error {
	now := time.Now()
	result, err := tx.NamedExec(`
		UPDATE battles
		SET status = 'active',
		    current_phase = 'waiting',
		    state_blob = :state_blob,
		    started_at = :now,
		    last_turn_at = :now
		WHERE id = :id AND status = 'pending'`,
		map[string]interface{}{
			"id":         id,
			"state_blob": stateBlob,
			"now":        now,
		})
	if err != nil {
		return fmt.Errorf("failed to activate battle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check battle activation: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("battle is not pending")
	}

	return nil
}

// SetPendingMoveTx enregistre le move soumis par un côté
func (r *BattleRepository) SetPendingMoveTx(tx *sqlx.Tx, id uuid.UUID, side string, moveID *string) error {
	column := "pending_move_a"
	if side == models.SideB {
		column = "pending_move_b"
	}

	query := fmt.Sprintf(`UPDATE battles SET %s = ? WHERE id = ?`, column)
	if _, err := tx.Exec(query, moveID, id); err != nil {
		return fmt.Errorf("failed to set pending move: %w", err)
	}

	return nil
}

// ClearPendingMoveTx efface le move en attente d'un côté
func (r *BattleRepository) ClearPendingMoveTx(tx *sqlx.Tx, id uuid.UUID, side string) error {
	return r.SetPendingMoveTx(tx, id, side, nil)
}

// ApplyTurnTx persiste le résultat d'un tour résolu: blob d'état, numéro
// de tour, moves en attente effacés, phase de retour à waiting
func (r *BattleRepository) ApplyTurnTx(tx *sqlx.Tx, battle *models.Battle) error {
	now := time.Now()
	battle.LastTurnAt = &now

	query := `
		UPDATE battles
		SET turn_number = :turn_number,
		    pending_move_a = NULL,
		    pending_move_b = NULL,
		    state_blob = :state_blob,
		    current_phase = 'waiting',
		    last_turn_at = :last_turn_at
		WHERE id = :id`

	if _, err := tx.NamedExec(query, battle); err != nil {
		return fmt.Errorf("failed to apply turn: %w", err)
	}

	return nil
}

// FinishTx fait passer un combat à un état terminal avec son vainqueur
func (r *BattleRepository) FinishTx(tx *sqlx.Tx, battle *models.Battle) error {
	now := time.Now()
	battle.EndedAt = &now
	battle.CurrentPhase = models.PhaseFinished

	query := `
		UPDATE battles
		SET status = :status,
		    current_phase = :current_phase,
		    turn_number = :turn_number,
		    pending_move_a = NULL,
		    pending_move_b = NULL,
		    state_blob = :state_blob,
		    winner_id = :winner_id,
		    ended_at = :ended_at
		WHERE id = :id`

	if _, err := tx.NamedExec(query, battle); err != nil {
		return fmt.Errorf("failed to finish battle: %w", err)
	}

	return nil
}

// Cancel annule un défi jamais accepté
func (r *BattleRepository) Cancel(id uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE battles
		SET status = 'cancelled', current_phase = 'finished', ended_at = ?
		WHERE id = ? AND status = 'pending'`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to cancel battle: %w", err)
	}
	return nil
}

// AppendTurnTx insère un log de tour (append-only)
func (r *BattleRepository) AppendTurnTx(tx *sqlx.Tx, turn *models.BattleTurn) error {
	query := `
		INSERT INTO battle_turns (
			id, battle_id, turn_number, move_a, move_b, events, hp_a, hp_b, created_at
		) VALUES (
			:id, :battle_id, :turn_number, :move_a, :move_b, :events, :hp_a, :hp_b, :created_at
		)`

	if _, err := tx.NamedExec(query, turn); err != nil {
		return fmt.Errorf("failed to append battle turn: %w", err)
	}

	return nil
}

// GetTurns retourne les logs de tours d'un combat dans l'ordre
func (r *BattleRepository) GetTurns(battleID uuid.UUID) ([]*models.BattleTurn, error) {
	turns := []*models.BattleTurn{}
	err := r.db.Select(&turns, `
		SELECT * FROM battle_turns
		WHERE battle_id = ?
		ORDER BY turn_number ASC`, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get battle turns: %w", err)
	}
	return turns, nil
}

// FindStale retourne les combats actifs en attente de move dont le dernier
// tour précède le cutoff; un combat dont les deux moves sont déjà soumis
// n'est jamais balayé
func (r *BattleRepository) FindStale(cutoff time.Time) ([]*models.Battle, error) {
	battles := []*models.Battle{}
	err := r.db.Select(&battles, `
		SELECT * FROM battles
		WHERE status = 'active' AND current_phase = 'waiting'
		  AND last_turn_at < ?
		  AND (pending_move_a IS NULL OR pending_move_b IS NULL)
		ORDER BY last_turn_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale battles: %w", err)
	}
	return battles, nil
}

// FindExpiredChallenges retourne les défis jamais acceptés avant le cutoff
func (r *BattleRepository) FindExpiredChallenges(cutoff time.Time) ([]*models.Battle, error) {
	battles := []*models.Battle{}
	err := r.db.Select(&battles, `
		SELECT * FROM battles
		WHERE status = 'pending' AND current_phase = 'challenge' AND created_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired challenges: %w", err)
	}
	return battles, nil
}
