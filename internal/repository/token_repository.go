package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"arena/internal/database"
	"arena/internal/models"
)

// TokenRepositoryInterface définit les méthodes du repository de tokens sociaux
type TokenRepositoryInterface interface {
	CreateTx(tx *sqlx.Tx, token *models.SocialToken) error
	Consume(token string) (*models.SocialToken, error)
	DeleteExpired(cutoff time.Time) (int64, error)
}

// TokenRepository implémente l'interface TokenRepositoryInterface
type TokenRepository struct {
	db *database.DB
}

// NewTokenRepository crée une nouvelle instance du repository de tokens
func NewTokenRepository(db *database.DB) TokenRepositoryInterface {
	return &TokenRepository{db: db}
}

// CreateTx émet un token one-shot dans la transaction de fin de combat
func (r *TokenRepository) CreateTx(tx *sqlx.Tx, token *models.SocialToken) error {
	query := `
		INSERT INTO social_tokens (token, agent_id, battle_id, consumed, expires_at, created_at)
		VALUES (:token, :agent_id, :battle_id, :consumed, :expires_at, :created_at)`

	if _, err := tx.NamedExec(query, token); err != nil {
		return fmt.Errorf("failed to create social token: %w", err)
	}

	return nil
}

// Consume marque un token comme consommé et le retourne; nil si le token
// est inconnu, expiré ou déjà consommé
func (r *TokenRepository) Consume(token string) (*models.SocialToken, error) {
	var st models.SocialToken
	err := r.db.Get(&st, `
		SELECT * FROM social_tokens
		WHERE token = ? AND consumed = 0 AND expires_at > ?`, token, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get social token: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE social_tokens SET consumed = 1 WHERE token = ? AND consumed = 0`, token)
	if err != nil {
		return nil, fmt.Errorf("failed to consume social token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check token consumption: %w", err)
	}
	if rows == 0 {
		// Course avec un autre consommateur
		return nil, nil
	}

	st.Consumed = true
	return &st, nil
}

// DeleteExpired purge les tokens expirés (balayage du scheduler)
func (r *TokenRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM social_tokens WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tokens: %w", err)
	}

	return rows, nil
}
