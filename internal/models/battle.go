package models

import (
	"time"

	"github.com/google/uuid"
)

// BattleStatus statut persistant d'un combat
type BattleStatus string

const (
	BattlePending   BattleStatus = "pending"
	BattleActive    BattleStatus = "active"
	BattleFinished  BattleStatus = "finished"
	BattleForfeited BattleStatus = "forfeited"
	BattleTimeout   BattleStatus = "timeout"
	BattleCancelled BattleStatus = "cancelled"
)

// BattlePhase phase courante d'un combat
type BattlePhase string

const (
	PhaseChallenge BattlePhase = "challenge"
	PhaseWaiting   BattlePhase = "waiting"
	PhaseResolving BattlePhase = "resolving"
	PhaseFinished  BattlePhase = "finished"
)

// Côtés d'un combat
const (
	SideA = "a"
	SideB = "b"
)

// Battle machine à états persistante d'un duel
type Battle struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	BattleNumber int64        `json:"battleNumber" db:"battle_number"`
	AgentAID     uuid.UUID    `json:"agentAId" db:"agent_a_id"`
	AgentBID     uuid.UUID    `json:"agentBId" db:"agent_b_id"`
	Status       BattleStatus `json:"status" db:"status"`
	CurrentPhase BattlePhase  `json:"currentPhase" db:"current_phase"`
	TurnNumber   int          `json:"turnNumber" db:"turn_number"`
	PendingMoveA *string      `json:"-" db:"pending_move_a"`
	PendingMoveB *string      `json:"-" db:"pending_move_b"`
	StateBlob    string       `json:"-" db:"state_blob"`
	WinnerID     *uuid.UUID   `json:"winnerId,omitempty" db:"winner_id"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	StartedAt    *time.Time   `json:"startedAt,omitempty" db:"started_at"`
	LastTurnAt   *time.Time   `json:"lastTurnAt,omitempty" db:"last_turn_at"`
	EndedAt      *time.Time   `json:"endedAt,omitempty" db:"ended_at"`
}

// IsTerminal indique si le combat a atteint un état final
func (b *Battle) IsTerminal() bool {
	switch b.Status {
	case BattleFinished, BattleForfeited, BattleTimeout, BattleCancelled:
		return true
	default:
		return false
	}
}

// SideOf retourne le côté (a/b) d'un agent dans ce combat, "" sinon
func (b *Battle) SideOf(agentID uuid.UUID) string {
	switch agentID {
	case b.AgentAID:
		return SideA
	case b.AgentBID:
		return SideB
	default:
		return ""
	}
}

// OpponentOf retourne l'id de l'adversaire d'un participant
func (b *Battle) OpponentOf(agentID uuid.UUID) uuid.UUID {
	if agentID == b.AgentAID {
		return b.AgentBID
	}
	return b.AgentAID
}

// BattleTurn log de tour persistant (append-only)
type BattleTurn struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BattleID   uuid.UUID `json:"battleId" db:"battle_id"`
	TurnNumber int       `json:"turnNumber" db:"turn_number"`
	MoveA      *string   `json:"moveA" db:"move_a"`
	MoveB      *string   `json:"moveB" db:"move_b"`
	Events     string    `json:"-" db:"events"`
	HPA        int       `json:"hpA" db:"hp_a"`
	HPB        int       `json:"hpB" db:"hp_b"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
