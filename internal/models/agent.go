package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentStatus cycle de vie d'un agent
type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
	AgentBanned   AgentStatus = "banned"
	AgentSystem   AgentStatus = "system"
)

// PlayMode mode de jeu d'un agent
type PlayMode string

const (
	PlayModeAuto   PlayMode = "auto"
	PlayModeManual PlayMode = "manual"
)

// Agent participant autonome authentifié
type Agent struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	APIKeyHash    string      `json:"-" db:"api_key_hash"`
	OwnerID       *string     `json:"ownerId,omitempty" db:"owner_id"`
	WebhookURL    string      `json:"webhookUrl,omitempty" db:"webhook_url"`
	WebhookSecret string      `json:"-" db:"webhook_secret"`
	ElementalType string      `json:"elementalType" db:"elemental_type"`
	BaseHP        int         `json:"baseHp" db:"base_hp"`
	BaseAttack    int         `json:"baseAttack" db:"base_attack"`
	BaseDefense   int         `json:"baseDefense" db:"base_defense"`
	BaseSpAtk     int         `json:"baseSpAtk" db:"base_sp_atk"`
	BaseSpDef     int         `json:"baseSpDef" db:"base_sp_def"`
	BaseSpeed     int         `json:"baseSpeed" db:"base_speed"`
	Nature        string      `json:"nature" db:"nature"`
	Ability       string      `json:"ability" db:"ability"`
	Move1         string      `json:"-" db:"move_1"`
	Move2         string      `json:"-" db:"move_2"`
	Move3         string      `json:"-" db:"move_3"`
	Move4         string      `json:"-" db:"move_4"`
	Level         int         `json:"level" db:"level"`
	XP            int         `json:"xp" db:"xp"`
	Elo           int         `json:"elo" db:"elo"`
	Wins          int         `json:"wins" db:"wins"`
	Fights        int         `json:"fights" db:"fights"`
	WinStreak     int         `json:"winStreak" db:"win_streak"`
	Status        AgentStatus `json:"status" db:"status"`
	PlayMode      PlayMode    `json:"playMode" db:"play_mode"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
}

// Moves retourne les quatre moves de l'agent dans l'ordre des slots
func (a *Agent) Moves() [4]string {
	return [4]string{a.Move1, a.Move2, a.Move3, a.Move4}
}

// HasMove indique si l'agent connaît le move
func (a *Agent) HasMove(moveID string) bool {
	for _, m := range a.Moves() {
		if m == moveID {
			return true
		}
	}
	return false
}

// IsActive indique si l'agent peut combattre
func (a *Agent) IsActive() bool {
	return a.Status == AgentActive || a.Status == AgentSystem
}

// QueueEntry entrée dans la file de matchmaking
type QueueEntry struct {
	AgentID  uuid.UUID `json:"agentId" db:"agent_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// QueuedAgent entrée de file jointe aux champs de rating de l'agent
type QueuedAgent struct {
	AgentID  uuid.UUID `json:"agentId" db:"agent_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
	Elo      int       `json:"elo" db:"elo"`
	Level    int       `json:"level" db:"level"`
}

// SocialToken token one-shot émis en fin de combat pour le collaborateur social
type SocialToken struct {
	Token     string    `json:"token" db:"token"`
	AgentID   uuid.UUID `json:"agentId" db:"agent_id"`
	BattleID  uuid.UUID `json:"battleId" db:"battle_id"`
	Consumed  bool      `json:"consumed" db:"consumed"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
