package models

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse forme d'erreur sur le wire
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// AgentPublicView vue publique d'un agent
type AgentPublicView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ElementalType string    `json:"elementalType"`
	Level         int       `json:"level"`
	Elo           int       `json:"elo"`
	Wins          int       `json:"wins"`
	Fights        int       `json:"fights"`
	WinStreak     int       `json:"winStreak"`
	Status        string    `json:"status"`
}

// PublicView construit la vue publique d'un agent
func (a *Agent) PublicView() AgentPublicView {
	return AgentPublicView{
		ID:            a.ID,
		Name:          a.Name,
		ElementalType: a.ElementalType,
		Level:         a.Level,
		Elo:           a.Elo,
		Wins:          a.Wins,
		Fights:        a.Fights,
		WinStreak:     a.WinStreak,
		Status:        string(a.Status),
	}
}

// RegisterAgentResponse réponse de création; le credential en clair
// n'est retourné qu'ici, une seule fois
type RegisterAgentResponse struct {
	Agent  AgentPublicView `json:"agent"`
	APIKey string          `json:"apiKey"`
}

// MoveView vue d'un move avec PP restants
type MoveView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Power     int    `json:"power"`
	Accuracy  int    `json:"accuracy"`
	CurrentPP int    `json:"currentPP"`
	PP        int    `json:"pp"`
}

// OwnSideView vue complète du propre côté d'un participant
type OwnSideView struct {
	Name           string     `json:"name"`
	ElementalType  string     `json:"elementalType"`
	Ability        string     `json:"ability"`
	Level          int        `json:"level"`
	CurrentHP      int        `json:"currentHP"`
	MaxHP          int        `json:"maxHP"`
	Status         string     `json:"status"`
	Stages         StatStages `json:"stages"`
	EffectiveStats Stats      `json:"effectiveStats"`
	Moves          []MoveView `json:"moves"`
}

// OpponentSideView état public de l'adversaire
type OpponentSideView struct {
	Name          string `json:"name"`
	ElementalType string `json:"elementalType"`
	Level         int    `json:"level"`
	CurrentHP     int    `json:"currentHP"`
	MaxHP         int    `json:"maxHP"`
	Status        string `json:"status"`
}

// OwnView construit la vue propriétaire d'un côté
func (s *SideState) OwnView() OwnSideView {
	moves := make([]MoveView, 0, len(s.Moves))
	for _, m := range s.Moves {
		moves = append(moves, MoveView{
			ID:        m.ID,
			Name:      m.Name,
			Type:      m.Type,
			Category:  string(m.Category),
			Power:     m.Power,
			Accuracy:  m.Accuracy,
			CurrentPP: m.CurrentPP,
			PP:        m.PP,
		})
	}
	return OwnSideView{
		Name:           s.Name,
		ElementalType:  s.Type,
		Ability:        s.Ability,
		Level:          s.Level,
		CurrentHP:      s.CurrentHP,
		MaxHP:          s.MaxHP,
		Status:         string(s.Status),
		Stages:         s.Stages,
		EffectiveStats: s.EffectiveStats,
		Moves:          moves,
	}
}

// OpponentView construit la vue publique d'un côté
func (s *SideState) OpponentView() OpponentSideView {
	return OpponentSideView{
		Name:          s.Name,
		ElementalType: s.Type,
		Level:         s.Level,
		CurrentHP:     s.CurrentHP,
		MaxHP:         s.MaxHP,
		Status:        string(s.Status),
	}
}

// BattleView snapshot d'un combat; You est renseigné pour un participant
type BattleView struct {
	ID            uuid.UUID         `json:"id"`
	BattleNumber  int64             `json:"battleNumber"`
	Status        string            `json:"status"`
	CurrentPhase  string            `json:"currentPhase"`
	TurnNumber    int               `json:"turnNumber"`
	AgentA        AgentPublicView   `json:"agentA"`
	AgentB        AgentPublicView   `json:"agentB"`
	WinnerID      *uuid.UUID        `json:"winnerId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	EndedAt       *time.Time        `json:"endedAt,omitempty"`
	YourSide      string            `json:"yourSide,omitempty"`
	You           *OwnSideView      `json:"you,omitempty"`
	Opponent      *OpponentSideView `json:"opponent,omitempty"`
	MoveSubmitted bool              `json:"moveSubmitted,omitempty"`
}

// AcceptChallengeResponse réponse d'acceptation d'un défi
type AcceptChallengeResponse struct {
	Status      string     `json:"status"`
	BattleID    uuid.UUID  `json:"battleId"`
	BattleState BattleView `json:"battleState"`
}

// TurnLogView un tour du log, événements désérialisés
type TurnLogView struct {
	TurnNumber int         `json:"turnNumber"`
	MoveA      *string     `json:"moveA"`
	MoveB      *string     `json:"moveB"`
	Events     []TurnEvent `json:"events"`
	HPA        int         `json:"hpA"`
	HPB        int         `json:"hpB"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// LeaderboardEntry ligne du classement ELO
type LeaderboardEntry struct {
	Rank  int             `json:"rank"`
	Agent AgentPublicView `json:"agent"`
}

// Noms des événements webhook
const (
	WebhookBattleStart     = "battle_start"
	WebhookBattleTurn      = "battle_turn"
	WebhookBattleEnd       = "battle_end"
	WebhookBattleChallenge = "battle_challenge"
	WebhookPing            = "ping"
)

// HeadToHead historique face à cet adversaire
type HeadToHead struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// BattleEndContext bloc de contexte enrichi joint au battle_end
type BattleEndContext struct {
	Won        bool       `json:"won"`
	Reason     string     `json:"reason"`
	CloseMatch bool       `json:"closeMatch"`
	NewElo     int        `json:"newElo"`
	EloDelta   int        `json:"eloDelta"`
	Rank       int        `json:"rank"`
	HeadToHead HeadToHead `json:"headToHead"`
	Revenge    bool       `json:"revenge"`
	Upset      bool       `json:"upset"`
	Milestones []string   `json:"milestones,omitempty"`
}

// WebhookPayload corps POSTé vers l'endpoint d'un agent
type WebhookPayload struct {
	Event        string            `json:"event"`
	BattleID     uuid.UUID         `json:"battleId"`
	BattleNumber int64             `json:"battleNumber,omitempty"`
	TurnNumber   int               `json:"turnNumber,omitempty"`
	YourSide     string            `json:"yourSide,omitempty"`
	YourLobster  *OwnSideView      `json:"yourLobster,omitempty"`
	Opponent     *OpponentSideView `json:"opponent,omitempty"`
	Events       []TurnEvent       `json:"events,omitempty"`
	TypeMatchup  float64           `json:"typeMatchup,omitempty"`
	Challenger   *AgentPublicView  `json:"challenger,omitempty"`
	Context      *BattleEndContext `json:"context,omitempty"`
	SocialToken  string            `json:"socialToken,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}
