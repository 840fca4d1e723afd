package models

import (
	"encoding/json"
	"fmt"
)

// EventKind taxonomie des événements de tour, stable sur le wire
type EventKind string

const (
	EventUseMove          EventKind = "use_move"
	EventFlinch           EventKind = "flinch"
	EventStatus           EventKind = "status"
	EventDodge            EventKind = "dodge"
	EventImmune           EventKind = "immune"
	EventMiss             EventKind = "miss"
	EventOHKO             EventKind = "ohko"
	EventDamage           EventKind = "damage"
	EventRecoil           EventKind = "recoil"
	EventDrain            EventKind = "drain"
	EventHeal             EventKind = "heal"
	EventWish             EventKind = "wish"
	EventLeechSeed        EventKind = "leech_seed"
	EventStatBoost        EventKind = "stat_boost"
	EventStatDrop         EventKind = "stat_drop"
	EventStatusInflict    EventKind = "status_inflict"
	EventBurnDamage       EventKind = "burn_damage"
	EventPoisonDamage     EventKind = "poison_damage"
	EventCurseDamage      EventKind = "curse_damage"
	EventWishHeal         EventKind = "wish_heal"
	EventAbility          EventKind = "ability"
	EventConfusionSelfHit EventKind = "confusion_self_hit"
	EventBattleEnd        EventKind = "battle_end"
	EventTimeout          EventKind = "timeout"
	EventFocusFail        EventKind = "focus_fail"
)

// TurnEvent un événement ordonné du log de tour
type TurnEvent struct {
	Kind          EventKind `json:"kind"`
	Side          string    `json:"side,omitempty"`   // côté acteur (a/b)
	Target        string    `json:"target,omitempty"` // côté cible quand différent
	Move          string    `json:"move,omitempty"`
	Damage        int       `json:"damage,omitempty"`
	Amount        int       `json:"amount,omitempty"`
	Crit          bool      `json:"crit,omitempty"`
	Effectiveness float64   `json:"effectiveness,omitempty"`
	Status        string    `json:"status,omitempty"`
	Stat          string    `json:"stat,omitempty"`
	Stages        int       `json:"stages,omitempty"`
	Ability       string    `json:"ability,omitempty"`
	Winner        string    `json:"winner,omitempty"` // côté vainqueur (battle_end)
	Reason        string    `json:"reason,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// MarshalEvents sérialise une séquence d'événements pour le log de tour
func MarshalEvents(events []TurnEvent) (string, error) {
	raw, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to marshal turn events: %w", err)
	}
	return string(raw), nil
}

// UnmarshalEvents désérialise la séquence d'événements d'un log de tour
func UnmarshalEvents(blob string) ([]TurnEvent, error) {
	var events []TurnEvent
	if err := json.Unmarshal([]byte(blob), &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turn events: %w", err)
	}
	return events, nil
}
