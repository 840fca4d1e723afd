package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"arena/internal/catalog"
)

// StatusKind statut courant d'un côté
type StatusKind string

const (
	StatusNone      StatusKind = "none"
	StatusBurned    StatusKind = "burned"
	StatusParalysis StatusKind = "paralysis"
	StatusPoison    StatusKind = "poison"
	StatusFreeze    StatusKind = "freeze"
	StatusSleep     StatusKind = "sleep"
	StatusConfusion StatusKind = "confusion"
)

// Stats bloc de stats effectives ou de base (hors HP)
type Stats struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	SpAtk   int `json:"sp_atk"`
	SpDef   int `json:"sp_def"`
	Speed   int `json:"speed"`
}

// Get retourne la valeur d'une stat par nom
func (s Stats) Get(stat string) int {
	switch stat {
	case catalog.StatAttack:
		return s.Attack
	case catalog.StatDefense:
		return s.Defense
	case catalog.StatSpAtk:
		return s.SpAtk
	case catalog.StatSpDef:
		return s.SpDef
	case catalog.StatSpeed:
		return s.Speed
	default:
		return 0
	}
}

// Set modifie la valeur d'une stat par nom
func (s *Stats) Set(stat string, value int) {
	switch stat {
	case catalog.StatAttack:
		s.Attack = value
	case catalog.StatDefense:
		s.Defense = value
	case catalog.StatSpAtk:
		s.SpAtk = value
	case catalog.StatSpDef:
		s.SpDef = value
	case catalog.StatSpeed:
		s.Speed = value
	}
}

// StatStages stages de stats, chacun clampé dans [-6, 6]
type StatStages struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	SpAtk   int `json:"sp_atk"`
	SpDef   int `json:"sp_def"`
	Speed   int `json:"speed"`
}

// Get retourne le stage d'une stat par nom
func (s StatStages) Get(stat string) int {
	switch stat {
	case catalog.StatAttack:
		return s.Attack
	case catalog.StatDefense:
		return s.Defense
	case catalog.StatSpAtk:
		return s.SpAtk
	case catalog.StatSpDef:
		return s.SpDef
	case catalog.StatSpeed:
		return s.Speed
	default:
		return 0
	}
}

// Apply ajoute delta au stage d'une stat, avec clamp
func (s *StatStages) Apply(stat string, delta int) int {
	v := catalog.ClampStage(s.Get(stat) + delta)
	switch stat {
	case catalog.StatAttack:
		s.Attack = v
	case catalog.StatDefense:
		s.Defense = v
	case catalog.StatSpAtk:
		s.SpAtk = v
	case catalog.StatSpDef:
		s.SpDef = v
	case catalog.StatSpeed:
		s.Speed = v
	}
	return v
}

// Reset remet tous les stages à zéro
func (s *StatStages) Reset() {
	*s = StatStages{}
}

// MoveState état runtime d'un move (PP restants)
type MoveState struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Type      string               `json:"type"`
	Category  catalog.MoveCategory `json:"category"`
	Power     int                  `json:"power"`
	Accuracy  int                  `json:"accuracy"`
	Priority  int                  `json:"priority"`
	CurrentPP int                  `json:"currentPP"`
	PP        int                  `json:"pp"`
	Effect    *catalog.MoveEffect  `json:"effect,omitempty"`
}

// SideState état mutable d'un côté du combat
type SideState struct {
	AgentID uuid.UUID `json:"agentId"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Ability string    `json:"ability"`
	Level   int       `json:"level"`

	MaxHP     int `json:"maxHP"`
	CurrentHP int `json:"currentHP"`

	Status         StatusKind `json:"status"`
	FreezeTurns    int        `json:"_freezeTurns"`
	SleepTurns     int        `json:"_sleepTurns"`
	ConfusionTurns int        `json:"_confusionTurns"`
	WokeFromDamage bool       `json:"_wokeFromDamage"`

	Stages StatStages `json:"stages"`

	Moves []MoveState `json:"moves"`

	// Snapshot des stats au début du combat; seules les capacités
	// battle_start peuvent les modifier ensuite
	EffectiveStats Stats `json:"effectiveStats"`
	BaseStats      Stats `json:"baseStats"`

	SturdyUsed         bool `json:"sturdyUsed"`
	WishPending        bool `json:"wishPending"`
	WishTurn           int  `json:"wishTurn"`
	LeechSeeded        bool `json:"leechSeeded"`
	Cursed             bool `json:"cursed"`
	Flinched           bool `json:"flinched"`
	TookDamageThisTurn bool `json:"tookDamageThisTurn"`

	Timeouts int `json:"_timeouts"`
}

// MoveByID retourne le MoveState correspondant à un id, nil sinon
func (s *SideState) MoveByID(moveID string) *MoveState {
	for i := range s.Moves {
		if s.Moves[i].ID == moveID {
			return &s.Moves[i]
		}
	}
	return nil
}

// IsFainted indique si le côté est KO
func (s *SideState) IsFainted() bool {
	return s.CurrentHP <= 0
}

// AtFullHP indique si le côté est à pleins HP
func (s *SideState) AtFullHP() bool {
	return s.CurrentHP >= s.MaxHP
}

// ApplyDamage retire des HP en respectant la borne basse
func (s *SideState) ApplyDamage(amount int) {
	s.CurrentHP -= amount
	if s.CurrentHP < 0 {
		s.CurrentHP = 0
	}
	if amount > 0 {
		s.TookDamageThisTurn = true
	}
}

// Heal rend des HP en respectant la borne haute
func (s *SideState) Heal(amount int) int {
	before := s.CurrentHP
	s.CurrentHP += amount
	if s.CurrentHP > s.MaxHP {
		s.CurrentHP = s.MaxHP
	}
	return s.CurrentHP - before
}

// BattleState blob sérialisé porté par la ligne battle
type BattleState struct {
	TurnNumber int       `json:"turnNumber"`
	FirstSide  string    `json:"firstSide"` // départage des KO mutuels
	SideA      SideState `json:"sideA"`
	SideB      SideState `json:"sideB"`

	// Matchup de types mis en cache à la création
	MatchupAtoB float64 `json:"matchupAtoB"`
	MatchupBtoA float64 `json:"matchupBtoA"`
}

// Side retourne l'état d'un côté par clé (a/b)
func (bs *BattleState) Side(side string) *SideState {
	if side == SideA {
		return &bs.SideA
	}
	return &bs.SideB
}

// Opposite retourne la clé du côté opposé
func Opposite(side string) string {
	if side == SideA {
		return SideB
	}
	return SideA
}

// MarshalState sérialise le blob d'état
func MarshalState(state *BattleState) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to marshal battle state: %w", err)
	}
	return string(raw), nil
}

// UnmarshalState désérialise le blob d'état
func UnmarshalState(blob string) (*BattleState, error) {
	var state BattleState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battle state: %w", err)
	}
	return &state, nil
}
