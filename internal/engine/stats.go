package engine

import (
	"math"

	"arena/internal/catalog"
	"arena/internal/models"
)

// MaxHP calcule les HP max pour une stat de base et un niveau.
// Monotone en base et en level, même formule pour tous les types.
func MaxHP(base, level int) int {
	return base*3 + level*5 + 20
}

// EffectiveStat calcule une stat effective entière pour une stat de base,
// un niveau et un multiplicateur de nature.
func EffectiveStat(base, level int, natureMult float64) int {
	return int(math.Floor(float64(base*2+level)*natureMult)) + 5
}

// StagedStat applique le facteur de stage (table fixe à 13 entrées)
func StagedStat(value, stage int) int {
	return int(math.Floor(float64(value) * catalog.StageMultiplier(stage)))
}

// scaledPower met la puissance d'un move à l'échelle du niveau
func scaledPower(power, level int) float64 {
	return float64(power) * (1.0 + 0.02*float64(level))
}

// EffectiveSpeed vitesse effective d'un côté: stage puis malus paralysie
func EffectiveSpeed(s *models.SideState) int {
	speed := StagedStat(s.EffectiveStats.Speed, s.Stages.Speed)
	if s.Status == models.StatusParalysis {
		speed = int(float64(speed) * 0.5)
	}
	return speed
}

// NewSideState construit l'état de combat initial d'un agent
func NewSideState(agent *models.Agent) *models.SideState {
	nature, _ := catalog.GetNature(agent.Nature)

	stats := models.Stats{
		Attack:  EffectiveStat(agent.BaseAttack, agent.Level, catalog.NatureMultiplier(nature, catalog.StatAttack)),
		Defense: EffectiveStat(agent.BaseDefense, agent.Level, catalog.NatureMultiplier(nature, catalog.StatDefense)),
		SpAtk:   EffectiveStat(agent.BaseSpAtk, agent.Level, catalog.NatureMultiplier(nature, catalog.StatSpAtk)),
		SpDef:   EffectiveStat(agent.BaseSpDef, agent.Level, catalog.NatureMultiplier(nature, catalog.StatSpDef)),
		Speed:   EffectiveStat(agent.BaseSpeed, agent.Level, catalog.NatureMultiplier(nature, catalog.StatSpeed)),
	}

	base := models.Stats{
		Attack:  agent.BaseAttack,
		Defense: agent.BaseDefense,
		SpAtk:   agent.BaseSpAtk,
		SpDef:   agent.BaseSpDef,
		Speed:   agent.BaseSpeed,
	}

	maxHP := MaxHP(agent.BaseHP, agent.Level)

	moves := make([]models.MoveState, 0, 4)
	for _, id := range agent.Moves() {
		def, ok := catalog.GetMove(id)
		if !ok {
			continue
		}
		moves = append(moves, models.MoveState{
			ID:        def.ID,
			Name:      def.Name,
			Type:      def.Type,
			Category:  def.Category,
			Power:     def.Power,
			Accuracy:  def.Accuracy,
			Priority:  def.Priority,
			CurrentPP: def.PP,
			PP:        def.PP,
			Effect:    def.Effect,
		})
	}

	return &models.SideState{
		AgentID:        agent.ID,
		Name:           agent.Name,
		Type:           agent.ElementalType,
		Ability:        agent.Ability,
		Level:          agent.Level,
		MaxHP:          maxHP,
		CurrentHP:      maxHP,
		Status:         models.StatusNone,
		Moves:          moves,
		EffectiveStats: stats,
		BaseStats:      base,
	}
}

// NewBattleState construit le blob d'état initial d'un combat et applique
// les capacités battle_start (seule mutation autorisée des stats effectives)
func NewBattleState(agentA, agentB *models.Agent) *models.BattleState {
	state := &models.BattleState{
		TurnNumber:  0,
		SideA:       *NewSideState(agentA),
		SideB:       *NewSideState(agentB),
		MatchupAtoB: catalog.TypeEffectiveness(agentA.ElementalType, agentB.ElementalType),
		MatchupBtoA: catalog.TypeEffectiveness(agentB.ElementalType, agentA.ElementalType),
	}

	applyBattleStartAbility(&state.SideA)
	applyBattleStartAbility(&state.SideB)

	return state
}

// applyBattleStartAbility applique les capacités à déclenchement battle_start
func applyBattleStartAbility(s *models.SideState) {
	switch s.Ability {
	case "Bulwark":
		s.EffectiveStats.Defense = int(float64(s.EffectiveStats.Defense) * 1.1)
	case "Berserker":
		s.EffectiveStats.Attack = int(float64(s.EffectiveStats.Attack) * 1.1)
	}
}
