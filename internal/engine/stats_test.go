package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/catalog"
	"arena/internal/models"
)

func TestMaxHPMonotone(t *testing.T) {
	assert.Equal(t, 85, MaxHP(20, 1))

	// Monotone en base et en niveau
	assert.Greater(t, MaxHP(25, 1), MaxHP(20, 1))
	assert.Greater(t, MaxHP(20, 10), MaxHP(20, 1))
	assert.Positive(t, MaxHP(1, 1))
}

func TestEffectiveStatNature(t *testing.T) {
	neutral := EffectiveStat(20, 10, 1.0)
	boosted := EffectiveStat(20, 10, 1.1)
	reduced := EffectiveStat(20, 10, 0.9)

	assert.Equal(t, 55, neutral) // floor(50*1.0)+5
	assert.Greater(t, boosted, neutral)
	assert.Less(t, reduced, neutral)
}

func TestStagedStat(t *testing.T) {
	assert.Equal(t, 100, StagedStat(100, 0))
	assert.Equal(t, 400, StagedStat(100, 6))
	assert.Equal(t, 25, StagedStat(100, -6))
	assert.Equal(t, 150, StagedStat(100, 1))

	// Les stages hors bornes sont clampés
	assert.Equal(t, 400, StagedStat(100, 9))
	assert.Equal(t, 25, StagedStat(100, -9))
}

func TestEffectiveSpeedParalysisMalus(t *testing.T) {
	side := &models.SideState{
		Status:         models.StatusNone,
		EffectiveStats: models.Stats{Speed: 100},
	}
	assert.Equal(t, 100, EffectiveSpeed(side))

	side.Status = models.StatusParalysis
	assert.Equal(t, 50, EffectiveSpeed(side))
}

func testAgent(name, elementalType, ability string) *models.Agent {
	return &models.Agent{
		ID:            uuid.New(),
		Name:          name,
		ElementalType: elementalType,
		BaseHP:        20,
		BaseAttack:    20,
		BaseDefense:   15,
		BaseSpAtk:     20,
		BaseSpDef:     15,
		BaseSpeed:     10,
		Nature:        "balanced",
		Ability:       ability,
		Move1:         "surf",
		Move2:         "aqua_jet",
		Move3:         "recover",
		Move4:         "focus_strike",
		Level:         1,
	}
}

func TestNewBattleState(t *testing.T) {
	agentA := testAgent("crusher", catalog.TypeWater, "Torrent")
	agentB := testAgent("pincer", catalog.TypeFire, "Blaze")

	state := NewBattleState(agentA, agentB)

	assert.Equal(t, 0, state.TurnNumber)
	assert.Equal(t, agentA.ID, state.SideA.AgentID)
	assert.Equal(t, agentB.ID, state.SideB.AgentID)

	// HP pleins au départ
	assert.Equal(t, state.SideA.MaxHP, state.SideA.CurrentHP)
	assert.Equal(t, MaxHP(20, 1), state.SideA.MaxHP)

	// Quatre moves avec PP pleins
	require.Len(t, state.SideA.Moves, 4)
	for _, m := range state.SideA.Moves {
		assert.Equal(t, m.PP, m.CurrentPP)
	}

	// Matchup de types mis en cache: eau -> feu = 2.0
	assert.Equal(t, 2.0, state.MatchupAtoB)
	assert.Equal(t, 0.5, state.MatchupBtoA)
}

func TestBattleStartAbilities(t *testing.T) {
	plain := testAgent("plain", catalog.TypeRock, "Sturdy")
	bulwark := testAgent("wall", catalog.TypeRock, "Bulwark")
	berserker := testAgent("rage", catalog.TypeFighting, "Berserker")

	base := NewSideState(plain)

	withBulwark := NewBattleState(bulwark, plain)
	assert.Equal(t, int(float64(base.EffectiveStats.Defense)*1.1), withBulwark.SideA.EffectiveStats.Defense)

	withBerserker := NewBattleState(berserker, plain)
	assert.Equal(t, int(float64(base.EffectiveStats.Attack)*1.1), withBerserker.SideA.EffectiveStats.Attack)

	// Les autres capacités ne touchent pas les stats initiales
	assert.Equal(t, base.EffectiveStats, withBulwark.SideB.EffectiveStats)
}
