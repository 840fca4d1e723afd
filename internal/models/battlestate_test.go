package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/catalog"
)

func TestStatStagesApplyClamps(t *testing.T) {
	var stages StatStages

	assert.Equal(t, 2, stages.Apply(catalog.StatAttack, 2))
	assert.Equal(t, 6, stages.Apply(catalog.StatAttack, 10))
	assert.Equal(t, -6, stages.Apply(catalog.StatSpeed, -8))

	stages.Reset()
	assert.Equal(t, StatStages{}, stages)
}

func TestSideStateDamageAndHeal(t *testing.T) {
	side := &SideState{MaxHP: 100, CurrentHP: 100}

	side.ApplyDamage(30)
	assert.Equal(t, 70, side.CurrentHP)
	assert.True(t, side.TookDamageThisTurn)

	// Les HP ne descendent pas sous zéro
	side.ApplyDamage(500)
	assert.Equal(t, 0, side.CurrentHP)
	assert.True(t, side.IsFainted())

	// Le soin est borné par les HP max et retourne le soin effectif
	side.CurrentHP = 90
	assert.Equal(t, 10, side.Heal(50))
	assert.Equal(t, 100, side.CurrentHP)
	assert.True(t, side.AtFullHP())
}

func TestBattleSides(t *testing.T) {
	agentA := uuid.New()
	agentB := uuid.New()
	battle := &Battle{AgentAID: agentA, AgentBID: agentB}

	assert.Equal(t, SideA, battle.SideOf(agentA))
	assert.Equal(t, SideB, battle.SideOf(agentB))
	assert.Empty(t, battle.SideOf(uuid.New()))

	assert.Equal(t, agentB, battle.OpponentOf(agentA))
	assert.Equal(t, agentA, battle.OpponentOf(agentB))

	assert.Equal(t, SideB, Opposite(SideA))
	assert.Equal(t, SideA, Opposite(SideB))
}

func TestBattleIsTerminal(t *testing.T) {
	terminal := []BattleStatus{BattleFinished, BattleForfeited, BattleTimeout, BattleCancelled}
	for _, status := range terminal {
		assert.True(t, (&Battle{Status: status}).IsTerminal(), string(status))
	}
	assert.False(t, (&Battle{Status: BattlePending}).IsTerminal())
	assert.False(t, (&Battle{Status: BattleActive}).IsTerminal())
}

func TestStateBlobRoundTrip(t *testing.T) {
	state := &BattleState{
		TurnNumber: 3,
		FirstSide:  SideB,
		SideA: SideState{
			AgentID:   uuid.New(),
			Name:      "crusher",
			Type:      catalog.TypeWater,
			MaxHP:     85,
			CurrentHP: 42,
			Status:    StatusBurned,
			Stages:    StatStages{Attack: 2, Speed: -1},
			Moves:     []MoveState{{ID: "surf", CurrentPP: 7, PP: 10}},
		},
		MatchupAtoB: 2.0,
	}

	blob, err := MarshalState(state)
	require.NoError(t, err)

	decoded, err := UnmarshalState(blob)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)

	_, err = UnmarshalState("not json")
	assert.Error(t, err)
}

func TestArenaErrorMapping(t *testing.T) {
	ae := AsArenaError(ErrNotFound("battle not found"))
	assert.Equal(t, CodeNotFound, ae.Code)
	assert.Equal(t, 404, ae.Status)

	// Une erreur inconnue devient une erreur interne générique
	ae = AsArenaError(assert.AnError)
	assert.Equal(t, CodeInternal, ae.Code)
	assert.Equal(t, 500, ae.Status)
}
