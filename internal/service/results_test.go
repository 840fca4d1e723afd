package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arena/internal/models"
)

func TestEloExpected(t *testing.T) {
	assert.Equal(t, 0.5, eloExpected(1000, 1000))

	// Les scores attendus des deux joueurs somment à 1
	assert.InDelta(t, 1.0, eloExpected(1200, 1000)+eloExpected(1000, 1200), 1e-9)

	assert.Greater(t, eloExpected(1400, 1000), 0.9)
	assert.Less(t, eloExpected(1000, 1400), 0.1)
}

func TestEloDelta(t *testing.T) {
	assert.Equal(t, 16, eloDelta(1000, 1000, true))
	assert.Equal(t, -16, eloDelta(1000, 1000, false))

	// Battre un adversaire bien plus faible rapporte peu
	assert.Less(t, eloDelta(1800, 1000, true), 3)

	// Battre un adversaire bien plus fort rapporte gros
	assert.Greater(t, eloDelta(1000, 1800, true), 29)
}

func TestApplyProgressionWin(t *testing.T) {
	agent := &models.Agent{Level: 1, Elo: 1000}
	opponent := &models.Agent{Level: 1, Elo: 1000}

	outcome := applyProgression(agent, opponent, true)

	assert.True(t, outcome.won)
	assert.Equal(t, 16, outcome.eloDelta)
	assert.Equal(t, 1016, outcome.newElo)
	assert.Equal(t, 1016, agent.Elo)
	assert.Equal(t, 60, agent.XP) // 50 + 10*niveau adverse
	assert.Equal(t, 1, agent.Level)
	assert.Zero(t, outcome.levelUps)
	assert.Equal(t, 1, agent.Fights)
	assert.Equal(t, 1, agent.Wins)
	assert.Equal(t, 1, agent.WinStreak)
}

func TestApplyProgressionLoss(t *testing.T) {
	agent := &models.Agent{Level: 1, Elo: 1000, WinStreak: 4, Wins: 4, Fights: 4}
	opponent := &models.Agent{Level: 1, Elo: 1000}

	outcome := applyProgression(agent, opponent, false)

	assert.False(t, outcome.won)
	assert.Equal(t, -16, outcome.eloDelta)
	assert.Equal(t, 984, agent.Elo)
	assert.Equal(t, 20, agent.XP) // 15 + 5*niveau adverse
	assert.Equal(t, 5, agent.Fights)
	assert.Equal(t, 4, agent.Wins)
	assert.Zero(t, agent.WinStreak)
}

func TestApplyProgressionEloFloor(t *testing.T) {
	agent := &models.Agent{Level: 1, Elo: 110}
	opponent := &models.Agent{Level: 1, Elo: 110}

	outcome := applyProgression(agent, opponent, false)

	assert.Equal(t, eloFloor, agent.Elo)
	assert.Equal(t, -10, outcome.eloDelta)
	assert.Equal(t, eloFloor, outcome.newElo)
}

func TestApplyProgressionLevelUp(t *testing.T) {
	agent := &models.Agent{Level: 1, XP: 90, Elo: 1000}
	opponent := &models.Agent{Level: 5, Elo: 1000}

	outcome := applyProgression(agent, opponent, true)

	// 50 + 10*5 = 100 XP gagnés; le seuil du niveau 1 est 100
	assert.Equal(t, 2, agent.Level)
	assert.Equal(t, 90, agent.XP)
	assert.Equal(t, 1, outcome.levelUps)
}

func TestMilestones(t *testing.T) {
	won := battleOutcome{
		agent: &models.Agent{WinStreak: 3, Level: 2},
		won:   true,
	}
	assert.Equal(t, []string{"win_streak_3"}, milestones(won, 50, false, false))

	loaded := battleOutcome{
		agent:    &models.Agent{WinStreak: 5, Level: 5},
		won:      true,
		levelUps: 1,
	}
	assert.Equal(t,
		[]string{"win_streak_5", "upset_win", "revenge_win", "top_10_clash", "level_5"},
		milestones(loaded, 8, true, true))

	// Les étapes de victoire n'existent pas sur une défaite, le niveau si
	lostButLeveled := battleOutcome{
		agent:    &models.Agent{Level: 10},
		won:      false,
		levelUps: 1,
	}
	assert.Equal(t, []string{"level_10"}, milestones(lostButLeveled, 1, false, false))

	lost := battleOutcome{agent: &models.Agent{Level: 3}}
	assert.Empty(t, milestones(lost, 1, false, false))
}

func TestIsCloseMatch(t *testing.T) {
	state := &models.BattleState{
		SideA: models.SideState{MaxHP: 100, CurrentHP: 15},
		SideB: models.SideState{MaxHP: 100, CurrentHP: 0},
	}
	assert.True(t, isCloseMatch(state, models.SideA))

	state.SideA.CurrentHP = 16
	assert.False(t, isCloseMatch(state, models.SideA))

	state.SideA.MaxHP = 0
	assert.False(t, isCloseMatch(state, models.SideA))
}
