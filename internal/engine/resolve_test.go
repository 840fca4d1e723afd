package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/catalog"
	"arena/internal/models"
)

func resolveState(sideA, sideB *models.SideState) *models.BattleState {
	return &models.BattleState{
		SideA: *sideA,
		SideB: *sideB,
	}
}

func strPtr(s string) *string { return &s }

func eventKinds(events []models.TurnEvent) []models.EventKind {
	kinds := make([]models.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestResolveTurnBasicExchange(t *testing.T) {
	fast := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	fast.EffectiveStats.Speed = 100
	slow := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	slow.EffectiveStats.Speed = 50

	state := resolveState(fast, slow)

	events, winner, err := ResolveTurn(state, strPtr("surf"), strPtr("surf"), constRNG(0.99))
	require.NoError(t, err)

	assert.Empty(t, winner)
	assert.Equal(t, 1, state.TurnNumber)
	assert.Equal(t, models.SideA, state.FirstSide)

	// Les deux côtés ont joué et encaissé
	assert.Less(t, state.SideA.CurrentHP, state.SideA.MaxHP)
	assert.Less(t, state.SideB.CurrentHP, state.SideB.MaxHP)

	// PP décrémentés des deux côtés
	assert.Equal(t, 9, state.SideA.MoveByID("surf").CurrentPP)
	assert.Equal(t, 9, state.SideB.MoveByID("surf").CurrentPP)

	kinds := eventKinds(events)
	assert.Equal(t, []models.EventKind{
		models.EventUseMove, models.EventDamage,
		models.EventUseMove, models.EventDamage,
	}, kinds)
}

func TestResolveTurnBothTimedOut(t *testing.T) {
	a := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	a.EffectiveStats.Speed = 100
	b := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	b.EffectiveStats.Speed = 50

	state := resolveState(a, b)

	events, winner, err := ResolveTurn(state, nil, nil, constRNG(0.99))
	require.NoError(t, err)

	assert.Empty(t, winner)
	assert.Equal(t, 1, state.TurnNumber)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTimeout, events[0].Kind)
	assert.Equal(t, models.SideA, events[0].Side)
	assert.Equal(t, models.EventTimeout, events[1].Kind)
	assert.Equal(t, models.SideB, events[1].Side)

	// Aucun HP ni PP touché
	assert.Equal(t, a.MaxHP, state.SideA.CurrentHP)
	assert.Equal(t, 10, state.SideA.MoveByID("surf").CurrentPP)
}

func TestResolveTurnPriorityBeatsSpeed(t *testing.T) {
	slowPriority := damageSide(catalog.TypeWater, evenStats(60), 200, "aqua_jet")
	slowPriority.EffectiveStats.Speed = 10
	fastNormal := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	fastNormal.EffectiveStats.Speed = 200

	state := resolveState(slowPriority, fastNormal)

	_, _, err := ResolveTurn(state, strPtr("aqua_jet"), strPtr("surf"), constRNG(0.99))
	require.NoError(t, err)

	assert.Equal(t, models.SideA, state.FirstSide)
}

func TestResolveTurnKnockoutStopsTurn(t *testing.T) {
	attacker := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	attacker.EffectiveStats.Speed = 100
	victim := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	victim.EffectiveStats.Speed = 50
	victim.CurrentHP = 1

	state := resolveState(attacker, victim)

	events, winner, err := ResolveTurn(state, strPtr("surf"), strPtr("surf"), constRNG(0.99))
	require.NoError(t, err)

	assert.Equal(t, models.SideA, winner)
	assert.True(t, state.SideB.IsFainted())

	last := events[len(events)-1]
	assert.Equal(t, models.EventBattleEnd, last.Kind)
	assert.Equal(t, models.SideA, last.Winner)
	assert.Equal(t, ReasonKnockout, last.Reason)

	// Le move du côté KO n'est jamais joué
	assert.Equal(t, 10, state.SideB.MoveByID("surf").CurrentPP)
}

func TestResolveTurnMutualKnockoutFirstSideWins(t *testing.T) {
	// Deux côtés brûlés à 1 HP qui jouent un move de statut: les ticks de
	// fin de tour les mettent KO simultanément
	a := damageSide(catalog.TypeWater, evenStats(60), 200, "haze")
	a.EffectiveStats.Speed = 100
	a.Status = models.StatusBurned
	a.CurrentHP = 1
	b := damageSide(catalog.TypeWater, evenStats(60), 200, "haze")
	b.EffectiveStats.Speed = 50
	b.Status = models.StatusBurned
	b.CurrentHP = 1

	state := resolveState(a, b)

	events, winner, err := ResolveTurn(state, strPtr("haze"), strPtr("haze"), constRNG(0.99))
	require.NoError(t, err)

	assert.Equal(t, models.SideA, state.FirstSide)
	assert.Equal(t, models.SideA, winner)
	assert.True(t, state.SideA.IsFainted())
	assert.True(t, state.SideB.IsFainted())

	kinds := eventKinds(events)
	assert.Contains(t, kinds, models.EventBurnDamage)
	assert.Equal(t, models.EventBattleEnd, kinds[len(kinds)-1])
}

func TestResolveTurnTypeImmunity(t *testing.T) {
	attacker := damageSide(catalog.TypeElectric, evenStats(60), 200, "thunderbolt")
	attacker.EffectiveStats.Speed = 100
	grounded := damageSide(catalog.TypeEarth, evenStats(60), 200, "surf")
	grounded.EffectiveStats.Speed = 50

	state := resolveState(attacker, grounded)

	events, winner, err := ResolveTurn(state, strPtr("thunderbolt"), nil, constRNG(0.99))
	require.NoError(t, err)

	assert.Empty(t, winner)
	assert.Equal(t, grounded.MaxHP, state.SideB.CurrentHP)
	assert.Contains(t, eventKinds(events), models.EventImmune)

	// Le PP est consommé même sur une immunité
	assert.Equal(t, 9, state.SideA.MoveByID("thunderbolt").CurrentPP)
}

func TestResolveTurnSturdySavesLethalHit(t *testing.T) {
	bruiser := damageSide(catalog.TypeWater, models.Stats{Attack: 400, SpAtk: 400, Speed: 100}, 200, "surf")
	sturdy := damageSide(catalog.TypeFire, evenStats(40), 60, "surf")
	sturdy.EffectiveStats.Speed = 50
	sturdy.Ability = "Sturdy"

	state := resolveState(bruiser, sturdy)

	events, winner, err := ResolveTurn(state, strPtr("surf"), nil, constRNG(0.99))
	require.NoError(t, err)

	assert.Empty(t, winner)
	assert.Equal(t, 1, state.SideB.CurrentHP)
	assert.True(t, state.SideB.SturdyUsed)
	assert.Contains(t, eventKinds(events), models.EventAbility)
}

func TestResolveTurnOHKOWithSturdy(t *testing.T) {
	attacker := damageSide(catalog.TypeEarth, evenStats(60), 200, "fissure")
	attacker.EffectiveStats.Speed = 100
	sturdy := damageSide(catalog.TypeFire, evenStats(60), 200, "surf")
	sturdy.EffectiveStats.Speed = 50
	sturdy.Ability = "Sturdy"

	state := resolveState(attacker, sturdy)

	// 0.1 passe le jet de précision de fissure (30)
	_, winner, err := ResolveTurn(state, strPtr("fissure"), nil, constRNG(0.1))
	require.NoError(t, err)

	assert.Empty(t, winner)
	assert.Equal(t, 1, state.SideB.CurrentHP)
	assert.True(t, state.SideB.SturdyUsed)

	// Second OHKO: Sturdy est à usage unique et la cible n'est plus à
	// pleins HP
	_, winner, err = ResolveTurn(state, strPtr("fissure"), nil, constRNG(0.1))
	require.NoError(t, err)
	assert.Equal(t, models.SideA, winner)
	assert.True(t, state.SideB.IsFainted())
}

func TestResolveTurnFreezeBlocksExactlyOneTurn(t *testing.T) {
	frozen := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	frozen.EffectiveStats.Speed = 100
	frozen.Status = models.StatusFreeze
	other := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	other.EffectiveStats.Speed = 50

	state := resolveState(frozen, other)

	// Tour 1: gelé, le move est annulé
	events, _, err := ResolveTurn(state, strPtr("surf"), nil, constRNG(0.99))
	require.NoError(t, err)
	assert.Contains(t, eventKinds(events), models.EventStatus)
	assert.Equal(t, 10, state.SideA.MoveByID("surf").CurrentPP)
	assert.Equal(t, models.StatusFreeze, state.SideA.Status)

	// Tour 2: dégelé, le move passe
	events, _, err = ResolveTurn(state, strPtr("surf"), nil, constRNG(0.99))
	require.NoError(t, err)
	assert.Contains(t, eventKinds(events), models.EventUseMove)
	assert.Equal(t, 9, state.SideA.MoveByID("surf").CurrentPP)
	assert.Equal(t, models.StatusNone, state.SideA.Status)
}

func TestResolveTurnParalysisCanSkip(t *testing.T) {
	paralyzed := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	paralyzed.EffectiveStats.Speed = 100
	paralyzed.Status = models.StatusParalysis
	other := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	other.EffectiveStats.Speed = 50

	state := resolveState(paralyzed, other)

	// 0.1 < 15%: le tour est sauté
	events, _, err := ResolveTurn(state, strPtr("surf"), nil, constRNG(0.1))
	require.NoError(t, err)

	assert.Equal(t, 10, state.SideA.MoveByID("surf").CurrentPP)
	assert.NotContains(t, eventKinds(events), models.EventUseMove)
}

func TestResolveTurnStageDropClamped(t *testing.T) {
	charmer := damageSide(catalog.TypeFairy, evenStats(60), 200, "charm")
	charmer.EffectiveStats.Speed = 100
	target := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	target.EffectiveStats.Speed = 50
	target.Stages.Attack = -5

	state := resolveState(charmer, target)

	events, _, err := ResolveTurn(state, strPtr("charm"), nil, constRNG(0.99))
	require.NoError(t, err)

	assert.Equal(t, catalog.MinStatStage, state.SideB.Stages.Attack)
	assert.Contains(t, eventKinds(events), models.EventStatDrop)
}

func TestResolveTurnWishHealsNextTurn(t *testing.T) {
	wisher := damageSide(catalog.TypeFairy, evenStats(60), 100, "wish")
	wisher.EffectiveStats.Speed = 100
	wisher.CurrentHP = 10
	other := damageSide(catalog.TypeWater, evenStats(60), 200, "haze")
	other.EffectiveStats.Speed = 50

	state := resolveState(wisher, other)

	// Tour 1: le voeu est posé, rien n'est soigné
	events, _, err := ResolveTurn(state, strPtr("wish"), nil, constRNG(0.99))
	require.NoError(t, err)
	assert.Contains(t, eventKinds(events), models.EventWish)
	assert.Equal(t, 10, state.SideA.CurrentHP)
	assert.True(t, state.SideA.WishPending)

	// Tour 2: soin de 50% des HP max en fin de tour
	events, _, err = ResolveTurn(state, nil, strPtr("haze"), constRNG(0.99))
	require.NoError(t, err)
	assert.Contains(t, eventKinds(events), models.EventWishHeal)
	assert.Equal(t, 60, state.SideA.CurrentHP)
	assert.False(t, state.SideA.WishPending)
}

func TestResolveTurnDualSkipAppliesStatusDamageOnly(t *testing.T) {
	// Brûlé, voeu en attente et capacité de soin end_turn: sur un tick où
	// les deux côtés sont passés, seule la brûlure tourne
	burned := damageSide(catalog.TypeWater, evenStats(60), 200, "wish")
	burned.EffectiveStats.Speed = 100
	burned.Status = models.StatusBurned
	burned.CurrentHP = 100
	burned.WishPending = true
	burned.WishTurn = 1
	burned.Ability = "Hydration"
	other := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	other.EffectiveStats.Speed = 50
	other.CurrentHP = 50
	other.Ability = "Ice Body"

	state := resolveState(burned, other)

	events, winner, err := ResolveTurn(state, nil, nil, constRNG(0.99))
	require.NoError(t, err)
	assert.Empty(t, winner)

	kinds := eventKinds(events)
	assert.Contains(t, kinds, models.EventBurnDamage)
	assert.NotContains(t, kinds, models.EventWishHeal)
	assert.NotContains(t, kinds, models.EventHeal)

	// 200 * 6.25% = 12 de brûlure, aucun soin d'aucune source
	assert.Equal(t, 88, state.SideA.CurrentHP)
	assert.Equal(t, 50, state.SideB.CurrentHP)

	// Le voeu reste posé pour le prochain vrai tour
	assert.True(t, state.SideA.WishPending)
}

func TestResolveTurnLeechSeedDrains(t *testing.T) {
	seeder := damageSide(catalog.TypeGrass, evenStats(60), 200, "leech_seed")
	seeder.EffectiveStats.Speed = 100
	seeder.CurrentHP = 100
	target := damageSide(catalog.TypeWater, evenStats(60), 160, "surf")
	target.EffectiveStats.Speed = 50

	state := resolveState(seeder, target)

	events, _, err := ResolveTurn(state, strPtr("leech_seed"), nil, constRNG(0.5))
	require.NoError(t, err)

	assert.True(t, state.SideB.LeechSeeded)

	// Tick de 12.5% des HP max de la cible, drainé vers le lanceur
	tick := 20 // 160 * 0.125
	assert.Equal(t, 160-tick, state.SideB.CurrentHP)
	assert.Equal(t, 100+tick, state.SideA.CurrentHP)
	assert.Contains(t, eventKinds(events), models.EventLeechSeed)
}

func TestResolveTurnUnknownMoveFails(t *testing.T) {
	a := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	a.EffectiveStats.Speed = 100
	b := damageSide(catalog.TypeWater, evenStats(60), 200, "surf")
	b.EffectiveStats.Speed = 50

	state := resolveState(a, b)

	_, _, err := ResolveTurn(state, strPtr("fire_blast"), nil, constRNG(0.99))
	assert.Error(t, err)
}
