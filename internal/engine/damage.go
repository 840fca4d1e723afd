package engine

import (
	"math"

	"arena/internal/catalog"
	"arena/internal/models"
)

// Constantes d'équilibrage du calcul de dégâts
const (
	baseDamageFactor   = 0.25
	stabMultiplier     = 1.5
	adaptabilityStab   = 2.0
	effectivenessCap   = 1.5
	critMultiplier     = 1.25
	critChance         = 0.0625
	highCritChance     = 0.125
	burnPhysicalMalus  = 0.5
	lowHPAbilityBonus  = 1.5
	lowHPThreshold     = 0.33
	superEffectiveCut  = 0.75
	multiscaleFactor   = 0.75
	corrosionDefPierce = 0.85
)

// DamageResult résultat d'une application de move offensif
type DamageResult struct {
	Damage            int     `json:"damage"`
	Crit              bool    `json:"crit"`
	TypeEffectiveness float64 `json:"typeEffectiveness"`
}

// Damage calcule les dégâts d'un move offensif; pur et déterministe
// pour une source d'aléa donnée.
func Damage(attacker, defender *models.SideState, move *models.MoveState, rng RNG) DamageResult {
	atk := pickAttackStat(attacker, move)
	def := pickDefenseStat(defender, move)

	if attacker.Ability == "Corrosion" {
		def = int(float64(def) * corrosionDefPierce)
	}
	if def < 1 {
		def = 1
	}

	base := float64(atk) / float64(def) * scaledPower(move.Power, attacker.Level) * baseDamageFactor

	// Cas spéciaux pilotés par l'effet du move
	if move.Effect != nil {
		switch move.Effect.Kind {
		case catalog.EffectHPScaling:
			ratio := float64(attacker.CurrentHP) / float64(attacker.MaxHP)
			base *= math.Max(0.2, ratio)
		case catalog.EffectDoubleIfPoison:
			if defender.Status == models.StatusPoison {
				base *= 2
			}
		}
	}

	// STAB
	stab := 1.0
	if move.Type == attacker.Type {
		stab = stabMultiplier
		if attacker.Ability == "Adaptability" {
			stab = adaptabilityStab
		}
	}

	// Efficacité de type, plafonnée à 1.5x
	rawEff := 1.0
	if move.Type != "" {
		rawEff = catalog.TypeEffectiveness(move.Type, defender.Type)
	}
	if rawEff == 0 {
		return DamageResult{Damage: 0, TypeEffectiveness: 0}
	}
	eff := math.Min(effectivenessCap, rawEff)

	// Réduction défensive des coups super efficaces
	if rawEff > 1.0 {
		switch defender.Ability {
		case "Resilience", "Solid Rock", "Filter":
			eff *= superEffectiveCut
		}
	}

	// Deltas de capacités côté attaquant
	abilityMult := 1.0
	switch attacker.Ability {
	case "Blaze":
		abilityMult *= lowHPBonus(attacker, move, catalog.TypeFire)
	case "Torrent":
		abilityMult *= lowHPBonus(attacker, move, catalog.TypeWater)
	case "Overgrow":
		abilityMult *= lowHPBonus(attacker, move, catalog.TypeGrass)
	case "Swarm":
		abilityMult *= lowHPBonus(attacker, move, catalog.TypeBug)
	case "Guts":
		if attacker.Status != models.StatusNone {
			abilityMult *= lowHPAbilityBonus
		}
	case "Iron Fist":
		if move.Category == catalog.CategoryPhysical {
			abilityMult *= 1.10
		}
	case "Dark Aura":
		if move.Type == catalog.TypeDark {
			abilityMult *= 1.15
		}
	case "Pixilate":
		if move.Type == catalog.TypeFairy {
			abilityMult *= 1.15
		}
	}

	// Deltas de capacités côté défenseur
	if defender.Ability == "Multiscale" && defender.AtFullHP() {
		abilityMult *= multiscaleFactor
	}

	// Coup critique
	chance := critChance
	if move.Effect != nil && move.Effect.Kind == catalog.EffectHighCrit {
		chance = highCritChance
	}
	crit := 1.0
	isCrit := false
	if rng.Float64() < chance {
		crit = critMultiplier
		isCrit = true
	}

	// Variance
	variance := 0.85 + rng.Float64()*0.15

	// Malus brûlure sur le physique
	burn := 1.0
	if attacker.Status == models.StatusBurned && move.Category == catalog.CategoryPhysical {
		burn = burnPhysicalMalus
	}

	damage := int(math.Floor(math.Max(1, base*stab*eff*abilityMult*crit*variance*burn)))

	return DamageResult{Damage: damage, Crit: isCrit, TypeEffectiveness: eff}
}

// lowHPBonus bonus Blaze/Torrent/Overgrow/Swarm sous 33% HP
func lowHPBonus(attacker *models.SideState, move *models.MoveState, elementalType string) float64 {
	if move.Type != elementalType {
		return 1.0
	}
	if float64(attacker.CurrentHP) >= float64(attacker.MaxHP)*lowHPThreshold {
		return 1.0
	}
	return lowHPAbilityBonus
}

// pickAttackStat choisit la stat offensive selon la catégorie du move
func pickAttackStat(attacker *models.SideState, move *models.MoveState) int {
	if move.Category == catalog.CategoryPhysical {
		return StagedStat(attacker.EffectiveStats.Attack, attacker.Stages.Attack)
	}
	return StagedStat(attacker.EffectiveStats.SpAtk, attacker.Stages.SpAtk)
}

// pickDefenseStat choisit la stat défensive; use_physical_def force la
// défense physique même pour un move spécial
func pickDefenseStat(defender *models.SideState, move *models.MoveState) int {
	usePhysical := move.Category == catalog.CategoryPhysical
	if move.Effect != nil && move.Effect.Kind == catalog.EffectUsePhysicalDef {
		usePhysical = true
	}
	if usePhysical {
		return StagedStat(defender.EffectiveStats.Defense, defender.Stages.Defense)
	}
	return StagedStat(defender.EffectiveStats.SpDef, defender.Stages.SpDef)
}
