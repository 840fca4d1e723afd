package engine

import (
	"fmt"

	"arena/internal/catalog"
	"arena/internal/models"
)

// Constantes d'équilibrage des statuts
const (
	burnTickFraction    = 0.0625 // 6.25% maxHP par tour
	poisonTickFraction  = 0.0833 // ~8.3% maxHP par tour
	leechSeedFraction   = 0.125
	curseTickFraction   = 0.25
	curseSacrifice      = 0.25
	endTurnHealFraction = 0.0625
	paralysisSkipChance = 0.15
	confusionSelfChance = 0.25
	confusionSelfDamage = 0.10
	confusionMaxTurns   = 3
	sleepMaxTurns       = 2
	dodgeChance         = 0.10
	voltAbsorbHeal      = 0.25
	accuracyBoostCE     = 1.3
)

// Raisons de fin de combat
const (
	ReasonKnockout = "knockout"
)

// ResolveTurn résout un tour complet: les deux moves soumis, les effets de
// fin de tour, et la détection de fin de combat. Un move nil représente un
// côté forfait de tour (timeout du scheduler). Retourne la séquence ordonnée
// d'événements et le côté vainqueur ("" si le combat continue).
func ResolveTurn(state *models.BattleState, moveA, moveB *string, rng RNG) ([]models.TurnEvent, string, error) {
	events := make([]models.TurnEvent, 0, 16)

	// 1. Nouveau tour: reset des drapeaux par tour
	state.TurnNumber++
	for _, side := range []*models.SideState{&state.SideA, &state.SideB} {
		side.Flinched = false
		side.TookDamageThisTurn = false
	}

	// Événements de skip pour les côtés sans move (tick du scheduler)
	if moveA == nil {
		events = append(events, models.TurnEvent{Kind: models.EventTimeout, Side: models.SideA})
	}
	if moveB == nil {
		events = append(events, models.TurnEvent{Kind: models.EventTimeout, Side: models.SideB})
	}

	// Un tick où les deux côtés sont passés n'applique que les dégâts de
	// statut en fin de tour: ni Wish, ni soins de capacité
	statusDamageOnly := moveA == nil && moveB == nil

	// 2. Ordre de jeu
	first := determineOrder(state, moveA, moveB, rng)
	state.FirstSide = first
	second := models.Opposite(first)

	moves := map[string]*string{models.SideA: moveA, models.SideB: moveB}

	// 3. Application des moves dans l'ordre
	for _, side := range []string{first, second} {
		moveID := moves[side]
		if moveID == nil {
			continue
		}
		if state.Side(side).IsFainted() {
			continue
		}
		if err := applyMove(state, side, *moveID, rng, &events); err != nil {
			return nil, "", err
		}

		// 4. Fin de combat après chaque move
		if winner, ended := checkBattleEnd(state); ended {
			events = append(events, models.TurnEvent{
				Kind:   models.EventBattleEnd,
				Winner: winner,
				Reason: ReasonKnockout,
			})
			return events, winner, nil
		}
	}

	// 5. Effets de fin de tour
	applyEndOfTurn(state, &events, statusDamageOnly)

	// 6. Fin de combat après les effets de fin de tour
	if winner, ended := checkBattleEnd(state); ended {
		events = append(events, models.TurnEvent{
			Kind:   models.EventBattleEnd,
			Winner: winner,
			Reason: ReasonKnockout,
		})
		return events, winner, nil
	}

	return events, "", nil
}

// determineOrder détermine le côté jouant en premier:
// priorité du move (+ Gale Wings), vitesse effective, niveau, vitesse de
// base, puis pile ou face.
func determineOrder(state *models.BattleState, moveA, moveB *string, rng RNG) string {
	prioA := movePriority(&state.SideA, moveA)
	prioB := movePriority(&state.SideB, moveB)
	if prioA != prioB {
		if prioA > prioB {
			return models.SideA
		}
		return models.SideB
	}

	speedA := EffectiveSpeed(&state.SideA)
	speedB := EffectiveSpeed(&state.SideB)
	if speedA != speedB {
		if speedA > speedB {
			return models.SideA
		}
		return models.SideB
	}

	if state.SideA.Level != state.SideB.Level {
		if state.SideA.Level > state.SideB.Level {
			return models.SideA
		}
		return models.SideB
	}

	if state.SideA.BaseStats.Speed != state.SideB.BaseStats.Speed {
		if state.SideA.BaseStats.Speed > state.SideB.BaseStats.Speed {
			return models.SideA
		}
		return models.SideB
	}

	if rng.Float64() < 0.5 {
		return models.SideA
	}
	return models.SideB
}

// movePriority priorité du move choisi, avec bonus Gale Wings à pleins HP
func movePriority(side *models.SideState, moveID *string) int {
	prio := 0
	if moveID != nil {
		if ms := side.MoveByID(*moveID); ms != nil {
			prio = ms.Priority
		}
	}
	if side.Ability == "Gale Wings" && side.AtFullHP() {
		prio++
	}
	return prio
}

// applyMove applique le move d'un côté selon l'algorithme de résolution
func applyMove(state *models.BattleState, side, moveID string, rng RNG, events *[]models.TurnEvent) error {
	mover := state.Side(side)
	opponent := state.Side(models.Opposite(side))

	// a. Flinch
	if mover.Flinched {
		*events = append(*events, models.TurnEvent{Kind: models.EventFlinch, Side: side})
		return nil
	}

	// b. Statuts bloquants sur le mover
	if !processMoverStatus(mover, side, rng, events) {
		return nil
	}

	move := mover.MoveByID(moveID)
	if move == nil {
		return fmt.Errorf("move %s not in side %s moveset", moveID, side)
	}
	if move.CurrentPP <= 0 {
		// Erreur de programmation: la validation amont garantit PP > 0
		return fmt.Errorf("move %s has no PP remaining", moveID)
	}
	move.CurrentPP--

	*events = append(*events, models.TurnEvent{Kind: models.EventUseMove, Side: side, Move: move.ID})

	// focus échoue si le mover a déjà pris des dégâts ce tour
	if move.Effect != nil && move.Effect.Kind == catalog.EffectFocus && mover.TookDamageThisTurn {
		*events = append(*events, models.TurnEvent{Kind: models.EventFocusFail, Side: side, Move: move.ID})
		return nil
	}

	// c. Immunités par capacité de l'adversaire
	if handled := processDefenderAbilityPreHit(opponent, side, move, rng, events); handled {
		return nil
	}

	// d. Jet de précision
	if !accuracyRoll(mover, move, rng) {
		*events = append(*events, models.TurnEvent{Kind: models.EventMiss, Side: side, Move: move.ID})
		return nil
	}

	// e. Moves OHKO
	if move.Effect != nil && move.Effect.Kind == catalog.EffectOHKO {
		applyOHKO(opponent, side, move, events)
		return nil
	}

	// f. Branche offensive
	if move.Power > 0 {
		applyDamagingMove(state, side, move, rng, events)
		return nil
	}

	// g. Branche statut / utilitaire
	applyStatusMove(state, side, move, rng, events)
	return nil
}

// processMoverStatus traite les statuts bloquants; retourne false si le
// move est annulé ce tour
func processMoverStatus(mover *models.SideState, side string, rng RNG, events *[]models.TurnEvent) bool {
	switch mover.Status {
	case models.StatusFreeze:
		// Gel: exactement un tour
		if mover.FreezeTurns >= 1 {
			mover.Status = models.StatusNone
			mover.FreezeTurns = 0
			*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "thawed"})
			return true
		}
		mover.FreezeTurns++
		*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "frozen"})
		return false

	case models.StatusSleep:
		if mover.WokeFromDamage || mover.SleepTurns >= sleepMaxTurns {
			mover.Status = models.StatusNone
			mover.SleepTurns = 0
			mover.WokeFromDamage = false
			*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "woke_up"})
			return true
		}
		mover.SleepTurns++
		*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "asleep"})
		return false

	case models.StatusParalysis:
		if rng.Float64() < paralysisSkipChance {
			*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "paralyzed"})
			return false
		}

	case models.StatusConfusion:
		mover.ConfusionTurns++
		if mover.ConfusionTurns >= confusionMaxTurns {
			mover.Status = models.StatusNone
			mover.ConfusionTurns = 0
			*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "snapped_out"})
			return true
		}
		if rng.Float64() < confusionSelfChance {
			selfDamage := maxInt(1, int(float64(mover.MaxHP)*confusionSelfDamage))
			mover.ApplyDamage(selfDamage)
			*events = append(*events, models.TurnEvent{
				Kind: models.EventConfusionSelfHit, Side: side, Damage: selfDamage,
			})
			return false
		}
	}
	return true
}

// processDefenderAbilityPreHit applique les immunités before_hit du défenseur
func processDefenderAbilityPreHit(defender *models.SideState, attackerSide string, move *models.MoveState, rng RNG, events *[]models.TurnEvent) bool {
	defSide := models.Opposite(attackerSide)

	switch defender.Ability {
	case "Telepathy", "Sand Veil":
		if rng.Float64() < dodgeChance {
			*events = append(*events, models.TurnEvent{
				Kind: models.EventDodge, Side: defSide, Ability: defender.Ability, Move: move.ID,
			})
			return true
		}
	case "Volt Absorb":
		if move.Type == catalog.TypeElectric {
			healed := defender.Heal(int(float64(defender.MaxHP) * voltAbsorbHeal))
			*events = append(*events, models.TurnEvent{
				Kind: models.EventAbility, Side: defSide, Ability: defender.Ability, Amount: healed,
			})
			return true
		}
	case "Levitate":
		if move.Type == catalog.TypeEarth {
			*events = append(*events, models.TurnEvent{
				Kind: models.EventImmune, Side: defSide, Ability: defender.Ability, Move: move.ID,
			})
			return true
		}
	}
	return false
}

// accuracyRoll jet de précision avec Compound Eyes (x1.3, cap 100)
func accuracyRoll(mover *models.SideState, move *models.MoveState, rng RNG) bool {
	if move.Accuracy <= 0 {
		return true
	}
	acc := float64(move.Accuracy)
	if mover.Ability == "Compound Eyes" {
		acc *= accuracyBoostCE
	}
	if acc > 100 {
		acc = 100
	}
	return rng.Float64()*100 < acc
}

// applyOHKO applique un move à KO direct, avec sauvetage Sturdy
func applyOHKO(defender *models.SideState, attackerSide string, move *models.MoveState, events *[]models.TurnEvent) {
	defSide := models.Opposite(attackerSide)

	if defender.AtFullHP() && defender.Ability == "Sturdy" && !defender.SturdyUsed {
		defender.SturdyUsed = true
		defender.CurrentHP = 1
		defender.TookDamageThisTurn = true
		*events = append(*events, models.TurnEvent{
			Kind: models.EventAbility, Side: defSide, Ability: "Sturdy",
		})
		return
	}

	defender.CurrentHP = 0
	*events = append(*events, models.TurnEvent{Kind: models.EventOHKO, Side: attackerSide, Move: move.ID, Target: defSide})
}

// applyDamagingMove branche offensive: formule de dégâts puis effets secondaires
func applyDamagingMove(state *models.BattleState, side string, move *models.MoveState, rng RNG, events *[]models.TurnEvent) {
	attacker := state.Side(side)
	defSide := models.Opposite(side)
	defender := state.Side(defSide)

	result := Damage(attacker, defender, move, rng)
	if result.TypeEffectiveness == 0 {
		*events = append(*events, models.TurnEvent{Kind: models.EventImmune, Side: defSide, Move: move.ID})
		return
	}

	damage := result.Damage

	// Sauvetage Sturdy à usage unique sur un coup létal à pleins HP
	if damage >= defender.CurrentHP && defender.AtFullHP() && defender.Ability == "Sturdy" && !defender.SturdyUsed {
		defender.SturdyUsed = true
		damage = defender.CurrentHP - 1
		*events = append(*events, models.TurnEvent{
			Kind: models.EventAbility, Side: defSide, Ability: "Sturdy",
		})
	}

	defender.ApplyDamage(damage)
	if defender.Status == models.StatusSleep {
		defender.WokeFromDamage = true
	}

	*events = append(*events, models.TurnEvent{
		Kind:          models.EventDamage,
		Side:          side,
		Target:        defSide,
		Move:          move.ID,
		Damage:        damage,
		Crit:          result.Crit,
		Effectiveness: result.TypeEffectiveness,
		Message:       effectivenessMessage(result.TypeEffectiveness),
	})

	// Effets secondaires du move
	if move.Effect != nil {
		switch move.Effect.Kind {
		case catalog.EffectRecoil:
			recoil := maxInt(1, int(float64(damage)*move.Effect.Percent))
			attacker.ApplyDamage(recoil)
			*events = append(*events, models.TurnEvent{Kind: models.EventRecoil, Side: side, Damage: recoil})

		case catalog.EffectDrain:
			healed := attacker.Heal(maxInt(1, int(float64(damage)*move.Effect.Percent)))
			if healed > 0 {
				*events = append(*events, models.TurnEvent{Kind: models.EventDrain, Side: side, Amount: healed})
			}

		case catalog.EffectFlinch:
			if !defender.IsFainted() && rng.Float64() < move.Effect.Chance {
				defender.Flinched = true
			}

		case catalog.EffectStatusInflict:
			tryInflictStatus(defender, defSide, move.Effect.Status, move.Effect.Chance, rng, events)

		case catalog.EffectStatBoost:
			if rng.Float64() < chanceOrOne(move.Effect.Chance) {
				applyStageChange(attacker, side, move.Effect.Stat, move.Effect.Stages, events)
			}

		case catalog.EffectStatDrop:
			if !defender.IsFainted() && rng.Float64() < chanceOrOne(move.Effect.Chance) {
				applyStageChange(defender, defSide, move.Effect.Stat, -move.Effect.Stages, events)
			}
		}
	}

	// Capacités after_hit de l'attaquant
	if !defender.IsFainted() {
		switch attacker.Ability {
		case "Inferno":
			if rng.Float64() < 0.15 {
				tryInflictStatus(defender, defSide, catalog.StatusBurned, 1.0, rng, events)
			}
		case "Permafrost":
			if rng.Float64() < 0.10 {
				tryInflictStatus(defender, defSide, catalog.StatusFreeze, 1.0, rng, events)
			}
		case "Poison Touch":
			if move.Category == catalog.CategoryPhysical && rng.Float64() < 0.15 {
				tryInflictStatus(defender, defSide, catalog.StatusPoison, 1.0, rng, events)
			}
		}
	}

	// Capacités damage_taken du défenseur
	if !attacker.IsFainted() {
		switch defender.Ability {
		case "Static":
			if move.Category == catalog.CategoryPhysical && rng.Float64() < 0.20 {
				tryInflictStatus(attacker, side, catalog.StatusParalysis, 1.0, rng, events)
			}
		case "Cursed Body":
			if rng.Float64() < 0.20 {
				applyStageChange(attacker, side, bestStat(attacker), -1, events)
			}
		}
	}
}

// applyStatusMove branche statut / utilitaire (power == 0)
func applyStatusMove(state *models.BattleState, side string, move *models.MoveState, rng RNG, events *[]models.TurnEvent) {
	mover := state.Side(side)
	defSide := models.Opposite(side)
	opponent := state.Side(defSide)

	if move.Effect == nil {
		return
	}

	switch move.Effect.Kind {
	case catalog.EffectStatBoost:
		applyStageChange(mover, side, move.Effect.Stat, move.Effect.Stages, events)

	case catalog.EffectStatDrop:
		applyStageChange(opponent, defSide, move.Effect.Stat, -move.Effect.Stages, events)

	case catalog.EffectStatusInflict:
		tryInflictStatus(opponent, defSide, move.Effect.Status, move.Effect.Chance, rng, events)

	case catalog.EffectHeal:
		if move.Effect.Delayed {
			// Wish: soin différé au tour suivant
			mover.WishPending = true
			mover.WishTurn = state.TurnNumber + 1
			*events = append(*events, models.TurnEvent{Kind: models.EventWish, Side: side})
			return
		}
		healed := mover.Heal(int(float64(mover.MaxHP) * move.Effect.Percent))
		*events = append(*events, models.TurnEvent{Kind: models.EventHeal, Side: side, Amount: healed})

	case catalog.EffectLeechSeed:
		if !opponent.LeechSeeded {
			opponent.LeechSeeded = true
			*events = append(*events, models.TurnEvent{Kind: models.EventLeechSeed, Side: side, Target: defSide})
		}

	case catalog.EffectCurse:
		sacrifice := int(float64(mover.MaxHP) * curseSacrifice)
		mover.ApplyDamage(sacrifice)
		opponent.Cursed = true
		*events = append(*events, models.TurnEvent{
			Kind: models.EventStatus, Side: side, Target: defSide, Status: "cursed", Amount: sacrifice,
		})

	case catalog.EffectResetStats:
		mover.Stages.Reset()
		opponent.Stages.Reset()
		*events = append(*events, models.TurnEvent{Kind: models.EventStatus, Side: side, Status: "stats_reset"})
	}
}

// tryInflictStatus inflige un statut si la cible n'en a pas déjà un
func tryInflictStatus(target *models.SideState, targetSide, status string, chance float64, rng RNG, events *[]models.TurnEvent) {
	if target.Status != models.StatusNone || target.IsFainted() {
		return
	}
	if rng.Float64() >= chanceOrOne(chance) {
		return
	}

	target.Status = models.StatusKind(status)
	target.FreezeTurns = 0
	target.SleepTurns = 0
	target.ConfusionTurns = 0
	target.WokeFromDamage = false

	*events = append(*events, models.TurnEvent{
		Kind: models.EventStatusInflict, Target: targetSide, Status: status,
	})
}

// applyStageChange applique une variation de stage avec clamp et événement
func applyStageChange(target *models.SideState, targetSide, stat string, delta int, events *[]models.TurnEvent) {
	if delta == 0 || stat == "" {
		return
	}
	target.Stages.Apply(stat, delta)

	kind := models.EventStatBoost
	if delta < 0 {
		kind = models.EventStatDrop
	}
	*events = append(*events, models.TurnEvent{Kind: kind, Side: targetSide, Stat: stat, Stages: delta})
}

// applyEndOfTurn dégâts de statut puis soins différés et de capacités
// end_turn, en ordre de côté (A puis B). Avec statusDamageOnly, seuls les
// dégâts tournent: Wish reste en attente et les capacités ne soignent pas.
func applyEndOfTurn(state *models.BattleState, events *[]models.TurnEvent, statusDamageOnly bool) {
	for _, side := range []string{models.SideA, models.SideB} {
		s := state.Side(side)
		opp := state.Side(models.Opposite(side))
		if s.IsFainted() {
			continue
		}

		switch s.Status {
		case models.StatusBurned:
			tick := maxInt(1, int(float64(s.MaxHP)*burnTickFraction))
			s.ApplyDamage(tick)
			*events = append(*events, models.TurnEvent{Kind: models.EventBurnDamage, Side: side, Damage: tick})
		case models.StatusPoison:
			tick := maxInt(1, int(float64(s.MaxHP)*poisonTickFraction))
			s.ApplyDamage(tick)
			*events = append(*events, models.TurnEvent{Kind: models.EventPoisonDamage, Side: side, Damage: tick})
		}

		if s.LeechSeeded && !s.IsFainted() {
			tick := maxInt(1, int(float64(s.MaxHP)*leechSeedFraction))
			s.ApplyDamage(tick)
			healed := opp.Heal(tick)
			*events = append(*events, models.TurnEvent{
				Kind: models.EventLeechSeed, Side: side, Damage: tick, Amount: healed,
			})
		}

		if s.Cursed && !s.IsFainted() {
			tick := maxInt(1, int(float64(s.MaxHP)*curseTickFraction))
			s.ApplyDamage(tick)
			*events = append(*events, models.TurnEvent{Kind: models.EventCurseDamage, Side: side, Damage: tick})
		}

		if !statusDamageOnly && s.WishPending && state.TurnNumber >= s.WishTurn && !s.IsFainted() {
			s.WishPending = false
			healed := s.Heal(s.MaxHP / 2)
			*events = append(*events, models.TurnEvent{Kind: models.EventWishHeal, Side: side, Amount: healed})
		}
	}

	if statusDamageOnly {
		return
	}

	// Soins des capacités end_turn
	for _, side := range []string{models.SideA, models.SideB} {
		s := state.Side(side)
		if s.IsFainted() {
			continue
		}
		switch s.Ability {
		case "Hydration", "Photosynthesis", "Ice Body":
			healed := s.Heal(maxInt(1, int(float64(s.MaxHP)*endTurnHealFraction)))
			if healed > 0 {
				*events = append(*events, models.TurnEvent{
					Kind: models.EventHeal, Side: side, Ability: s.Ability, Amount: healed,
				})
			}
		}
	}
}

// checkBattleEnd détecte la fin du combat; en cas de KO mutuel, le côté
// ayant joué en premier ce tour l'emporte
func checkBattleEnd(state *models.BattleState) (string, bool) {
	faintedA := state.SideA.IsFainted()
	faintedB := state.SideB.IsFainted()

	switch {
	case faintedA && faintedB:
		return state.FirstSide, true
	case faintedA:
		return models.SideB, true
	case faintedB:
		return models.SideA, true
	default:
		return "", false
	}
}

// effectivenessMessage message wire d'efficacité de type
func effectivenessMessage(eff float64) string {
	switch {
	case eff == 0:
		return "it has no effect"
	case eff < 1.0:
		return "it's not very effective"
	case eff > 1.0:
		return "it's super effective"
	default:
		return ""
	}
}

// bestStat retourne le nom de la stat effective la plus haute
func bestStat(s *models.SideState) string {
	best := catalog.StatAttack
	bestValue := s.EffectiveStats.Attack
	for _, stat := range []string{catalog.StatDefense, catalog.StatSpAtk, catalog.StatSpDef, catalog.StatSpeed} {
		if v := s.EffectiveStats.Get(stat); v > bestValue {
			best = stat
			bestValue = v
		}
	}
	return best
}

// chanceOrOne interprète une chance absente (0) comme certaine
func chanceOrOne(chance float64) float64 {
	if chance <= 0 {
		return 1.0
	}
	return chance
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
