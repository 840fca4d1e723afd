package catalog

// AbilityTrigger point de déclenchement d'une capacité passive
type AbilityTrigger string

const (
	TriggerBattleStart  AbilityTrigger = "battle_start"
	TriggerEndTurn      AbilityTrigger = "end_turn"
	TriggerDamageCalc   AbilityTrigger = "damage_calc"
	TriggerDamageTaken  AbilityTrigger = "damage_taken"
	TriggerBeforeHit    AbilityTrigger = "before_hit"
	TriggerAfterHit     AbilityTrigger = "after_hit"
	TriggerSpeedCalc    AbilityTrigger = "speed_calc"
	TriggerAccuracyCalc AbilityTrigger = "accuracy_calc"
	TriggerStatusDamage AbilityTrigger = "status_damage"
	TriggerBeforeFaint  AbilityTrigger = "before_faint"
)

// Ability définition statique d'une capacité
type Ability struct {
	Name        string         `json:"name"`
	Trigger     AbilityTrigger `json:"trigger"`
	Description string         `json:"description"`
}

// abilityList table de toutes les capacités
var abilityList = []Ability{
	{"Adaptability", TriggerDamageCalc, "STAB multiplier raised to 2.0"},
	{"Blaze", TriggerDamageCalc, "+50% fire damage below 33% HP"},
	{"Torrent", TriggerDamageCalc, "+50% water damage below 33% HP"},
	{"Overgrow", TriggerDamageCalc, "+50% grass damage below 33% HP"},
	{"Swarm", TriggerDamageCalc, "+50% bug damage below 33% HP"},
	{"Guts", TriggerDamageCalc, "+50% attack while statused"},
	{"Iron Fist", TriggerDamageCalc, "+10% physical damage"},
	{"Dark Aura", TriggerDamageCalc, "+15% dark damage"},
	{"Pixilate", TriggerDamageCalc, "+15% fairy damage"},
	{"Corrosion", TriggerDamageCalc, "ignores 15% of defender defense"},
	{"Resilience", TriggerDamageTaken, "reduces super-effective damage by 25%"},
	{"Solid Rock", TriggerDamageTaken, "reduces super-effective damage by 25%"},
	{"Filter", TriggerDamageTaken, "reduces super-effective damage by 25%"},
	{"Multiscale", TriggerDamageTaken, "75% damage taken at full HP"},
	{"Static", TriggerDamageTaken, "20% to paralyse attacker on contact"},
	{"Cursed Body", TriggerDamageTaken, "20% to drop attacker best stat"},
	{"Sturdy", TriggerBeforeFaint, "survives one KO from full HP at 1 HP"},
	{"Telepathy", TriggerBeforeHit, "10% to dodge any move"},
	{"Sand Veil", TriggerBeforeHit, "10% to dodge any move"},
	{"Volt Absorb", TriggerBeforeHit, "absorbs electric moves, heals 25%"},
	{"Levitate", TriggerBeforeHit, "immune to earth moves"},
	{"Inferno", TriggerAfterHit, "15% to burn on damaging hit"},
	{"Permafrost", TriggerAfterHit, "10% to freeze on damaging hit"},
	{"Poison Touch", TriggerAfterHit, "15% to poison on contact"},
	{"Compound Eyes", TriggerAccuracyCalc, "accuracy x1.3 (capped at 100)"},
	{"Gale Wings", TriggerSpeedCalc, "+1 move priority at full HP"},
	{"Hydration", TriggerEndTurn, "heals 6.25% max HP each turn"},
	{"Photosynthesis", TriggerEndTurn, "heals 6.25% max HP each turn"},
	{"Ice Body", TriggerEndTurn, "heals 6.25% max HP each turn"},
	{"Bulwark", TriggerBattleStart, "+10% defense at battle start"},
	{"Berserker", TriggerBattleStart, "+10% attack at battle start"},
}

// abilityPools capacités autorisées par type
var abilityPools = map[string][]string{
	TypeFire:     {"Blaze", "Inferno", "Guts", "Adaptability"},
	TypeWater:    {"Torrent", "Hydration", "Multiscale", "Adaptability"},
	TypeGrass:    {"Overgrow", "Photosynthesis", "Resilience"},
	TypeElectric: {"Static", "Volt Absorb", "Adaptability"},
	TypeIce:      {"Permafrost", "Ice Body", "Sturdy"},
	TypeEarth:    {"Sturdy", "Solid Rock", "Sand Veil"},
	TypeRock:     {"Sturdy", "Solid Rock", "Filter", "Bulwark"},
	TypeWind:     {"Gale Wings", "Telepathy", "Multiscale"},
	TypePoison:   {"Corrosion", "Poison Touch", "Guts"},
	TypePsychic:  {"Telepathy", "Filter", "Resilience"},
	TypeDark:     {"Dark Aura", "Cursed Body", "Guts"},
	TypeLight:    {"Resilience", "Filter", "Multiscale"},
	TypeMetal:    {"Sturdy", "Iron Fist", "Filter", "Bulwark"},
	TypeDragon:   {"Multiscale", "Adaptability", "Guts"},
	TypeBug:      {"Swarm", "Compound Eyes", "Sturdy"},
	TypeGhost:    {"Cursed Body", "Levitate", "Telepathy"},
	TypeFighting: {"Iron Fist", "Guts", "Berserker"},
	TypeFairy:    {"Pixilate", "Telepathy", "Resilience"},
}

var abilitiesByName map[string]Ability

func init() {
	abilitiesByName = make(map[string]Ability, len(abilityList))
	for _, a := range abilityList {
		abilitiesByName[a.Name] = a
	}
}

// GetAbility retourne la définition d'une capacité par nom
func GetAbility(name string) (Ability, bool) {
	a, ok := abilitiesByName[name]
	return a, ok
}

// AbilityPool retourne les capacités autorisées pour un type
func AbilityPool(elementalType string) []string {
	return abilityPools[elementalType]
}

// IsAbilityInPool indique si une capacité est autorisée pour un type
func IsAbilityInPool(elementalType, ability string) bool {
	for _, a := range abilityPools[elementalType] {
		if a == ability {
			return true
		}
	}
	return false
}
