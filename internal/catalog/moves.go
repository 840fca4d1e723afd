package catalog

// MoveCategory catégorie d'un move
type MoveCategory string

const (
	CategoryPhysical MoveCategory = "physical"
	CategorySpecial  MoveCategory = "special"
	CategoryStatus   MoveCategory = "status"
)

// EffectKind variante taguée d'un effet de move
type EffectKind string

const (
	EffectRecoil         EffectKind = "recoil"
	EffectDrain          EffectKind = "drain"
	EffectFlinch         EffectKind = "flinch"
	EffectStatusInflict  EffectKind = "status_inflict"
	EffectStatBoost      EffectKind = "stat_boost"
	EffectStatDrop       EffectKind = "stat_drop"
	EffectHeal           EffectKind = "heal"
	EffectLeechSeed      EffectKind = "leech_seed"
	EffectCurse          EffectKind = "curse"
	EffectResetStats     EffectKind = "reset_stats"
	EffectHPScaling      EffectKind = "hp_scaling"
	EffectDoubleIfPoison EffectKind = "double_if_poisoned"
	EffectUsePhysicalDef EffectKind = "use_physical_def"
	EffectHighCrit       EffectKind = "high_crit"
	EffectOHKO           EffectKind = "ohko"
	EffectFocus          EffectKind = "focus"
)

// MoveEffect descripteur d'effet optionnel attaché à un move
type MoveEffect struct {
	Kind    EffectKind `json:"kind"`
	Chance  float64    `json:"chance,omitempty"`  // probabilité d'application (0-1)
	Status  string     `json:"status,omitempty"`  // statut infligé (status_inflict)
	Stat    string     `json:"stat,omitempty"`    // stat visée (stat_boost / stat_drop)
	Stages  int        `json:"stages,omitempty"`  // variation de stages
	Percent float64    `json:"percent,omitempty"` // fraction (recoil, drain, heal)
	Delayed bool       `json:"delayed,omitempty"` // soin différé au tour suivant (wish)
}

// Move définition statique d'un move
type Move struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Category MoveCategory `json:"category"`
	Power    int          `json:"power"`
	Accuracy int          `json:"accuracy"`
	PP       int          `json:"pp"`
	Priority int          `json:"priority"`
	Effect   *MoveEffect  `json:"effect,omitempty"`
}

// Noms de stats utilisés par les effets et les stages
const (
	StatAttack  = "attack"
	StatDefense = "defense"
	StatSpAtk   = "sp_atk"
	StatSpDef   = "sp_def"
	StatSpeed   = "speed"
)

// Noms de statuts infligeables
const (
	StatusBurned    = "burned"
	StatusParalysis = "paralysis"
	StatusPoison    = "poison"
	StatusFreeze    = "freeze"
	StatusSleep     = "sleep"
	StatusConfusion = "confusion"
)

func mv(id, name, typ string, cat MoveCategory, power, accuracy, pp, priority int, effect *MoveEffect) Move {
	return Move{ID: id, Name: name, Type: typ, Category: cat, Power: power, Accuracy: accuracy, PP: pp, Priority: priority, Effect: effect}
}

func inflict(status string, chance float64) *MoveEffect {
	return &MoveEffect{Kind: EffectStatusInflict, Status: status, Chance: chance}
}

// moveList table de tous les moves du jeu
var moveList = []Move{
	// Moves utilitaires partagés (présents dans le pool de chaque type)
	mv("recover", "Recover", "", CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectHeal, Percent: 0.5}),
	mv("focus_strike", "Focus Strike", "", CategoryPhysical, 120, 90, 5, -1, &MoveEffect{Kind: EffectFocus}),
	mv("haze", "Haze", "", CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectResetStats}),

	// FIRE
	mv("fire_blast", "Fire Blast", TypeFire, CategorySpecial, 110, 85, 5, 0, inflict(StatusBurned, 0.10)),
	mv("flamethrower", "Flamethrower", TypeFire, CategorySpecial, 90, 100, 10, 0, inflict(StatusBurned, 0.10)),
	mv("fire_punch", "Fire Punch", TypeFire, CategoryPhysical, 75, 100, 15, 0, inflict(StatusBurned, 0.10)),
	mv("flame_rush", "Flame Rush", TypeFire, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("eruption", "Eruption", TypeFire, CategorySpecial, 130, 90, 5, 0, &MoveEffect{Kind: EffectHPScaling}),
	mv("will_o_wisp", "Will-O-Wisp", TypeFire, CategoryStatus, 0, 85, 10, 0, inflict(StatusBurned, 1.0)),

	// WATER
	mv("hydro_pump", "Hydro Pump", TypeWater, CategorySpecial, 110, 80, 5, 0, nil),
	mv("surf", "Surf", TypeWater, CategorySpecial, 90, 100, 10, 0, nil),
	mv("waterfall", "Waterfall", TypeWater, CategoryPhysical, 80, 100, 15, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.20}),
	mv("aqua_jet", "Aqua Jet", TypeWater, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("water_spout", "Water Spout", TypeWater, CategorySpecial, 130, 90, 5, 0, &MoveEffect{Kind: EffectHPScaling}),
	mv("soak_down", "Soak Down", TypeWater, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpeed, Stages: 1}),

	// GRASS
	mv("solar_beam", "Solar Beam", TypeGrass, CategorySpecial, 110, 85, 5, 0, nil),
	mv("energy_ball", "Energy Ball", TypeGrass, CategorySpecial, 90, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.10}),
	mv("leaf_blade", "Leaf Blade", TypeGrass, CategoryPhysical, 85, 100, 15, 0, &MoveEffect{Kind: EffectHighCrit}),
	mv("vine_whip", "Vine Whip", TypeGrass, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("giga_drain", "Giga Drain", TypeGrass, CategorySpecial, 75, 100, 10, 0, &MoveEffect{Kind: EffectDrain, Percent: 0.5}),
	mv("leech_seed", "Leech Seed", TypeGrass, CategoryStatus, 0, 90, 10, 0, &MoveEffect{Kind: EffectLeechSeed}),

	// ELECTRIC
	mv("thunder", "Thunder", TypeElectric, CategorySpecial, 110, 70, 5, 0, inflict(StatusParalysis, 0.20)),
	mv("thunderbolt", "Thunderbolt", TypeElectric, CategorySpecial, 90, 100, 10, 0, inflict(StatusParalysis, 0.10)),
	mv("thunder_punch", "Thunder Punch", TypeElectric, CategoryPhysical, 75, 100, 15, 0, inflict(StatusParalysis, 0.10)),
	mv("spark_dash", "Spark Dash", TypeElectric, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("volt_crash", "Volt Crash", TypeElectric, CategoryPhysical, 120, 90, 5, 0, &MoveEffect{Kind: EffectRecoil, Percent: 0.33}),
	mv("thunder_wave", "Thunder Wave", TypeElectric, CategoryStatus, 0, 90, 15, 0, inflict(StatusParalysis, 1.0)),

	// ICE
	mv("blizzard", "Blizzard", TypeIce, CategorySpecial, 110, 70, 5, 0, inflict(StatusFreeze, 0.10)),
	mv("ice_beam", "Ice Beam", TypeIce, CategorySpecial, 90, 100, 10, 0, inflict(StatusFreeze, 0.10)),
	mv("ice_punch", "Ice Punch", TypeIce, CategoryPhysical, 75, 100, 15, 0, inflict(StatusFreeze, 0.10)),
	mv("ice_shard", "Ice Shard", TypeIce, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("sheer_cold", "Sheer Cold", TypeIce, CategorySpecial, 0, 30, 5, 0, &MoveEffect{Kind: EffectOHKO}),
	mv("frost_veil", "Frost Veil", TypeIce, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpDef, Stages: 1}),

	// EARTH
	mv("earthquake", "Earthquake", TypeEarth, CategoryPhysical, 100, 100, 10, 0, nil),
	mv("earth_power", "Earth Power", TypeEarth, CategorySpecial, 90, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.10}),
	mv("mud_slap", "Mud Slap", TypeEarth, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("fissure", "Fissure", TypeEarth, CategoryPhysical, 0, 30, 5, 0, &MoveEffect{Kind: EffectOHKO}),
	mv("sand_tomb", "Sand Tomb", TypeEarth, CategoryPhysical, 75, 95, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpeed, Stages: 1, Chance: 0.20}),
	mv("quagmire", "Quagmire", TypeEarth, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpeed, Stages: 2}),

	// ROCK
	mv("stone_edge", "Stone Edge", TypeRock, CategoryPhysical, 100, 80, 5, 0, &MoveEffect{Kind: EffectHighCrit}),
	mv("rock_slide", "Rock Slide", TypeRock, CategoryPhysical, 75, 90, 10, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.30}),
	mv("power_gem", "Power Gem", TypeRock, CategorySpecial, 80, 100, 15, 0, nil),
	mv("rock_dart", "Rock Dart", TypeRock, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("head_smash", "Head Smash", TypeRock, CategoryPhysical, 140, 80, 5, 0, &MoveEffect{Kind: EffectRecoil, Percent: 0.5}),
	mv("stone_polish", "Stone Polish", TypeRock, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpeed, Stages: 2}),

	// WIND
	mv("hurricane", "Hurricane", TypeWind, CategorySpecial, 110, 70, 5, 0, inflict(StatusConfusion, 0.30)),
	mv("air_slash", "Air Slash", TypeWind, CategorySpecial, 75, 95, 15, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.30}),
	mv("wing_attack", "Wing Attack", TypeWind, CategoryPhysical, 70, 100, 15, 0, nil),
	mv("gust_step", "Gust Step", TypeWind, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("sky_drop", "Sky Drop", TypeWind, CategoryPhysical, 120, 90, 5, 0, &MoveEffect{Kind: EffectRecoil, Percent: 0.33}),
	mv("tailwind", "Tailwind", TypeWind, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpeed, Stages: 2}),

	// POISON
	mv("sludge_bomb", "Sludge Bomb", TypePoison, CategorySpecial, 90, 100, 10, 0, inflict(StatusPoison, 0.30)),
	mv("venoshock", "Venoshock", TypePoison, CategorySpecial, 65, 100, 10, 0, &MoveEffect{Kind: EffectDoubleIfPoison}),
	mv("poison_jab", "Poison Jab", TypePoison, CategoryPhysical, 80, 100, 15, 0, inflict(StatusPoison, 0.30)),
	mv("toxic_sting", "Toxic Sting", TypePoison, CategoryPhysical, 40, 100, 20, 1, inflict(StatusPoison, 0.10)),
	mv("toxic", "Toxic", TypePoison, CategoryStatus, 0, 90, 10, 0, inflict(StatusPoison, 1.0)),
	mv("acid_armor", "Acid Armor", TypePoison, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatDefense, Stages: 2}),

	// PSYCHIC
	mv("psychic_wave", "Psychic Wave", TypePsychic, CategorySpecial, 90, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.10}),
	mv("psyshock", "Psyshock", TypePsychic, CategorySpecial, 80, 100, 10, 0, &MoveEffect{Kind: EffectUsePhysicalDef}),
	mv("zen_headbutt", "Zen Headbutt", TypePsychic, CategoryPhysical, 80, 90, 15, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.20}),
	mv("mind_jab", "Mind Jab", TypePsychic, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("hypnosis", "Hypnosis", TypePsychic, CategoryStatus, 0, 60, 10, 0, inflict(StatusSleep, 1.0)),
	mv("calm_mind", "Calm Mind", TypePsychic, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpAtk, Stages: 1}),

	// DARK
	mv("dark_pulse", "Dark Pulse", TypeDark, CategorySpecial, 80, 100, 15, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.20}),
	mv("night_slash", "Night Slash", TypeDark, CategoryPhysical, 70, 100, 15, 0, &MoveEffect{Kind: EffectHighCrit}),
	mv("crunch", "Crunch", TypeDark, CategoryPhysical, 80, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatDefense, Stages: 1, Chance: 0.20}),
	mv("sucker_punch", "Sucker Punch", TypeDark, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("nasty_plot", "Nasty Plot", TypeDark, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpAtk, Stages: 2}),
	mv("snarl", "Snarl", TypeDark, CategorySpecial, 55, 95, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpAtk, Stages: 1}),

	// LIGHT
	mv("radiant_beam", "Radiant Beam", TypeLight, CategorySpecial, 110, 85, 5, 0, nil),
	mv("dazzling_gleam", "Dazzling Gleam", TypeLight, CategorySpecial, 80, 100, 10, 0, nil),
	mv("luminous_strike", "Luminous Strike", TypeLight, CategoryPhysical, 75, 100, 15, 0, nil),
	mv("flash_step", "Flash Step", TypeLight, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("blinding_flash", "Blinding Flash", TypeLight, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpAtk, Stages: 1}),
	mv("aurora_heal", "Aurora Heal", TypeLight, CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectHeal, Percent: 0.5}),

	// METAL
	mv("iron_head", "Iron Head", TypeMetal, CategoryPhysical, 80, 100, 15, 0, &MoveEffect{Kind: EffectFlinch, Chance: 0.30}),
	mv("flash_cannon", "Flash Cannon", TypeMetal, CategorySpecial, 80, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.10}),
	mv("metal_claw", "Metal Claw", TypeMetal, CategoryPhysical, 50, 95, 20, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatAttack, Stages: 1, Chance: 0.10}),
	mv("bullet_punch", "Bullet Punch", TypeMetal, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("heavy_slam", "Heavy Slam", TypeMetal, CategoryPhysical, 120, 90, 5, 0, &MoveEffect{Kind: EffectRecoil, Percent: 0.33}),
	mv("iron_defense", "Iron Defense", TypeMetal, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatDefense, Stages: 2}),

	// DRAGON
	mv("draco_meteor", "Draco Meteor", TypeDragon, CategorySpecial, 130, 90, 5, 0, &MoveEffect{Kind: EffectRecoil, Percent: 0.25}),
	mv("dragon_pulse", "Dragon Pulse", TypeDragon, CategorySpecial, 85, 100, 10, 0, nil),
	mv("dragon_claw", "Dragon Claw", TypeDragon, CategoryPhysical, 80, 100, 15, 0, nil),
	mv("dragon_dart", "Dragon Dart", TypeDragon, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("dragon_dance", "Dragon Dance", TypeDragon, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatAttack, Stages: 1}),
	mv("dragon_roar", "Dragon Roar", TypeDragon, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatAttack, Stages: 1}),

	// BUG
	mv("bug_buzz", "Bug Buzz", TypeBug, CategorySpecial, 90, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.10}),
	mv("x_scissor", "X-Scissor", TypeBug, CategoryPhysical, 80, 100, 15, 0, nil),
	mv("pin_needle", "Pin Needle", TypeBug, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("megahorn", "Megahorn", TypeBug, CategoryPhysical, 120, 85, 5, 0, nil),
	mv("silk_trap", "Silk Trap", TypeBug, CategoryStatus, 0, 95, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpeed, Stages: 2}),
	mv("quiver_dance", "Quiver Dance", TypeBug, CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatSpAtk, Stages: 1}),

	// GHOST
	mv("shadow_ball", "Shadow Ball", TypeGhost, CategorySpecial, 80, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpDef, Stages: 1, Chance: 0.20}),
	mv("shadow_claw", "Shadow Claw", TypeGhost, CategoryPhysical, 70, 100, 15, 0, &MoveEffect{Kind: EffectHighCrit}),
	mv("shadow_sneak", "Shadow Sneak", TypeGhost, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("phantom_force", "Phantom Force", TypeGhost, CategoryPhysical, 90, 100, 10, 0, nil),
	mv("curse", "Curse", TypeGhost, CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectCurse, Percent: 0.25}),
	mv("confuse_ray", "Confuse Ray", TypeGhost, CategoryStatus, 0, 100, 10, 0, inflict(StatusConfusion, 1.0)),

	// FIGHTING
	mv("close_combat", "Close Combat", TypeFighting, CategoryPhysical, 120, 100, 5, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatDefense, Stages: 1, Chance: 1.0}),
	mv("aura_sphere", "Aura Sphere", TypeFighting, CategorySpecial, 80, 100, 15, 0, nil),
	mv("brick_break", "Brick Break", TypeFighting, CategoryPhysical, 75, 100, 15, 0, nil),
	mv("mach_punch", "Mach Punch", TypeFighting, CategoryPhysical, 40, 100, 20, 1, nil),
	mv("drain_punch", "Drain Punch", TypeFighting, CategoryPhysical, 75, 100, 10, 0, &MoveEffect{Kind: EffectDrain, Percent: 0.5}),
	mv("bulk_up", "Bulk Up", TypeFighting, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatBoost, Stat: StatAttack, Stages: 1}),

	// FAIRY
	mv("moonblast", "Moonblast", TypeFairy, CategorySpecial, 95, 100, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatSpAtk, Stages: 1, Chance: 0.30}),
	mv("play_rough", "Play Rough", TypeFairy, CategoryPhysical, 90, 90, 10, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatAttack, Stages: 1, Chance: 0.10}),
	mv("fairy_wind", "Fairy Wind", TypeFairy, CategorySpecial, 40, 100, 20, 1, nil),
	mv("draining_kiss", "Draining Kiss", TypeFairy, CategorySpecial, 60, 100, 10, 0, &MoveEffect{Kind: EffectDrain, Percent: 0.75}),
	mv("wish", "Wish", TypeFairy, CategoryStatus, 0, 100, 10, 0, &MoveEffect{Kind: EffectHeal, Percent: 0.5, Delayed: true}),
	mv("charm", "Charm", TypeFairy, CategoryStatus, 0, 100, 15, 0, &MoveEffect{Kind: EffectStatDrop, Stat: StatAttack, Stages: 2}),
}

// sharedMoveIDs moves utilitaires inclus dans le pool de chaque type
var sharedMoveIDs = []string{"recover", "focus_strike", "haze"}

var (
	movesByID map[string]Move
	movePools map[string][]string
)

func init() {
	movesByID = make(map[string]Move, len(moveList))
	movePools = make(map[string][]string, len(ElementalTypes))

	for _, m := range moveList {
		movesByID[m.ID] = m
	}

	for _, t := range ElementalTypes {
		pool := make([]string, 0, 8)
		for _, m := range moveList {
			if m.Type == t {
				pool = append(pool, m.ID)
			}
		}
		pool = append(pool, sharedMoveIDs...)
		movePools[t] = pool
	}
}

// GetMove retourne la définition d'un move par id
func GetMove(id string) (Move, bool) {
	m, ok := movesByID[id]
	return m, ok
}

// MovePool retourne les ids de moves autorisés pour un type
func MovePool(elementalType string) []string {
	return movePools[elementalType]
}

// IsMoveInPool indique si un move appartient au pool d'un type
func IsMoveInPool(elementalType, moveID string) bool {
	for _, id := range movePools[elementalType] {
		if id == moveID {
			return true
		}
	}
	return false
}
