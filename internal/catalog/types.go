package catalog

// Les 18 types élémentaires canoniques (clés en majuscules)
const (
	TypeFire     = "FIRE"
	TypeWater    = "WATER"
	TypeGrass    = "GRASS"
	TypeElectric = "ELECTRIC"
	TypeIce      = "ICE"
	TypeEarth    = "EARTH"
	TypeRock     = "ROCK"
	TypeWind     = "WIND"
	TypePoison   = "POISON"
	TypePsychic  = "PSYCHIC"
	TypeDark     = "DARK"
	TypeLight    = "LIGHT"
	TypeMetal    = "METAL"
	TypeDragon   = "DRAGON"
	TypeBug      = "BUG"
	TypeGhost    = "GHOST"
	TypeFighting = "FIGHTING"
	TypeFairy    = "FAIRY"
)

// ElementalTypes liste ordonnée des 18 types
var ElementalTypes = []string{
	TypeFire, TypeWater, TypeGrass, TypeElectric, TypeIce, TypeEarth,
	TypeRock, TypeWind, TypePoison, TypePsychic, TypeDark, TypeLight,
	TypeMetal, TypeDragon, TypeBug, TypeGhost, TypeFighting, TypeFairy,
}

// typeChart matrice d'efficacité (attaquant -> défenseur -> multiplicateur).
// Les entrées absentes valent 1.0. Valeurs autorisées: 0, 0.5, 1.0, 2.0.
var typeChart = map[string]map[string]float64{
	TypeFire: {
		TypeGrass: 2.0, TypeIce: 2.0, TypeBug: 2.0, TypeMetal: 2.0,
		TypeFire: 0.5, TypeWater: 0.5, TypeRock: 0.5, TypeDragon: 0.5,
	},
	TypeWater: {
		TypeFire: 2.0, TypeEarth: 2.0, TypeRock: 2.0,
		TypeWater: 0.5, TypeGrass: 0.5, TypeDragon: 0.5,
	},
	TypeGrass: {
		TypeWater: 2.0, TypeEarth: 2.0, TypeRock: 2.0,
		TypeFire: 0.5, TypeGrass: 0.5, TypePoison: 0.5, TypeWind: 0.5, TypeBug: 0.5, TypeDragon: 0.5, TypeMetal: 0.5,
	},
	TypeElectric: {
		TypeWater: 2.0, TypeWind: 2.0,
		TypeElectric: 0.5, TypeGrass: 0.5, TypeDragon: 0.5,
		TypeEarth: 0.0,
	},
	TypeIce: {
		TypeGrass: 2.0, TypeEarth: 2.0, TypeWind: 2.0, TypeDragon: 2.0,
		TypeFire: 0.5, TypeWater: 0.5, TypeIce: 0.5, TypeMetal: 0.5,
	},
	TypeEarth: {
		TypeFire: 2.0, TypeElectric: 2.0, TypePoison: 2.0, TypeRock: 2.0, TypeMetal: 2.0,
		TypeGrass: 0.5, TypeBug: 0.5,
		TypeWind: 0.0,
	},
	TypeRock: {
		TypeFire: 2.0, TypeIce: 2.0, TypeWind: 2.0, TypeBug: 2.0,
		TypeFighting: 0.5, TypeEarth: 0.5, TypeMetal: 0.5,
	},
	TypeWind: {
		TypeGrass: 2.0, TypeFighting: 2.0, TypeBug: 2.0,
		TypeElectric: 0.5, TypeRock: 0.5, TypeMetal: 0.5,
	},
	TypePoison: {
		TypeGrass: 2.0, TypeFairy: 2.0,
		TypePoison: 0.5, TypeEarth: 0.5, TypeRock: 0.5, TypeGhost: 0.5,
		TypeMetal: 0.0,
	},
	TypePsychic: {
		TypeFighting: 2.0, TypePoison: 2.0,
		TypePsychic: 0.5, TypeMetal: 0.5,
		TypeDark: 0.0,
	},
	TypeDark: {
		TypePsychic: 2.0, TypeGhost: 2.0,
		TypeFighting: 0.5, TypeDark: 0.5, TypeFairy: 0.5,
	},
	TypeLight: {
		TypeDark: 2.0, TypeGhost: 2.0,
		TypeLight: 0.5, TypeMetal: 0.5,
	},
	TypeMetal: {
		TypeIce: 2.0, TypeRock: 2.0, TypeFairy: 2.0,
		TypeFire: 0.5, TypeWater: 0.5, TypeElectric: 0.5, TypeMetal: 0.5,
	},
	TypeDragon: {
		TypeDragon: 2.0,
		TypeMetal:  0.5,
		TypeFairy:  0.0,
	},
	TypeBug: {
		TypeGrass: 2.0, TypePsychic: 2.0, TypeDark: 2.0,
		TypeFire: 0.5, TypeFighting: 0.5, TypePoison: 0.5, TypeWind: 0.5, TypeGhost: 0.5, TypeMetal: 0.5, TypeFairy: 0.5,
	},
	TypeGhost: {
		TypePsychic: 2.0, TypeGhost: 2.0,
		TypeDark:  0.5,
		TypeLight: 0.5,
	},
	TypeFighting: {
		TypeIce: 2.0, TypeRock: 2.0, TypeDark: 2.0, TypeMetal: 2.0,
		TypePoison: 0.5, TypeWind: 0.5, TypePsychic: 0.5, TypeBug: 0.5, TypeFairy: 0.5,
		TypeGhost: 0.0,
	},
	TypeFairy: {
		TypeFighting: 2.0, TypeDragon: 2.0, TypeDark: 2.0,
		TypeFire: 0.5, TypePoison: 0.5, TypeMetal: 0.5,
	},
}

// IsValidType indique si le nom de type fait partie des 18 types canoniques
func IsValidType(name string) bool {
	for _, t := range ElementalTypes {
		if t == name {
			return true
		}
	}
	return false
}

// TypeEffectiveness retourne le multiplicateur brut (attaquant -> défenseur).
// Entrée absente = 1.0.
func TypeEffectiveness(attacking, defending string) float64 {
	row, ok := typeChart[attacking]
	if !ok {
		return 1.0
	}
	mult, ok := row[defending]
	if !ok {
		return 1.0
	}
	return mult
}
