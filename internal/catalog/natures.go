package catalog

// Nature paire (stat boostée +10%, stat réduite -10%); une nature
// équilibrée n'a ni boost ni réduction.
type Nature struct {
	Name   string `json:"name"`
	Boost  string `json:"boost,omitempty"`
	Reduce string `json:"reduce,omitempty"`
}

// natureList liste fixe des 25 natures
var natureList = []Nature{
	// Natures équilibrées
	{Name: "balanced"},
	{Name: "hardy"},
	{Name: "docile"},
	{Name: "serious"},
	{Name: "quirky"},

	// Attack+
	{Name: "lonely", Boost: StatAttack, Reduce: StatDefense},
	{Name: "brave", Boost: StatAttack, Reduce: StatSpeed},
	{Name: "adamant", Boost: StatAttack, Reduce: StatSpAtk},
	{Name: "naughty", Boost: StatAttack, Reduce: StatSpDef},

	// Defense+
	{Name: "bold", Boost: StatDefense, Reduce: StatAttack},
	{Name: "relaxed", Boost: StatDefense, Reduce: StatSpeed},
	{Name: "impish", Boost: StatDefense, Reduce: StatSpAtk},
	{Name: "lax", Boost: StatDefense, Reduce: StatSpDef},

	// Speed+
	{Name: "timid", Boost: StatSpeed, Reduce: StatAttack},
	{Name: "hasty", Boost: StatSpeed, Reduce: StatDefense},
	{Name: "jolly", Boost: StatSpeed, Reduce: StatSpAtk},
	{Name: "naive", Boost: StatSpeed, Reduce: StatSpDef},

	// SpAtk+
	{Name: "modest", Boost: StatSpAtk, Reduce: StatAttack},
	{Name: "mild", Boost: StatSpAtk, Reduce: StatDefense},
	{Name: "quiet", Boost: StatSpAtk, Reduce: StatSpeed},
	{Name: "rash", Boost: StatSpAtk, Reduce: StatSpDef},

	// SpDef+
	{Name: "calm", Boost: StatSpDef, Reduce: StatAttack},
	{Name: "gentle", Boost: StatSpDef, Reduce: StatDefense},
	{Name: "sassy", Boost: StatSpDef, Reduce: StatSpeed},
	{Name: "careful", Boost: StatSpDef, Reduce: StatSpAtk},
}

var naturesByName map[string]Nature

func init() {
	naturesByName = make(map[string]Nature, len(natureList))
	for _, n := range natureList {
		naturesByName[n.Name] = n
	}
}

// GetNature retourne une nature par nom
func GetNature(name string) (Nature, bool) {
	n, ok := naturesByName[name]
	return n, ok
}

// NatureMultiplier retourne le multiplicateur de nature pour une stat
func NatureMultiplier(nature Nature, stat string) float64 {
	switch stat {
	case nature.Boost:
		return 1.1
	case nature.Reduce:
		return 0.9
	default:
		return 1.0
	}
}

// Natures retourne la liste complète des natures
func Natures() []Nature {
	return natureList
}
