package engine

import (
	"arena/internal/utils"
)

// RNG source d'aléa explicite injectée dans les formules; permet
// un moteur déterministe sous test
type RNG interface {
	Float64() float64
	Intn(n int) int
}

// secureRNG source par défaut, crypto-sécurisée
type secureRNG struct{}

func (secureRNG) Float64() float64 { return utils.SecureRandFloat64() }
func (secureRNG) Intn(n int) int   { return utils.SecureRandIntn(n) }

// NewSecureRNG retourne la source d'aléa de production
func NewSecureRNG() RNG {
	return secureRNG{}
}

// SeededRNG générateur congruentiel déterministe pour les tests
type SeededRNG struct {
	state uint64
}

// NewSeededRNG crée un générateur déterministe à partir d'une graine
func NewSeededRNG(seed uint64) *SeededRNG {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &SeededRNG{state: seed}
}

func (r *SeededRNG) next() uint64 {
	// xorshift64*
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545f4914f6cdd1d
}

// Float64 retourne un flottant dans [0, 1)
func (r *SeededRNG) Float64() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}

// Intn retourne un entier dans [0, n)
func (r *SeededRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}
