package dice

import (
	"math/rand/v2"
	"sync"
)

// pcgStream is the fixed second PCG word; only the seed varies between sessions
const pcgStream = 0x9e3779b97f4a7c15

// randomRoller implements Roller on top of a PCG source
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRoller creates a roller whose sequence is fully determined by seed
func NewSeededRoller(seed uint64) Roller {
	return &randomRoller{
		rng: rand.New(rand.NewPCG(seed, seed^pcgStream)),
	}
}

// Intn implements Roller.Intn
func (r *randomRoller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Float64 implements Roller.Float64
func (r *randomRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NewSeed returns a fresh random seed for a session
func NewSeed() uint64 {
	return rand.Uint64()
}
