package selection

import (
	"math/rand/v2"
	"sync"
)

// Permuter randomly permutes n elements through swap. *rand.Rand satisfies it.
type Permuter interface {
	Shuffle(n int, swap func(i, j int))
}

// IdentityPermuter leaves every tie run in its sorted order.
type IdentityPermuter struct{}

func (IdentityPermuter) Shuffle(int, func(i, j int)) {}

type globalPermuter struct{}

func (globalPermuter) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// NewRandomPermuter uses the process-wide math/rand/v2 source, which is safe
// for concurrent use.
func NewRandomPermuter() Permuter {
	return globalPermuter{}
}

type seededPermuter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPermuter returns a deterministic permuter for reproducible runs.
func NewSeededPermuter(seed uint64) Permuter {
	return &seededPermuter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *seededPermuter) Shuffle(n int, swap func(i, j int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng.Shuffle(n, swap)
}
