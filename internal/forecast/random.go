package forecast

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform draws on [0, 1) for volatility perturbation.
// Implementations need not be safe for concurrent use; see LockedSource.
type Source interface {
	NextUniform() float64
}

type pcgSource struct {
	r *rand.Rand
}

func (s *pcgSource) NextUniform() float64 {
	return s.r.Float64()
}

// NewSeededSource returns a deterministic Source. Equal seeds give equal sequences.
func NewSeededSource(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a Source seeded from the runtime's entropy.
func NewRandomSource() Source {
	return &pcgSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// LockedSource serializes access to a Source shared across goroutines.
type LockedSource struct {
	mu  sync.Mutex
	src Source
}

// NewLockedSource wraps src.
func NewLockedSource(src Source) *LockedSource {
	return &LockedSource{src: src}
}

// NextUniform implements Source.
func (l *LockedSource) NextUniform() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.NextUniform()
}
