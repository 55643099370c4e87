package game

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness the engine draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a time-seeded Source that is safe for concurrent use.
func NewSource() Source {
	return &lockedSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}
