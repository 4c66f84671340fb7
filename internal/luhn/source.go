package luhn

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniformly distributed integers in [0, n).
// Implementations must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec
}

// DefaultSource returns a Source backed by the runtime-seeded math/rand/v2 generator.
func DefaultSource() Source {
	return globalSource{}
}

// LockedSource is a seeded, mutex-guarded Source for reproducible sequences.
type LockedSource struct {
	mx  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a reproducible Source for the given seed.
func NewSource(seed uint64) *LockedSource {
	return &LockedSource{
		mx:  sync.Mutex{},
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec
	}
}

func (s *LockedSource) IntN(n int) int {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.rng.IntN(n)
}

// Engine binds the Luhn operations to a random source.
type Engine struct {
	src Source
}

// NewEngine - constructor for Engine. A nil src falls back to DefaultSource.
func NewEngine(src Source) *Engine {
	if src == nil {
		src = DefaultSource()
	}

	return &Engine{src: src}
}

func (e *Engine) Validate(number string) bool {
	return IsValid(number)
}

func (e *Engine) Generate(length int) (string, error) {
	return Generate(e.src, length)
}

func (e *Engine) CheckDigit(payload string) (byte, error) {
	return CheckDigit(payload)
}
