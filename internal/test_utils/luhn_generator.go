package testutils

import (
	"fmt"
	"sync"

	"github.com/npavlov/go-luhn-service/internal/luhn"
)

// GenerateLuhnNumber generates a Luhn-valid number of the specified length.
func GenerateLuhnNumber(length int) string {
	number, err := luhn.Generate(luhn.DefaultSource(), length)
	if err != nil {
		panic(fmt.Sprintf("Length must be positive: %v", err))
	}

	return number
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{
		mu:     sync.Mutex{},
		values: values,
		pos:    0,
	}
}

func (s *SequenceSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}

	value := s.values[s.pos%len(s.values)] % n
	s.pos++

	return value
}
