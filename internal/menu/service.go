package menu

import (
	"context"

	"github.com/npavlov/go-luhn-service/internal/luhn"
)

// LocalService runs the engine in process.
type LocalService struct {
	engine *luhn.Engine
}

func NewLocalService(engine *luhn.Engine) *LocalService {
	return &LocalService{engine: engine}
}

func (s *LocalService) Validate(_ context.Context, number string) (bool, error) {
	return s.engine.Validate(number), nil
}

func (s *LocalService) Generate(_ context.Context, length, count int) ([]string, error) {
	numbers := make([]string, 0, count)
	for range count {
		number, err := s.engine.Generate(length)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
	}

	return numbers, nil
}
