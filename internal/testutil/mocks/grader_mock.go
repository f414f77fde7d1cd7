package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bahar-app/bahar/internal/models"
)

// MockGrader is a mock implementation of scheduler.Grader
type MockGrader struct {
	mock.Mock
}

func (m *MockGrader) Next(card models.Flashcard, rating models.Rating, now time.Time) (models.Flashcard, error) {
	args := m.Called(card, rating, now)
	return args.Get(0).(models.Flashcard), args.Error(1)
}
