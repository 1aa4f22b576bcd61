package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

var ErrNoQuestions = errors.New("no trivia questions available")

// MemoryQuestions is a fixed in-process question bank.
type MemoryQuestions struct {
	questions []domain.Question
	intn      func(n int) int
}

func NewMemoryQuestions(qs []domain.Question) *MemoryQuestions {
	return &MemoryQuestions{questions: qs, intn: rand.IntN}
}

func (m *MemoryQuestions) Random(context.Context) (domain.Question, error) {
	if len(m.questions) == 0 {
		return domain.Question{}, ErrNoQuestions
	}
	return m.questions[m.intn(len(m.questions))], nil
}
