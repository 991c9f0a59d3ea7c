package app

import (
	"context"
	"fmt"

	"civic-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ContentSource resolves the question set for a new session. A failing or
// empty provider never leaves a user without a quiz: the fallback set is used.
type ContentSource struct {
	quizzes  QuizRepository
	fallback []domain.Question
	logger   *zap.Logger
}

func NewContentSource(quizzes QuizRepository, fallback []domain.Question, logger *zap.Logger) *ContentSource {
	if len(fallback) == 0 {
		fallback = DefaultQuestions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentSource{quizzes: quizzes, fallback: fallback, logger: logger}
}

// Questions returns supplied when it is non-empty, otherwise the provider's
// questions for quizID, otherwise the fallback set. The chosen set is
// validated; usedFallback reports whether the built-in set was chosen.
func (c *ContentSource) Questions(ctx context.Context, quizID string, supplied []domain.Question) (questions []domain.Question, usedFallback bool, err error) {
	questions = supplied
	if len(questions) == 0 {
		questions, err = c.fetch(ctx, quizID)
		if err != nil || len(questions) == 0 {
			c.logger.Warn("using default question set", zap.String("quiz", quizID), zap.Error(err))
			questions = c.fallback
			usedFallback = true
		}
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, usedFallback, err
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, usedFallback, nil
}

func (c *ContentSource) fetch(ctx context.Context, quizID string) ([]domain.Question, error) {
	if c.quizzes == nil {
		return nil, fmt.Errorf("%w: no content provider", domain.ErrContentFetch)
	}
	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContentFetch, err)
	}
	return quiz.Questions, nil
}
