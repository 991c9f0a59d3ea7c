package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"civic-quiz-service/internal/domain"
)

var errOffline = errors.New("network unreachable")

// fiveQuestions returns questions whose correct option is i%3.
func fiveQuestions() []domain.Question {
	qs := make([]domain.Question, 5)
	for i := range qs {
		qs[i] = domain.Question{
			ID:                 fmt.Sprintf("q%d", i+1),
			Prompt:             fmt.Sprintf("Question %d", i+1),
			Options:            []string{"A", "B", "C"},
			CorrectOptionIndex: i % 3,
			Explanation:        fmt.Sprintf("Because of rule %d", i+1),
		}
	}
	return qs
}

func correctOption(q domain.Question) int {
	return q.CorrectOptionIndex
}

func wrongOption(q domain.Question) int {
	return (q.CorrectOptionIndex + 1) % len(q.Options)
}

type stubSubmitter struct {
	mu      sync.Mutex
	err     error
	block   bool
	results []domain.QuizResult
	metas   []domain.SubmissionMetadata
}

func (s *stubSubmitter) SubmitResult(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	s.metas = append(s.metas, meta)
	return nil
}

func (s *stubSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

type stubQueue struct {
	mu     sync.Mutex
	err    error
	queued []domain.QuizResult
}

func (q *stubQueue) QueueResultForSync(_ context.Context, result domain.QuizResult, _ domain.SubmissionMetadata) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, result)
	return nil
}

func (q *stubQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queued)
}

type recordingFeedback struct {
	mu       sync.Mutex
	patterns []domain.HapticPattern
}

func (f *recordingFeedback) Emit(p domain.HapticPattern) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, p)
}

type failingQuizRepo struct{}

func (failingQuizRepo) GetQuiz(context.Context, string) (domain.Quiz, error) {
	return domain.Quiz{}, errOffline
}

type fixedQuizRepo struct {
	quiz domain.Quiz
}

func (r fixedQuizRepo) GetQuiz(context.Context, string) (domain.Quiz, error) {
	return r.quiz, nil
}
