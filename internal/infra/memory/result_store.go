package memory

import (
	"context"
	"sync"

	"civic-quiz-service/internal/domain"
)

// ResultStore keeps submitted results in memory. It stands in for the online
// tier when no database is configured.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.PendingResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.PendingResult)}
}

// SubmitResult stores the result once per attempt; resubmissions are ignored.
func (s *ResultStore) SubmitResult(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[meta.AttemptID]; ok {
		return nil
	}
	s.results[meta.AttemptID] = domain.PendingResult{Result: result, Metadata: meta}
	return nil
}

func (s *ResultStore) Get(attemptID string) (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.results[attemptID]
	return entry.Result, ok
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
