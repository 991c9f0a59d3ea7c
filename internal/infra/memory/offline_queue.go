package memory

import (
	"context"
	"sync"
	"time"

	"civic-quiz-service/internal/domain"
)

// OfflineQueue is a FIFO of results waiting for sync. Contents are lost on restart.
type OfflineQueue struct {
	mu      sync.Mutex
	now     func() time.Time
	pending []domain.PendingResult
}

func NewOfflineQueue() *OfflineQueue {
	return &OfflineQueue{now: time.Now}
}

func (q *OfflineQueue) QueueResultForSync(_ context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, domain.PendingResult{Result: result, Metadata: meta, QueuedAt: q.now()})
	return nil
}

func (q *OfflineQueue) PopPending(_ context.Context) (domain.PendingResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return domain.PendingResult{}, domain.ErrQueueEmpty
	}
	head := q.pending[0]
	q.pending = q.pending[1:]
	return head, nil
}

func (q *OfflineQueue) RequeuePending(_ context.Context, pending domain.PendingResult) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append([]domain.PendingResult{pending}, q.pending...)
	return nil
}

func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
