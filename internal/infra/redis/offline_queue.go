package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"civic-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the Redis list holding results waiting for sync.
const DefaultQueueKey = "quiz:results:pending"

// OfflineQueue keeps unsynced results in a Redis list: RPUSH to enqueue,
// LPOP to drain, LPUSH to put a failed entry back at the head. Entries that
// cannot be decoded are moved to {key}:dead.
type OfflineQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewOfflineQueue(client *redis.Client, key string) *OfflineQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &OfflineQueue{client: client, key: key, now: time.Now}
}

func (q *OfflineQueue) QueueResultForSync(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	data, err := json.Marshal(domain.PendingResult{Result: result, Metadata: meta, QueuedAt: q.now()})
	if err != nil {
		return fmt.Errorf("marshal pending result: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("queue result %s: %w", meta.AttemptID, err)
	}
	return nil
}

func (q *OfflineQueue) PopPending(ctx context.Context) (domain.PendingResult, error) {
	data, err := q.client.LPop(ctx, q.key).Bytes()
	if isMiss(err) {
		return domain.PendingResult{}, domain.ErrQueueEmpty
	}
	if err != nil {
		return domain.PendingResult{}, fmt.Errorf("pop pending result: %w", err)
	}
	var pending domain.PendingResult
	if err := json.Unmarshal(data, &pending); err != nil {
		if dlErr := q.client.RPush(ctx, q.DeadLetterKey(), data).Err(); dlErr != nil {
			return domain.PendingResult{}, fmt.Errorf("unmarshal pending result: %w (dead-letter failed: %v, payload %q)", err, dlErr, data)
		}
		return domain.PendingResult{}, fmt.Errorf("unmarshal pending result, moved to %s: %w", q.DeadLetterKey(), err)
	}
	return pending, nil
}

// DeadLetterKey is the list holding entries that could not be decoded.
func (q *OfflineQueue) DeadLetterKey() string {
	return q.key + ":dead"
}

func (q *OfflineQueue) RequeuePending(ctx context.Context, pending domain.PendingResult) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending result: %w", err)
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Len returns the number of queued results.
func (q *OfflineQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
