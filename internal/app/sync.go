package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civic-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// PendingQueue is the drain side of the offline queue.
type PendingQueue interface {
	PopPending(ctx context.Context) (domain.PendingResult, error)
	RequeuePending(ctx context.Context, pending domain.PendingResult) error
}

// requeueTimeout bounds the put-back of a failed entry. It runs on a context
// detached from the caller's so an expired pass deadline cannot drop the entry.
const requeueTimeout = 5 * time.Second

// SyncPending submits queued results online until the queue is empty or the
// online tier fails. A failed entry goes back to the head of the queue.
func SyncPending(ctx context.Context, queue PendingQueue, online ResultSubmitter, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	synced := 0
	for {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		pending, err := queue.PopPending(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			return synced, nil
		}
		if err != nil {
			return synced, fmt.Errorf("pop pending: %w", err)
		}

		if err := online.SubmitResult(ctx, pending.Result, pending.Metadata); err != nil {
			rqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
			rqErr := queue.RequeuePending(rqCtx, pending)
			cancel()
			if rqErr != nil {
				logger.Error("requeue failed, result dropped", zap.String("attempt", pending.Metadata.AttemptID), zap.Error(rqErr))
			}
			return synced, fmt.Errorf("%w: sync attempt %s: %v", domain.ErrPersistence, pending.Metadata.AttemptID, err)
		}
		logger.Debug("synced queued result", zap.String("attempt", pending.Metadata.AttemptID))
		synced++
	}
}
