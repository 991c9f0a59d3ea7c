package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/metrics"
	"go.uber.org/zap"
)

// ResultSubmitter is the online persistence tier.
type ResultSubmitter interface {
	SubmitResult(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error
}

// OfflineQueue holds results for later sync when online submission fails.
type OfflineQueue interface {
	QueueResultForSync(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error
}

var errOnlineUnavailable = errors.New("online submission not configured")

// ResultRecorder tries the online tier once and falls back to the offline
// queue. It never returns an error; failures end up in the SyncReport.
type ResultRecorder struct {
	online  ResultSubmitter
	offline OfflineQueue
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewResultRecorder builds a recorder. online or offline may be nil; timeout
// bounds the online attempt so the fallback happens within that window.
func NewResultRecorder(online ResultSubmitter, offline OfflineQueue, timeout time.Duration, logger *zap.Logger, m *metrics.Collector) *ResultRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultRecorder{
		online:  online,
		offline: offline,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

func (r *ResultRecorder) Record(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) domain.SyncReport {
	log := r.logger.With(zap.String("attempt", meta.AttemptID), zap.String("quiz", meta.QuizID))

	onlineErr := r.submitOnline(ctx, result, meta)
	if onlineErr == nil {
		r.metrics.Persisted(string(domain.SyncSubmitted))
		return domain.SyncReport{Status: domain.SyncSubmitted}
	}
	log.Warn("online result submission failed, queueing for sync", zap.Error(onlineErr))

	if r.offline == nil {
		return r.failed(log, onlineErr, errors.New("offline queue not configured"))
	}
	if err := r.offline.QueueResultForSync(ctx, result, meta); err != nil {
		return r.failed(log, onlineErr, err)
	}
	r.metrics.Persisted(string(domain.SyncQueued))
	return domain.SyncReport{Status: domain.SyncQueued}
}

func (r *ResultRecorder) submitOnline(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	if r.online == nil {
		return errOnlineUnavailable
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.online.SubmitResult(ctx, result, meta)
}

func (r *ResultRecorder) failed(log *zap.Logger, onlineErr, offlineErr error) domain.SyncReport {
	log.Error("result could not be persisted", zap.NamedError("online", onlineErr), zap.NamedError("offline", offlineErr))
	r.metrics.Persisted(string(domain.SyncFailed))
	return domain.SyncReport{
		Status:  domain.SyncFailed,
		Warning: fmt.Errorf("%w: online: %v; offline: %v", domain.ErrPersistence, onlineErr, offlineErr),
	}
}
