package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func sampleResult() (domain.QuizResult, domain.SubmissionMetadata) {
	result := domain.QuizResult{AttemptID: "a1", QuizID: "quiz-1", TotalQuestions: 5, CorrectAnswers: 3, PercentageScore: 60}
	meta := domain.SubmissionMetadata{AttemptID: "a1", QuizID: "quiz-1", UserID: "u1"}
	return result, meta
}

func TestRecorderSubmitsOnline(t *testing.T) {
	online, offline := &stubSubmitter{}, &stubQueue{}
	rec := app.NewResultRecorder(online, offline, time.Second, nil, metrics.New())

	result, meta := sampleResult()
	report := rec.Record(context.Background(), result, meta)

	assert.Equal(t, domain.SyncSubmitted, report.Status)
	assert.NoError(t, report.Warning)
	assert.Equal(t, 1, online.count())
	assert.Equal(t, 0, offline.count())
}

func TestRecorderFallsBackToOfflineQueue(t *testing.T) {
	online, offline := &stubSubmitter{err: errOffline}, &stubQueue{}
	rec := app.NewResultRecorder(online, offline, time.Second, nil, nil)

	result, meta := sampleResult()
	report := rec.Record(context.Background(), result, meta)

	assert.Equal(t, domain.SyncQueued, report.Status)
	assert.NoError(t, report.Warning)
	assert.Equal(t, 1, offline.count())
}

func TestRecorderQueuesWhenOnlineMissing(t *testing.T) {
	offline := &stubQueue{}
	rec := app.NewResultRecorder(nil, offline, time.Second, nil, nil)

	result, meta := sampleResult()
	assert.Equal(t, domain.SyncQueued, rec.Record(context.Background(), result, meta).Status)
	assert.Equal(t, 1, offline.count())
}

func TestRecorderReportsWarningWhenBothTiersFail(t *testing.T) {
	online := &stubSubmitter{err: errOffline}
	offline := &stubQueue{err: errors.New("disk full")}
	rec := app.NewResultRecorder(online, offline, time.Second, nil, nil)

	result, meta := sampleResult()
	report := rec.Record(context.Background(), result, meta)

	assert.Equal(t, domain.SyncFailed, report.Status)
	assert.ErrorIs(t, report.Warning, domain.ErrPersistence)
	assert.Contains(t, report.Warning.Error(), "disk full")
}

func TestRecorderBoundsOnlineAttempt(t *testing.T) {
	online, offline := &stubSubmitter{block: true}, &stubQueue{}
	rec := app.NewResultRecorder(online, offline, 20*time.Millisecond, nil, nil)

	result, meta := sampleResult()
	start := time.Now()
	report := rec.Record(context.Background(), result, meta)

	assert.Equal(t, domain.SyncQueued, report.Status)
	assert.Less(t, time.Since(start), time.Second)
}
