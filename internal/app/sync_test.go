package app_test

import (
	"context"
	"testing"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueResults(t *testing.T, q *memory.OfflineQueue, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, q.QueueResultForSync(context.Background(),
			domain.QuizResult{AttemptID: id}, domain.SubmissionMetadata{AttemptID: id}))
	}
}

func TestSyncPendingDrainsQueue(t *testing.T) {
	queue := memory.NewOfflineQueue()
	queueResults(t, queue, "a1", "a2", "a3")
	online := &stubSubmitter{}

	synced, err := app.SyncPending(context.Background(), queue, online, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, synced)
	assert.Equal(t, 0, queue.Len())
	assert.Equal(t, "a1", online.metas[0].AttemptID)
}

func TestSyncPendingStopsOnOnlineFailure(t *testing.T) {
	queue := memory.NewOfflineQueue()
	queueResults(t, queue, "a1", "a2")

	synced, err := app.SyncPending(context.Background(), queue, &stubSubmitter{err: errOffline}, nil)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 0, synced)
	assert.Equal(t, 2, queue.Len())

	head, err := queue.PopPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1", head.Metadata.AttemptID)
}
