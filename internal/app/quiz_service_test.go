package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndPlayToCompletion(t *testing.T) {
	ctx := context.Background()
	online := memory.NewResultStore()
	service, store := newTestService(app.NewResultRecorder(online, memory.NewOfflineQueue(), time.Second, nil, nil))

	session, err := service.Start(ctx, app.StartRequest{QuizID: "quiz-1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "attempt-1", session.ID())
	assert.Equal(t, 1, store.Len())

	qs := fiveQuestions()
	for i, q := range qs {
		fb, err := service.SubmitAnswer(ctx, session.ID(), correctOption(q))
		require.NoError(t, err)
		assert.Equal(t, i+1, fb.Streak)
		_, err = service.Advance(ctx, session.ID())
		require.NoError(t, err)
	}

	result, report, err := service.Result(session.ID())
	require.NoError(t, err)
	assert.Equal(t, 100, result.PercentageScore)
	assert.Equal(t, domain.SyncSubmitted, report.Status)

	stored, ok := online.Get(session.ID())
	require.True(t, ok)
	assert.Equal(t, 5, stored.CorrectAnswers)

	service.Close(session.ID())
	assert.Equal(t, 0, store.Len())
}

func TestStartFallsBackToDefaultQuestions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	session, err := service.Start(ctx, app.StartRequest{QuizID: "unknown-lesson"})
	require.NoError(t, err)

	state := session.State()
	assert.Equal(t, domain.PhaseInProgress, state.Phase)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 0, state.MaxStreak)
	assert.Equal(t, domain.DefaultBudgetSeconds, state.RemainingSeconds)
	assert.Equal(t, len(app.DefaultQuestions()), state.TotalQuestions)
	assert.Equal(t, app.DefaultQuestions()[0].ID, state.Question.ID)
}

func TestStartRejectsMalformedSuppliedQuestions(t *testing.T) {
	service, store := newTestService(nil)

	_, err := service.Start(context.Background(), app.StartRequest{
		QuizID:    "quiz-1",
		Questions: []domain.Question{{ID: "q1", Options: []string{"only one"}}},
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 0, store.Len())
}

func TestOnlineFailureStillReturnsResult(t *testing.T) {
	ctx := context.Background()
	offline := memory.NewOfflineQueue()
	service, _ := newTestService(app.NewResultRecorder(&stubSubmitter{err: errOffline}, offline, time.Second, nil, nil))

	session, err := service.Start(ctx, app.StartRequest{QuizID: "quiz-1", LessonID: "lesson-2"})
	require.NoError(t, err)
	for _, q := range fiveQuestions() {
		_, err := service.SubmitAnswer(ctx, session.ID(), wrongOption(q))
		require.NoError(t, err)
		_, err = service.Advance(ctx, session.ID())
		require.NoError(t, err)
	}

	result, report, err := service.Result(session.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, domain.SyncQueued, report.Status)
	assert.Equal(t, 1, offline.Len())

	pending, err := offline.PopPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lesson-2", pending.Metadata.LessonID)
}

func TestUnknownAttempt(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	_, err := service.SubmitAnswer(ctx, "nope", 0)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	_, err = service.Advance(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = service.State("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, _, err = service.Result("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	service.Close("nope")
}

func TestResultBeforeCompletion(t *testing.T) {
	service, _ := newTestService(nil)
	session, err := service.Start(context.Background(), app.StartRequest{QuizID: "quiz-1"})
	require.NoError(t, err)

	_, _, err = service.Result(session.ID())
	assert.ErrorIs(t, err, domain.ErrResultNotReady)
}

func TestServiceCountdownTimesOut(t *testing.T) {
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Questions: fiveQuestions()},
	}), time.Minute)
	service := app.NewQuizService(store, quizRepo, nil,
		app.WithBudget(2),
		app.WithTickInterval(time.Millisecond),
	)

	session, err := service.Start(context.Background(), app.StartRequest{QuizID: "quiz-1"})
	require.NoError(t, err)

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not time out")
	}
	result, _, err := service.Result(session.ID())
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.Equal(t, 2, result.TimeSpentSeconds)
}

func TestCompletedSessionEvictedAfterRetention(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Questions: fiveQuestions()},
	}), time.Minute)
	service := app.NewQuizService(store, quizRepo, nil,
		app.WithTickInterval(0),
		app.WithCompletedRetention(20*time.Millisecond),
	)

	session, err := service.Start(ctx, app.StartRequest{QuizID: "quiz-1"})
	require.NoError(t, err)
	for _, q := range fiveQuestions() {
		_, err := service.SubmitAnswer(ctx, session.ID(), correctOption(q))
		require.NoError(t, err)
		_, err = service.Advance(ctx, session.ID())
		require.NoError(t, err)
	}

	_, _, err = service.Result(session.ID())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	_, _, err = service.Result(session.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUnfinishedSessionNotEvicted(t *testing.T) {
	store := memory.NewSessionStore()
	service := app.NewQuizService(store, nil, nil,
		app.WithTickInterval(0),
		app.WithCompletedRetention(time.Millisecond),
	)
	_, err := service.Start(context.Background(), app.StartRequest{QuizID: "quiz-1", Questions: fiveQuestions()})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, store.Len())
}

func newTestService(recorder app.Recorder) (*app.QuizService, *memory.SessionStore) {
	sessionStore := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Questions: fiveQuestions()},
	}), 5*time.Minute)
	ids := 0
	service := app.NewQuizService(sessionStore, quizRepo, recorder,
		app.WithTickInterval(0),
		app.WithIDGenerator(func() string {
			ids++
			return "attempt-" + string(rune('0'+ids))
		}),
	)
	return service, sessionStore
}
