package app

import (
	"context"
	"time"

	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCompletedRetention is how long completed attempts are kept by default.
const DefaultCompletedRetention = 10 * time.Minute

// SessionRepository abstracts how active sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(attemptID string) (*Session, bool)
	Delete(attemptID string)
}

// StartRequest describes a new attempt. Questions is optional; when empty the
// content source is consulted.
type StartRequest struct {
	QuizID    string
	LessonID  string
	UserID    string
	Questions []domain.Question
	Feedback  Feedback
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions SessionRepository
	content  *ContentSource
	recorder Recorder
	logger   *zap.Logger
	metrics  *metrics.Collector
	budget   int
	tick     time.Duration
	retain   time.Duration
	now      func() time.Time
	newID    func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithBudget(seconds int) Option {
	return func(s *QuizService) { s.budget = seconds }
}

// WithTickInterval sets the countdown interval. Zero disables the autonomous
// countdown; callers then drive Session.Tick themselves.
func WithTickInterval(d time.Duration) Option {
	return func(s *QuizService) { s.tick = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *QuizService) { s.metrics = m }
}

func WithFallbackQuestions(questions []domain.Question) Option {
	return func(s *QuizService) { s.content.fallback = questions }
}

// WithCompletedRetention sets how long a completed attempt stays readable
// through Result before it is evicted. Zero keeps it until Close.
func WithCompletedRetention(d time.Duration) Option {
	return func(s *QuizService) { s.retain = d }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, recorder Recorder, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: store,
		content:  NewContentSource(quizzes, nil, nil),
		recorder: recorder,
		logger:   zap.NewNop(),
		budget:   domain.DefaultBudgetSeconds,
		tick:     time.Second,
		retain:   DefaultCompletedRetention,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.content.logger = s.logger
	if len(s.content.fallback) == 0 {
		s.content.fallback = DefaultQuestions()
	}
	return s
}

// Start loads questions, creates a session and starts its countdown.
// Only domain.ErrConfiguration can fail a start; content failures fall back
// to the default question set.
func (s *QuizService) Start(ctx context.Context, req StartRequest) (*Session, error) {
	questions, fallback, err := s.content.Questions(ctx, req.QuizID, req.Questions)
	if err != nil {
		return nil, err
	}

	attemptID := s.newID()
	session, err := NewSession(SessionConfig{
		AttemptID:     attemptID,
		QuizID:        req.QuizID,
		LessonID:      req.LessonID,
		UserID:        req.UserID,
		Questions:     questions,
		BudgetSeconds: s.budget,
		Feedback:      req.Feedback,
		Recorder:      s.recorder,
		Logger:        s.logger,
		Now:           s.now,
		OnComplete: func(result domain.QuizResult, _ domain.SyncReport) {
			s.metrics.SessionCompleted(result.TimedOut, result.PercentageScore)
			if s.retain > 0 {
				time.AfterFunc(s.retain, func() { s.sessions.Delete(attemptID) })
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Put(session)
	s.metrics.SessionStarted(fallback)
	s.logger.Info("quiz session started",
		zap.String("attempt", attemptID),
		zap.String("quiz", req.QuizID),
		zap.Int("questions", len(questions)),
		zap.Bool("fallback", fallback),
	)

	if s.tick > 0 {
		session.StartCountdown(ctx, s.tick)
	}
	return session, nil
}

// SubmitAnswer locks in an answer on the attempt's current question.
func (s *QuizService) SubmitAnswer(_ context.Context, attemptID string, option int) (domain.AnswerFeedback, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return domain.AnswerFeedback{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(option)
}

// Advance moves the attempt to its next question or completes it.
func (s *QuizService) Advance(ctx context.Context, attemptID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.Advance(ctx)
}

// State returns the attempt's current snapshot.
func (s *QuizService) State(attemptID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// Result returns the completed result together with its persistence report.
func (s *QuizService) Result(attemptID string) (domain.QuizResult, domain.SyncReport, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return domain.QuizResult{}, domain.SyncReport{}, domain.ErrSessionNotFound
	}
	result, err := session.Result()
	if err != nil {
		return domain.QuizResult{}, domain.SyncReport{}, err
	}
	return result, session.Sync(), nil
}

// Close releases an attempt. An unfinished attempt is abandoned without a result.
func (s *QuizService) Close(attemptID string) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return
	}
	session.Abandon()
	s.sessions.Delete(attemptID)
}
