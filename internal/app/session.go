package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civic-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// Feedback receives the haptic signal emitted when an answer is locked in.
type Feedback interface {
	Emit(pattern domain.HapticPattern)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(pattern domain.HapticPattern)

func (f FeedbackFunc) Emit(pattern domain.HapticPattern) { f(pattern) }

type nopFeedback struct{}

func (nopFeedback) Emit(domain.HapticPattern) {}

// Recorder persists a completed result and reports where it ended up.
type Recorder interface {
	Record(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) domain.SyncReport
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, domain.QuizResult, domain.SubmissionMetadata) domain.SyncReport {
	return domain.SyncReport{Status: domain.SyncPending}
}

// SessionConfig carries everything a session needs to run one attempt.
type SessionConfig struct {
	AttemptID     string
	QuizID        string
	LessonID      string
	UserID        string
	Questions     []domain.Question
	BudgetSeconds int
	Feedback      Feedback
	Recorder      Recorder
	Logger        *zap.Logger
	Now           func() time.Time
	// OnComplete runs after the result has been recorded.
	OnComplete func(result domain.QuizResult, report domain.SyncReport)
}

// Session is the state machine for a single quiz attempt.
type Session struct {
	id         string
	quizID     string
	lessonID   string
	userID     string
	questions  []domain.Question
	budget     int
	feedback   Feedback
	recorder   Recorder
	logger     *zap.Logger
	now        func() time.Time
	onComplete func(domain.QuizResult, domain.SyncReport)

	mu                 sync.Mutex
	phase              domain.Phase
	current            int
	selected           *int
	explanationVisible bool
	score              int
	streak             int
	maxStreak          int
	remaining          int
	answers            domain.AnswerRecord
	result             *domain.QuizResult
	report             domain.SyncReport
	countdown          *Countdown
	subscribers        map[chan domain.SessionState]struct{}
	done               chan struct{}
}

// NewSession validates the question set and returns a session ready to play.
// Malformed questions fail with domain.ErrConfiguration.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := domain.ValidateQuestions(cfg.Questions); err != nil {
		return nil, err
	}
	if cfg.BudgetSeconds <= 0 {
		cfg.BudgetSeconds = domain.DefaultBudgetSeconds
	}
	if cfg.Feedback == nil {
		cfg.Feedback = nopFeedback{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	questions := make([]domain.Question, len(cfg.Questions))
	copy(questions, cfg.Questions)

	s := &Session{
		id:          cfg.AttemptID,
		quizID:      cfg.QuizID,
		lessonID:    cfg.LessonID,
		userID:      cfg.UserID,
		questions:   questions,
		budget:      cfg.BudgetSeconds,
		feedback:    cfg.Feedback,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger.With(zap.String("attempt", cfg.AttemptID), zap.String("quiz", cfg.QuizID)),
		now:         cfg.Now,
		onComplete:  cfg.OnComplete,
		phase:       domain.PhaseLoading,
		subscribers: make(map[chan domain.SessionState]struct{}),
		done:        make(chan struct{}),
	}
	s.begin()
	return s, nil
}

func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
	s.selected = nil
	s.explanationVisible = false
	s.score = 0
	s.streak = 0
	s.maxStreak = 0
	s.remaining = s.budget
	s.answers = make(domain.AnswerRecord, len(s.questions))
	s.phase = domain.PhaseInProgress
}

// ID returns the attempt id.
func (s *Session) ID() string {
	return s.id
}

// StartCountdown begins decrementing the clock once per interval. The tick
// path uses a context detached from ctx's cancellation so that a timeout can
// still persist its result.
func (s *Session) StartCountdown(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	if s.phase != domain.PhaseInProgress || s.countdown != nil {
		s.mu.Unlock()
		return
	}
	cd := NewCountdown(interval, s.Tick)
	s.countdown = cd
	s.mu.Unlock()

	cd.Start(context.WithoutCancel(ctx))
}

// StopCountdown halts the clock without completing the session.
func (s *Session) StopCountdown() {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd != nil {
		cd.Stop()
	}
}

// SubmitAnswer locks in the option for the current question. Answers are
// final: a second call before Advance is rejected and changes nothing.
func (s *Session) SubmitAnswer(option int) (domain.AnswerFeedback, error) {
	s.mu.Lock()
	if s.phase != domain.PhaseInProgress {
		s.mu.Unlock()
		return domain.AnswerFeedback{}, fmt.Errorf("%w: submit answer in phase %s", domain.ErrInvalidTransition, s.phase)
	}
	q := s.questions[s.current]
	if s.selected != nil {
		s.mu.Unlock()
		return domain.AnswerFeedback{}, fmt.Errorf("%w: question %q already answered", domain.ErrInvalidTransition, q.ID)
	}
	if !q.IsValidOption(option) {
		s.mu.Unlock()
		return domain.AnswerFeedback{}, fmt.Errorf("%w: option %d on question %q", domain.ErrOptionOutOfRange, option, q.ID)
	}

	selected := option
	s.selected = &selected
	s.answers[q.ID] = option
	s.explanationVisible = true

	correct := q.IsCorrect(option)
	pattern := domain.HapticIncorrect
	if correct {
		s.streak++
		if s.streak > s.maxStreak {
			s.maxStreak = s.streak
		}
		pattern = domain.HapticCorrect
	} else {
		s.streak = 0
	}

	fb := domain.AnswerFeedback{
		QuestionID:  q.ID,
		Selected:    option,
		Correct:     correct,
		Explanation: q.Explanation,
		Streak:      s.streak,
		MaxStreak:   s.maxStreak,
	}
	s.broadcastLocked()
	s.mu.Unlock()

	s.feedback.Emit(pattern)
	return fb, nil
}

// Advance scores the current answer and moves on, completing the session
// after the last question.
func (s *Session) Advance(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	if s.phase != domain.PhaseInProgress {
		s.mu.Unlock()
		return domain.SessionState{}, fmt.Errorf("%w: advance in phase %s", domain.ErrInvalidTransition, s.phase)
	}
	if s.selected == nil {
		s.mu.Unlock()
		return domain.SessionState{}, fmt.Errorf("%w: question %q not answered", domain.ErrInvalidTransition, s.questions[s.current].ID)
	}

	s.creditSelectionLocked()
	if s.current == len(s.questions)-1 {
		result := s.completeLocked(false)
		s.mu.Unlock()
		s.finish(ctx, result)
		return s.State(), nil
	}

	s.current++
	s.selected = nil
	s.explanationVisible = false
	state := s.broadcastLocked()
	s.mu.Unlock()
	return state, nil
}

// Tick removes one second from the clock. Reaching zero completes the
// session, crediting the current answer if one was selected. Ticks outside
// InProgress are ignored.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.phase != domain.PhaseInProgress {
		s.mu.Unlock()
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.broadcastLocked()
		s.mu.Unlock()
		return
	}

	if s.selected != nil {
		s.creditSelectionLocked()
	}
	result := s.completeLocked(true)
	s.mu.Unlock()

	s.logger.Info("quiz timed out", zap.Int("correct", result.CorrectAnswers))
	s.finish(ctx, result)
}

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the completed result, or domain.ErrResultNotReady.
func (s *Session) Result() (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, domain.ErrResultNotReady
	}
	return copyResult(*s.result), nil
}

// Sync reports the persistence outcome. It stays SyncPending until Done is closed.
func (s *Session) Sync() domain.SyncReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report.Status == "" {
		return domain.SyncReport{Status: domain.SyncPending}
	}
	return s.report
}

// Done is closed once the session completed and its result was recorded.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Subscribe returns a channel of state snapshots. It is closed when the
// session finishes or the cancel func is called.
func (s *Session) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	// The initial snapshot goes into the empty buffer before the lock is
	// released, so no broadcast or close can get ahead of it.
	s.mu.Lock()
	ch <- s.snapshotLocked()
	finished := s.isDoneLocked()
	if !finished {
		s.subscribers[ch] = struct{}{}
	}
	s.mu.Unlock()

	if finished {
		close(ch)
		return ch, func() {}
	}

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Abandon stops the clock and releases subscribers without producing a result.
func (s *Session) Abandon() {
	s.StopCountdown()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeSubscribersLocked()
}

func (s *Session) creditSelectionLocked() {
	if s.selected != nil && s.questions[s.current].IsCorrect(*s.selected) {
		s.score++
	}
}

// completeLocked moves the session to Completed and builds the result.
func (s *Session) completeLocked(timedOut bool) domain.QuizResult {
	s.phase = domain.PhaseCompleted
	if s.countdown != nil {
		s.countdown.Stop()
	}

	total := len(s.questions)
	result := domain.QuizResult{
		AttemptID:        s.id,
		QuizID:           s.quizID,
		TotalQuestions:   total,
		CorrectAnswers:   s.score,
		PercentageScore:  domain.PercentageScore(s.score, total),
		MaxStreak:        s.maxStreak,
		TimeSpentSeconds: s.budget - s.remaining,
		TimedOut:         timedOut,
		Answers:          copyAnswers(s.answers),
		CompletedAt:      s.now(),
	}
	s.result = &result
	s.broadcastLocked()
	return copyResult(result)
}

// finish persists the result outside the lock and releases waiters.
func (s *Session) finish(ctx context.Context, result domain.QuizResult) {
	meta := domain.SubmissionMetadata{
		AttemptID:        s.id,
		UserID:           s.userID,
		LessonID:         s.lessonID,
		QuizID:           s.quizID,
		TimeSpentSeconds: result.TimeSpentSeconds,
		CompletedAt:      result.CompletedAt,
	}
	report := s.recorder.Record(ctx, result, meta)

	s.mu.Lock()
	s.report = report
	close(s.done)
	s.closeSubscribersLocked()
	s.mu.Unlock()

	s.logger.Info("quiz completed",
		zap.Int("correct", result.CorrectAnswers),
		zap.Int("total", result.TotalQuestions),
		zap.Int("maxStreak", result.MaxStreak),
		zap.Bool("timedOut", result.TimedOut),
		zap.String("sync", string(report.Status)),
	)
	if s.onComplete != nil {
		s.onComplete(result, report)
	}
}

func (s *Session) isDoneLocked() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) closeSubscribersLocked() {
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() domain.SessionState {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Slow reader: replace its oldest snapshot with the latest.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.SessionState {
	state := domain.SessionState{
		AttemptID:          s.id,
		QuizID:             s.quizID,
		Phase:              s.phase,
		CurrentIndex:       s.current,
		TotalQuestions:     len(s.questions),
		ExplanationVisible: s.explanationVisible,
		Score:              s.score,
		Streak:             s.streak,
		MaxStreak:          s.maxStreak,
		RemainingSeconds:   s.remaining,
	}
	if len(s.questions) > 0 {
		q := s.questions[s.current]
		state.Question = q.View()
		if s.explanationVisible {
			state.Explanation = q.Explanation
		}
	}
	if s.selected != nil {
		selected := *s.selected
		state.SelectedOption = &selected
	}
	return state
}

func copyAnswers(in domain.AnswerRecord) domain.AnswerRecord {
	out := make(domain.AnswerRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyResult(r domain.QuizResult) domain.QuizResult {
	r.Answers = copyAnswers(r.Answers)
	return r
}
