package domain

import "time"

// DefaultBudgetSeconds is the time allotted to a single quiz attempt.
const DefaultBudgetSeconds = 300

// Phase is the lifecycle stage of a quiz session.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// HapticPattern is the feedback signal emitted when an answer is locked in.
type HapticPattern string

const (
	HapticCorrect   HapticPattern = "correct"
	HapticIncorrect HapticPattern = "incorrect"
)

// Question models a multiple choice question with exactly one correct option.
type Question struct {
	ID                 string   `json:"id"`
	Prompt             string   `json:"prompt"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
}

// Quiz is a collection of questions keyed by quiz (or lesson) id.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// AnswerRecord maps question id to the selected option index.
type AnswerRecord map[string]int

// QuestionView is the client-safe projection of a question; the correct index is never exposed.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// SessionState is a snapshot of a quiz session.
type SessionState struct {
	AttemptID          string       `json:"attemptId"`
	QuizID             string       `json:"quizId"`
	Phase              Phase        `json:"phase"`
	CurrentIndex       int          `json:"currentIndex"`
	TotalQuestions     int          `json:"totalQuestions"`
	Question           QuestionView `json:"question"`
	SelectedOption     *int         `json:"selectedOption"`
	ExplanationVisible bool         `json:"explanationVisible"`
	Explanation        string       `json:"explanation,omitempty"`
	Score              int          `json:"score"`
	Streak             int          `json:"streak"`
	MaxStreak          int          `json:"maxStreak"`
	RemainingSeconds   int          `json:"remainingSeconds"`
}

// AnswerFeedback is returned to the caller when an answer is locked in.
type AnswerFeedback struct {
	QuestionID  string `json:"questionId"`
	Selected    int    `json:"selected"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
	Streak      int    `json:"streak"`
	MaxStreak   int    `json:"maxStreak"`
}

// QuizResult summarizes a completed attempt.
type QuizResult struct {
	AttemptID        string       `json:"attemptId"`
	QuizID           string       `json:"quizId"`
	TotalQuestions   int          `json:"totalQuestions"`
	CorrectAnswers   int          `json:"correctAnswers"`
	PercentageScore  int          `json:"percentageScore"`
	MaxStreak        int          `json:"maxStreak"`
	TimeSpentSeconds int          `json:"timeSpentSeconds"`
	TimedOut         bool         `json:"timedOut"`
	Answers          AnswerRecord `json:"answers"`
	CompletedAt      time.Time    `json:"completedAt"`
}

// SubmissionMetadata identifies who and what a result belongs to.
type SubmissionMetadata struct {
	AttemptID        string    `json:"attemptId"`
	UserID           string    `json:"userId,omitempty"`
	LessonID         string    `json:"lessonId,omitempty"`
	QuizID           string    `json:"quizId"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
}

// PendingResult is a result waiting in the offline queue.
type PendingResult struct {
	Result   QuizResult         `json:"result"`
	Metadata SubmissionMetadata `json:"metadata"`
	QueuedAt time.Time          `json:"queuedAt"`
}

// SyncStatus describes where a completed result ended up.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncSubmitted SyncStatus = "submitted"
	SyncQueued    SyncStatus = "queued"
	SyncFailed    SyncStatus = "failed"
)

// SyncReport is the outcome of persisting a result. Warning is set only when
// both the online and offline tiers failed.
type SyncReport struct {
	Status  SyncStatus `json:"status"`
	Warning error      `json:"-"`
}
