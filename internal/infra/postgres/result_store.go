package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"civic-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore writes completed attempts to quiz_results. Each attempt is
// stored once; a replay from the offline queue is a no-op.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SubmitResult(ctx context.Context, result domain.QuizResult, meta domain.SubmissionMetadata) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (
			attempt_id, quiz_id, user_id, lesson_id,
			total_questions, correct_answers, percentage_score, max_streak,
			time_spent_seconds, timed_out, answers, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)
		ON CONFLICT (attempt_id) DO NOTHING`,
		meta.AttemptID, meta.QuizID, meta.UserID, meta.LessonID,
		result.TotalQuestions, result.CorrectAnswers, result.PercentageScore, result.MaxStreak,
		meta.TimeSpentSeconds, result.TimedOut, string(answers), meta.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", meta.AttemptID, err)
	}
	return nil
}

// GetResult reads a stored attempt back.
func (s *ResultStore) GetResult(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	var (
		result  domain.QuizResult
		answers []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT attempt_id, quiz_id, total_questions, correct_answers, percentage_score,
		       max_streak, time_spent_seconds, timed_out, answers, completed_at
		FROM quiz_results WHERE attempt_id=$1`, attemptID).Scan(
		&result.AttemptID, &result.QuizID, &result.TotalQuestions, &result.CorrectAnswers,
		&result.PercentageScore, &result.MaxStreak, &result.TimeSpentSeconds, &result.TimedOut,
		&answers, &result.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizResult{}, fmt.Errorf("result %s: %w", attemptID, domain.ErrResultNotReady)
	}
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("load result %s: %w", attemptID, err)
	}
	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return domain.QuizResult{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return result, nil
}
