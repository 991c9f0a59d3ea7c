package domain

import (
	"fmt"
	"math"
)

// Validate checks the invariants every question must hold before a session starts.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %q has %d options, need at least 2", ErrConfiguration, q.ID, len(q.Options))
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %q correct option %d outside [0,%d)", ErrConfiguration, q.ID, q.CorrectOptionIndex, len(q.Options))
	}
	return nil
}

// IsCorrect reports whether the selected option is the correct one.
func (q Question) IsCorrect(selected int) bool {
	return selected == q.CorrectOptionIndex
}

// IsValidOption reports whether the index points at an option.
func (q Question) IsValidOption(selected int) bool {
	return selected >= 0 && selected < len(q.Options)
}

// View strips the answer key from a question.
func (q Question) View() QuestionView {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Options: opts}
}

// ValidateQuestions rejects empty sets, duplicate ids and malformed questions.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrConfiguration)
	}
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrConfiguration, q.ID)
		}
		seen[q.ID] = struct{}{}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PercentageScore returns round(100 * correct / total), rounding halves away from zero.
func PercentageScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
