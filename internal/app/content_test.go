package app_test

import (
	"context"
	"testing"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentSourceFallsBackOnError(t *testing.T) {
	src := app.NewContentSource(failingQuizRepo{}, nil, nil)

	qs, fallback, err := src.Questions(context.Background(), "lesson-3", nil)
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, app.DefaultQuestions(), qs)
}

func TestContentSourceFallsBackOnEmptyQuiz(t *testing.T) {
	src := app.NewContentSource(fixedQuizRepo{quiz: domain.Quiz{ID: "empty"}}, nil, nil)

	qs, fallback, err := src.Questions(context.Background(), "empty", nil)
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.NotEmpty(t, qs)
}

func TestContentSourcePrefersSuppliedQuestions(t *testing.T) {
	src := app.NewContentSource(failingQuizRepo{}, nil, nil)
	supplied := fiveQuestions()

	qs, fallback, err := src.Questions(context.Background(), "quiz-1", supplied)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, supplied, qs)
}

func TestContentSourceRejectsMalformedProviderData(t *testing.T) {
	bad := domain.Quiz{ID: "bad", Questions: []domain.Question{
		{ID: "q1", Options: []string{"a", "b"}, CorrectOptionIndex: 0},
		{ID: "q2", Options: []string{"a", "b"}, CorrectOptionIndex: 5},
	}}
	src := app.NewContentSource(fixedQuizRepo{quiz: bad}, nil, nil)

	_, _, err := src.Questions(context.Background(), "bad", nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDefaultQuestionsAreValid(t *testing.T) {
	assert.NoError(t, domain.ValidateQuestions(app.DefaultQuestions()))
}
