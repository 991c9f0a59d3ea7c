package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no active session matches an attempt id.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrConfiguration marks malformed question data; the session cannot start.
	ErrConfiguration = errors.New("invalid quiz configuration")
	// ErrContentFetch wraps failures of the content provider.
	ErrContentFetch = errors.New("content fetch failed")
	// ErrInvalidTransition is returned for calls the current phase does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrOptionOutOfRange indicates a submitted option index is not on the question.
	ErrOptionOutOfRange = errors.New("option out of range")
	// ErrResultNotReady is returned when a result is requested before completion.
	ErrResultNotReady = errors.New("quiz result not ready")
	// ErrPersistence wraps failures of result submission or queueing.
	ErrPersistence = errors.New("result persistence failed")
	// ErrQueueEmpty is returned when the offline queue has nothing to pop.
	ErrQueueEmpty = errors.New("offline queue empty")
)
