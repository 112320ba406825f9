package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrAttemptAlreadyActive = errors.New("an in-progress attempt already exists")
	ErrAttemptClosed        = errors.New("attempt is not in progress")
	ErrAttemptNotSubmitted  = errors.New("attempt has not been submitted")
	ErrQuizFrozen           = errors.New("quiz content is frozen once attempts exist")
	ErrConflict             = errors.New("attempt was modified concurrently")
)

// ValidationError rejects a malformed learner answer (or quiz-level input)
// before anything is persisted. The reason is surfaced verbatim to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidQuestionDataError rejects a question whose variant data violates the
// variant's construction invariants.
type InvalidQuestionDataError struct {
	Variant Variant
	Reason  string
}

func (e *InvalidQuestionDataError) Error() string {
	return fmt.Sprintf("invalid %s question: %s", e.Variant, e.Reason)
}

func invalidQuestionf(v Variant, format string, args ...interface{}) error {
	return &InvalidQuestionDataError{Variant: v, Reason: fmt.Sprintf(format, args...)}
}

// GradeOutOfRangeError rejects manual points outside [0, question.points].
type GradeOutOfRangeError struct {
	QuestionID string
	Points     float64
	MaxPoints  int
}

func (e *GradeOutOfRangeError) Error() string {
	return fmt.Sprintf("grade %.2f for question %s is outside [0, %d]", e.Points, e.QuestionID, e.MaxPoints)
}
