package quiz

import "context"

// AttemptListOpts filters attempt listings for dashboards and "my attempts".
type AttemptListOpts struct {
	QuizID string
	UserID string
	Status string
	Limit  int
	Offset int
}

// Store persists quizzes, attempts and rubrics. UpdateAttempt is a
// compare-and-swap: it succeeds only when the stored revision equals the
// revision the attempt was read at, and bumps it by one.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	SoftDeleteQuiz(ctx context.Context, id string) error

	CreateAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	UpdateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
	CountAttempts(ctx context.Context, quizID, userID string) (int, error)
	HasActiveAttempt(ctx context.Context, quizID, userID string) (bool, error)
	HasAttempts(ctx context.Context, quizID string) (bool, error)

	PutRubric(ctx context.Context, r Rubric) error
	GetRubric(ctx context.Context, id string) (Rubric, error)
	ListRubrics(ctx context.Context, organizationID string) ([]Rubric, error)
}
