package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists quizzes and attempts as JSON documents inside relational
// rows, one row per aggregate. Works against sqlite (modernc) and postgres
// (pgx stdlib); placeholders are $N, which both drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id, course_id, lesson_id, organization_id, title, description,
		 time_limit_min, passing_score, max_attempts, published, questions_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
		 title=EXCLUDED.title, description=EXCLUDED.description,
		 time_limit_min=EXCLUDED.time_limit_min, passing_score=EXCLUDED.passing_score,
		 max_attempts=EXCLUDED.max_attempts, published=EXCLUDED.published,
		 questions_json=EXCLUDED.questions_json`,
		q.ID, q.CourseID, q.LessonID, q.OrganizationID, q.Title, q.Description,
		q.TimeLimitMinutes, q.PassingScorePercent, q.MaxAttempts, boolToInt(q.Published),
		string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, course_id, lesson_id, organization_id,
		title, description, time_limit_min, passing_score, max_attempts, published,
		questions_json, created_at
		FROM quizzes WHERE id=$1 AND deleted_at IS NULL`, id)
	var q Quiz
	var published int
	var qjson string
	if err := row.Scan(&q.ID, &q.CourseID, &q.LessonID, &q.OrganizationID,
		&q.Title, &q.Description, &q.TimeLimitMinutes, &q.PassingScorePercent,
		&q.MaxAttempts, &published, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return Quiz{}, err
	}
	q.Published = published != 0
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) SoftDeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`,
		time.Now().Unix(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts
		(id, quiz_id, user_id, attempt_number, status, answers_json,
		 total_points, max_points, percentage, passed,
		 time_spent_sec, instructor_comments, started_at, graded_by, revision)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.QuizID, a.UserID, a.AttemptNumber, string(a.Status), string(aj),
		a.TotalPoints, a.MaxPoints, a.Percentage, boolToInt(a.Passed),
		a.TimeSpentSeconds, a.InstructorComments, a.StartedAt, a.GradedBy, a.Revision)
	if err != nil && isUniqueViolation(err) {
		// The partial unique index on (quiz_id, user_id) WHERE in_progress
		// backs the one-active-attempt invariant under races.
		return ErrAttemptAlreadyActive
	}
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, attemptSelect+` WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
		}
		return Attempt{}, err
	}
	return a, nil
}

// UpdateAttempt is the whole-attempt compare-and-swap: the row is rewritten
// only if its revision still matches the one the caller read.
func (s *SQLStore) UpdateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET
		status=$1, answers_json=$2, total_points=$3, max_points=$4, percentage=$5,
		passed=$6, time_spent_sec=$7, instructor_comments=$8, completed_at=$9,
		graded_at=$10, graded_by=$11, revision=revision+1
		WHERE id=$12 AND revision=$13`,
		string(a.Status), string(aj), a.TotalPoints, a.MaxPoints, a.Percentage,
		boolToInt(a.Passed), a.TimeSpentSeconds, a.InstructorComments, a.CompletedAt,
		a.GradedAt, a.GradedBy, a.ID, a.Revision)
	if err != nil {
		return Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		if _, getErr := s.GetAttempt(ctx, a.ID); getErr != nil {
			return Attempt{}, getErr
		}
		return Attempt{}, ErrConflict
	}
	a.Revision++
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{"1=1"}
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.QuizID != "" {
		add("quiz_id=$%d", opts.QuizID)
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	query := fmt.Sprintf("%s WHERE %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d",
		attemptSelect, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountAttempts(ctx context.Context, quizID, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND user_id=$2`,
		quizID, userID).Scan(&n)
	return n, err
}

func (s *SQLStore) HasActiveAttempt(ctx context.Context, quizID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND user_id=$2 AND status='in_progress'`,
		quizID, userID).Scan(&n)
	return n > 0, err
}

func (s *SQLStore) HasAttempts(ctx context.Context, quizID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1`, quizID).Scan(&n)
	return n > 0, err
}

func (s *SQLStore) PutRubric(ctx context.Context, r Rubric) error {
	cj, err := json.Marshal(r.Criteria)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO rubrics
		(id, organization_id, name, is_default, criteria_json)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
		 name=EXCLUDED.name, is_default=EXCLUDED.is_default, criteria_json=EXCLUDED.criteria_json`,
		r.ID, r.OrganizationID, r.Name, boolToInt(r.IsDefault), string(cj))
	return err
}

func (s *SQLStore) GetRubric(ctx context.Context, id string) (Rubric, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, is_default, criteria_json FROM rubrics WHERE id=$1`, id)
	r, err := scanRubric(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rubric{}, fmt.Errorf("rubric %s: %w", id, ErrNotFound)
		}
		return Rubric{}, err
	}
	return r, nil
}

func (s *SQLStore) ListRubrics(ctx context.Context, organizationID string) ([]Rubric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organization_id, name, is_default, criteria_json
		 FROM rubrics WHERE organization_id=$1 ORDER BY name`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Rubric
	for rows.Next() {
		r, err := scanRubric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const attemptSelect = `SELECT id, quiz_id, user_id, attempt_number, status, answers_json,
	total_points, max_points, percentage, passed, time_spent_sec, instructor_comments,
	started_at, completed_at, graded_at, graded_by, revision FROM attempts`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var status, answersJSON string
	var passed int
	var completedAt, gradedAt sql.NullInt64
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.AttemptNumber, &status, &answersJSON,
		&a.TotalPoints, &a.MaxPoints, &a.Percentage, &passed, &a.TimeSpentSeconds,
		&a.InstructorComments, &a.StartedAt, &completedAt, &gradedAt, &a.GradedBy,
		&a.Revision); err != nil {
		return Attempt{}, err
	}
	a.Status = Status(status)
	a.Passed = passed != 0
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Int64
	}
	if gradedAt.Valid {
		a.GradedAt = &gradedAt.Int64
	}
	if err := json.Unmarshal([]byte(answersJSON), &a.Answers); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func scanRubric(row rowScanner) (Rubric, error) {
	var r Rubric
	var isDefault int
	var cjson string
	if err := row.Scan(&r.ID, &r.OrganizationID, &r.Name, &isDefault, &cjson); err != nil {
		return Rubric{}, err
	}
	r.IsDefault = isDefault != 0
	if err := json.Unmarshal([]byte(cjson), &r.Criteria); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
