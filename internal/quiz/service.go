package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service drives the attempt lifecycle:
// start → answer → submit → (manual grade)* → finalize.
type Service struct {
	store    Store
	grader   Grader
	notifier Notifier
	events   EventSink
	users    UserDirectory
	catalog  CourseCatalog
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithNotifier(n Notifier) ServiceOption     { return func(s *Service) { s.notifier = n } }
func WithEvents(e EventSink) ServiceOption      { return func(s *Service) { s.events = e } }
func WithDirectory(d UserDirectory) ServiceOption { return func(s *Service) { s.users = d } }
func WithCatalog(c CourseCatalog) ServiceOption { return func(s *Service) { s.catalog = c } }
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		grader: NewGrader(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateQuizInput struct {
	CourseID            string
	LessonID            string
	OrganizationID      string
	Title               string
	Description         string
	TimeLimitMinutes    int
	PassingScorePercent int
	MaxAttempts         int
}

func (s *Service) CreateQuiz(ctx context.Context, in CreateQuizInput) (Quiz, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Quiz{}, validationErrorf("quiz title is required")
	}
	if in.CourseID == "" {
		return Quiz{}, validationErrorf("course id is required")
	}
	if in.PassingScorePercent < 0 || in.PassingScorePercent > 100 {
		return Quiz{}, validationErrorf("passing score must be within 0-100")
	}
	if in.MaxAttempts < 1 {
		return Quiz{}, validationErrorf("max attempts must be at least 1")
	}
	if in.TimeLimitMinutes < 0 {
		return Quiz{}, validationErrorf("time limit cannot be negative")
	}
	q := Quiz{
		ID:                  uuid.NewString(),
		CourseID:            in.CourseID,
		LessonID:            in.LessonID,
		OrganizationID:      in.OrganizationID,
		Title:               in.Title,
		Description:         in.Description,
		TimeLimitMinutes:    in.TimeLimitMinutes,
		PassingScorePercent: in.PassingScorePercent,
		MaxAttempts:         in.MaxAttempts,
		CreatedAt:           s.now().Unix(),
	}
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

type QuestionInput struct {
	Text        string
	Points      int
	Explanation string
	Data        VariantData
}

// AddQuestion appends a question to a quiz. Quiz content is frozen once the
// first attempt exists, so past attempts can never drift.
func (s *Service) AddQuestion(ctx context.Context, quizID string, in QuestionInput) (Question, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Question{}, err
	}
	frozen, err := s.store.HasAttempts(ctx, quizID)
	if err != nil {
		return Question{}, err
	}
	if frozen {
		return Question{}, ErrQuizFrozen
	}
	question := Question{
		ID:          uuid.NewString(),
		Text:        in.Text,
		Points:      in.Points,
		Explanation: in.Explanation,
		Data:        in.Data,
	}
	if err := question.Validate(); err != nil {
		return Question{}, err
	}
	q.Questions = append(q.Questions, question)
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Question{}, err
	}
	return question, nil
}

func (s *Service) PublishQuiz(ctx context.Context, quizID string, published bool) error {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if published && len(q.Questions) == 0 {
		return validationErrorf("cannot publish a quiz with no questions")
	}
	q.Published = published
	return s.store.PutQuiz(ctx, q)
}

// DeleteQuiz soft-deletes: historical attempts keep their snapshots and the
// question rows stay resolvable for replay.
func (s *Service) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	return s.store.SoftDeleteQuiz(ctx, quizID)
}

func (s *Service) GetQuiz(ctx context.Context, quizID string) (Quiz, error) {
	return s.store.GetQuiz(ctx, quizID)
}

// StartAttempt enforces the one-active-attempt invariant and the per-user
// attempt cap before creating attempt number priorCount+1.
func (s *Service) StartAttempt(ctx context.Context, quizID, userID string) (Attempt, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	if !q.Published {
		return Attempt{}, validationErrorf("quiz is not published")
	}
	active, err := s.store.HasActiveAttempt(ctx, quizID, userID)
	if err != nil {
		return Attempt{}, err
	}
	if active {
		return Attempt{}, ErrAttemptAlreadyActive
	}
	prior, err := s.store.CountAttempts(ctx, quizID, userID)
	if err != nil {
		return Attempt{}, err
	}
	if prior >= q.MaxAttempts {
		return Attempt{}, ErrAttemptLimitExceeded
	}
	a := Attempt{
		ID:            uuid.NewString(),
		QuizID:        quizID,
		UserID:        userID,
		AttemptNumber: prior + 1,
		Status:        StatusInProgress,
		StartedAt:     s.now().Unix(),
		Revision:      1,
	}
	if err := s.store.CreateAttempt(ctx, a); err != nil {
		return Attempt{}, err
	}
	s.record(ctx, "AttemptStarted", a.ID, a)
	return a, nil
}

// RecordAnswerResult is what the learner sees right after answering: filled
// for auto-graded variants, empty for ones awaiting manual review.
type RecordAnswerResult struct {
	IsCorrect             *bool    `json:"is_correct,omitempty"`
	AwardedPoints         *float64 `json:"awarded_points,omitempty"`
	RequiresManualGrading bool     `json:"requires_manual_grading"`
}

// RecordAnswer validates, auto-grades when possible, and upserts the answer.
// Re-answering a question before submission overwrites, never appends.
func (s *Service) RecordAnswer(ctx context.Context, attemptID, questionID string, payload []byte) (RecordAnswerResult, error) {
	a, q, err := s.loadLive(ctx, attemptID)
	if err != nil {
		return RecordAnswerResult{}, err
	}
	if a.Status != StatusInProgress {
		return RecordAnswerResult{}, ErrAttemptClosed
	}
	question, ok := q.Question(questionID)
	if !ok {
		return RecordAnswerResult{}, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
	}
	normalized, err := ValidateAnswer(question, payload)
	if err != nil {
		return RecordAnswerResult{}, err
	}
	rec := AnswerRecord{
		QuestionID:   questionID,
		Payload:      normalized,
		QuestionText: question.Text,
		Variant:      question.Data.Variant(),
		Points:       question.Points,
	}
	if question.Data.Variant().AutoGradable() {
		res, err := s.grader.Grade(question, normalized)
		if err != nil {
			return RecordAnswerResult{}, err
		}
		correct := res.IsCorrect
		points := res.AwardedPoints
		rec.IsCorrect = &correct
		rec.AwardedPoints = &points
	} else {
		rec.RequiresManualGrading = true
	}
	a.upsertAnswer(rec)
	a.applyGrade(ComputeGrade(q.Questions, a.Answers, q.PassingScorePercent))
	if _, err := s.store.UpdateAttempt(ctx, a); err != nil {
		return RecordAnswerResult{}, err
	}
	return RecordAnswerResult{
		IsCorrect:             rec.IsCorrect,
		AwardedPoints:         rec.AwardedPoints,
		RequiresManualGrading: rec.RequiresManualGrading,
	}, nil
}

// SubmitAttempt closes the answering phase. Even when every question was
// auto-graded the attempt stays submitted until an explicit finalize; there
// is one finalize path for all quizzes.
func (s *Service) SubmitAttempt(ctx context.Context, attemptID string, timeSpentSeconds int) (Grade, error) {
	a, q, err := s.loadLive(ctx, attemptID)
	if err != nil {
		return Grade{}, err
	}
	if a.Status != StatusInProgress {
		return Grade{}, ErrAttemptClosed
	}
	now := s.now().Unix()
	elapsed := int(now - a.StartedAt)
	if timeSpentSeconds <= 0 || timeSpentSeconds > elapsed {
		timeSpentSeconds = elapsed
	}
	a.Status = StatusSubmitted
	a.CompletedAt = &now
	a.TimeSpentSeconds = timeSpentSeconds
	grade := ComputeGrade(q.Questions, a.Answers, q.PassingScorePercent)
	a.applyGrade(grade)
	if _, err := s.store.UpdateAttempt(ctx, a); err != nil {
		return Grade{}, err
	}
	s.record(ctx, "AttemptSubmitted", a.ID, a)
	return grade, nil
}

// RubricSelection names a criterion level on a stored rubric.
type RubricSelection struct {
	RubricID  string `json:"rubric_id"`
	Criterion string `json:"criterion"`
	Level     string `json:"level"`
}

// QuestionGrade carries one manually-graded question's score: either raw
// points or a rubric selection. Both write awardedPoints; last write wins.
type QuestionGrade struct {
	QuestionID string           `json:"question_id"`
	Points     *float64         `json:"points,omitempty"`
	Rubric     *RubricSelection `json:"rubric,omitempty"`
	Feedback   string           `json:"feedback,omitempty"`
}

type GradeAttemptInput struct {
	AttemptID string
	Grades    []QuestionGrade
	Comments  string
	GradedBy  string
	Finalize  bool
	// Revision is the revision the grader read the attempt at; 0 skips the
	// staleness check and the store-level CAS alone guards the write.
	Revision int64
}

// GradeAttempt is both the draft path (finalize=false: persist scores without
// changing status, legal from submitted or graded) and the finalize path
// (transition to graded, stamp gradedAt/gradedBy, notify the learner).
func (s *Service) GradeAttempt(ctx context.Context, in GradeAttemptInput) (Grade, error) {
	a, err := s.store.GetAttempt(ctx, in.AttemptID)
	if err != nil {
		return Grade{}, err
	}
	if a.Status == StatusInProgress {
		return Grade{}, ErrAttemptNotSubmitted
	}
	if in.Revision > 0 && in.Revision != a.Revision {
		return Grade{}, ErrConflict
	}
	q, err := s.store.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return Grade{}, err
	}
	for _, g := range in.Grades {
		rec, ok := a.Answer(g.QuestionID)
		if !ok {
			return Grade{}, fmt.Errorf("no answer recorded for question %s: %w", g.QuestionID, ErrNotFound)
		}
		if !rec.RequiresManualGrading {
			return Grade{}, validationErrorf("question %s is auto-graded and cannot be graded manually", g.QuestionID)
		}
		points, err := s.resolvePoints(ctx, g)
		if err != nil {
			return Grade{}, err
		}
		if points < 0 || points > float64(rec.Points) {
			return Grade{}, &GradeOutOfRangeError{QuestionID: g.QuestionID, Points: points, MaxPoints: rec.Points}
		}
		rec.AwardedPoints = &points
		rec.InstructorFeedback = g.Feedback
		a.upsertAnswer(rec)
	}
	if in.Comments != "" {
		a.InstructorComments = in.Comments
	}
	grade := ComputeGrade(q.Questions, a.Answers, q.PassingScorePercent)
	a.applyGrade(grade)
	if in.Finalize {
		now := s.now().Unix()
		a.Status = StatusGraded
		a.GradedAt = &now
		a.GradedBy = in.GradedBy
	}
	if _, err := s.store.UpdateAttempt(ctx, a); err != nil {
		return Grade{}, err
	}
	if in.Finalize {
		s.record(ctx, "AttemptGraded", a.ID, a)
		s.notify(ctx, a.UserID, fmt.Sprintf("Your attempt on %q has been graded: %d%% (%s)",
			q.Title, grade.Percentage, passLabel(grade.Passed)))
	}
	return grade, nil
}

func (s *Service) resolvePoints(ctx context.Context, g QuestionGrade) (float64, error) {
	if g.Rubric != nil {
		r, err := s.store.GetRubric(ctx, g.Rubric.RubricID)
		if err != nil {
			return 0, err
		}
		pts, err := r.Evaluate(g.Rubric.Criterion, g.Rubric.Level)
		if err != nil {
			return 0, err
		}
		return float64(pts), nil
	}
	if g.Points == nil {
		return 0, validationErrorf("question %s: either points or a rubric selection is required", g.QuestionID)
	}
	return *g.Points, nil
}

// AttemptItem pairs a question with the learner's answer (nil if unanswered)
// for the grading view.
type AttemptItem struct {
	Question PublicQuestion `json:"question"`
	Answer   *AnswerRecord  `json:"answer,omitempty"`
	// Correctness data is shown to graders, not learners.
	CorrectData VariantData `json:"-"`
}

// AttemptView is the denormalized read model for the grading UI.
type AttemptView struct {
	Attempt
	QuizTitle   string        `json:"quiz_title"`
	CourseTitle string        `json:"course_title,omitempty"`
	UserName    string        `json:"user_name,omitempty"`
	UserEmail   string        `json:"user_email,omitempty"`
	Items       []AttemptItem `json:"items"`
}

func (s *Service) GetAttempt(ctx context.Context, attemptID string) (AttemptView, error) {
	a, q, err := s.loadLive(ctx, attemptID)
	if err != nil {
		return AttemptView{}, err
	}
	view := AttemptView{Attempt: a, QuizTitle: q.Title}
	for _, question := range q.Questions {
		item := AttemptItem{Question: question.Public(), CorrectData: question.Data}
		if rec, ok := a.Answer(question.ID); ok {
			r := rec
			item.Answer = &r
		}
		view.Items = append(view.Items, item)
	}
	if s.catalog != nil {
		if title, err := s.catalog.ResolveCourse(ctx, q.CourseID); err == nil {
			view.CourseTitle = title
		}
	}
	if s.users != nil {
		if u, err := s.users.ResolveUser(ctx, a.UserID); err == nil {
			view.UserName, view.UserEmail = u.Name, u.Email
		}
	}
	return view, nil
}

func (s *Service) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	return s.store.ListAttempts(ctx, opts)
}

func (s *Service) CreateRubric(ctx context.Context, r Rubric) (Rubric, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	if err := s.store.PutRubric(ctx, r); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func (s *Service) ListRubrics(ctx context.Context, organizationID string) ([]Rubric, error) {
	return s.store.ListRubrics(ctx, organizationID)
}

// loadLive fetches the attempt and its quiz, auto-submitting first if the
// quiz time limit has expired while the attempt was in progress.
func (s *Service) loadLive(ctx context.Context, attemptID string) (Attempt, Quiz, error) {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, Quiz{}, err
	}
	q, err := s.store.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return Attempt{}, Quiz{}, err
	}
	if a.Status == StatusInProgress && q.TimeLimitMinutes > 0 {
		deadline := a.StartedAt + int64(q.TimeLimitMinutes)*60
		if s.now().Unix() > deadline {
			a.Status = StatusSubmitted
			a.CompletedAt = &deadline
			a.TimeSpentSeconds = q.TimeLimitMinutes * 60
			a.applyGrade(ComputeGrade(q.Questions, a.Answers, q.PassingScorePercent))
			a, err = s.store.UpdateAttempt(ctx, a)
			if err != nil {
				return Attempt{}, Quiz{}, err
			}
			s.record(ctx, "AttemptSubmitted", a.ID, a)
		}
	}
	return a, q, nil
}

func (s *Service) record(ctx context.Context, typ, key string, payload interface{}) {
	if s.events == nil {
		return
	}
	// Best effort: the event log must never fail the operation it trails.
	_ = s.events.Record(ctx, typ, key, payload)
}

func (s *Service) notify(ctx context.Context, userID, message string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, userID, message)
}

func passLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
