package quiz

import (
	"encoding/json"
	"sort"
)

// Quiz is the aggregate root for questions. Content (questions, scoring
// parameters) is frozen once the first attempt exists against it.
type Quiz struct {
	ID                  string     `json:"id"`
	CourseID            string     `json:"course_id"`
	LessonID            string     `json:"lesson_id,omitempty"`
	OrganizationID      string     `json:"organization_id,omitempty"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	TimeLimitMinutes    int        `json:"time_limit_minutes"`
	PassingScorePercent int        `json:"passing_score_percent"`
	MaxAttempts         int        `json:"max_attempts"`
	Published           bool       `json:"published"`
	Questions           []Question `json:"questions,omitempty"`
	CreatedAt           int64      `json:"created_at,omitempty"`
	DeletedAt           *int64     `json:"deleted_at,omitempty"`
}

func (q Quiz) MaxPoints() int {
	total := 0
	for _, qu := range q.Questions {
		total += qu.Points
	}
	return total
}

func (q Quiz) Question(id string) (Question, bool) {
	for _, qu := range q.Questions {
		if qu.ID == id {
			return qu, true
		}
	}
	return Question{}, false
}

// Question pairs prompt text with one variant's data.
type Question struct {
	ID          string
	Text        string
	Points      int
	Explanation string
	Data        VariantData
}

// questionJSON is the storage/wire envelope: the variant tag selects the
// concrete data type on decode.
type questionJSON struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Points      int             `json:"points"`
	Explanation string          `json:"explanation,omitempty"`
	Variant     Variant         `json:"variant"`
	Data        json.RawMessage `json:"data"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(q.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:          q.ID,
		Text:        q.Text,
		Points:      q.Points,
		Explanation: q.Explanation,
		Variant:     q.Data.Variant(),
		Data:        data,
	})
}

func (q *Question) UnmarshalJSON(b []byte) error {
	var env questionJSON
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	data, err := DecodeVariantData(env.Variant, env.Data)
	if err != nil {
		return err
	}
	q.ID = env.ID
	q.Text = env.Text
	q.Points = env.Points
	q.Explanation = env.Explanation
	q.Data = data
	return nil
}

// Validate enforces the question-level and variant-level invariants.
func (q Question) Validate() error {
	if q.Data == nil {
		return invalidQuestionf("", "variant data is required")
	}
	v := q.Data.Variant()
	if q.Text == "" {
		return invalidQuestionf(v, "question text is required")
	}
	if q.Points <= 0 {
		return invalidQuestionf(v, "points must be a positive integer")
	}
	return q.Data.validate(q.Text)
}

// PublicQuestion is the learner-facing view: everything needed to render the
// question, nothing that gives the answer away.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Points   int      `json:"points"`
	Variant  Variant  `json:"variant"`
	Options  []string `json:"options,omitempty"`
	Prompts  []string `json:"prompts,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Items    []string `json:"items,omitempty"`
	Blanks   int      `json:"blanks,omitempty"`
	MediaURL string   `json:"media_url,omitempty"`
}

// Public strips correctness data. Sortable items and matching answers are
// served lexicographically sorted so the stored order leaks nothing.
func (q Question) Public() PublicQuestion {
	p := PublicQuestion{ID: q.ID, Text: q.Text, Points: q.Points, Variant: q.Data.Variant()}
	switch d := q.Data.(type) {
	case TrueFalseData:
	case SingleChoiceData:
		p.Options = append(p.Options, d.Options...)
	case MultipleChoiceData:
		p.Options = append(p.Options, d.Options...)
	case ShortAnswerData:
	case TextAnswerData:
	case MatchFollowingData:
		for _, pair := range d.Pairs {
			p.Prompts = append(p.Prompts, pair.Prompt)
			p.Choices = append(p.Choices, pair.Answer)
		}
		sort.Strings(p.Choices)
	case SortableData:
		p.Items = append(p.Items, d.Items...)
		sort.Strings(p.Items)
	case FillBlanksData:
		p.Blanks = len(d.BlankAnswers)
	case AudioVideoData:
		p.MediaURL = d.MediaURL
	}
	return p
}

// Status is the attempt lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusGraded     Status = "graded"
)

// AnswerRecord stores one learner answer within an attempt, plus a snapshot
// of the question core so historical attempts replay without dereferencing
// the (possibly soft-deleted) quiz.
type AnswerRecord struct {
	QuestionID            string          `json:"question_id"`
	Payload               json.RawMessage `json:"payload"`
	IsCorrect             *bool           `json:"is_correct,omitempty"`
	AwardedPoints         *float64        `json:"awarded_points,omitempty"`
	RequiresManualGrading bool            `json:"requires_manual_grading,omitempty"`
	InstructorFeedback    string          `json:"instructor_feedback,omitempty"`

	// Snapshot of the question at answer time.
	QuestionText string  `json:"question_text"`
	Variant      Variant `json:"variant"`
	Points       int     `json:"points"`
}

// Attempt is one learner's run through a quiz. Revision is a monotonic
// counter; every mutation is a compare-and-swap against it.
type Attempt struct {
	ID                 string         `json:"id"`
	QuizID             string         `json:"quiz_id"`
	UserID             string         `json:"user_id"`
	AttemptNumber      int            `json:"attempt_number"`
	Status             Status         `json:"status"`
	Answers            []AnswerRecord `json:"answers"`
	StartedAt          int64          `json:"started_at"`
	CompletedAt        *int64         `json:"completed_at,omitempty"`
	TimeSpentSeconds   int            `json:"time_spent_seconds,omitempty"`
	InstructorComments string         `json:"instructor_comments,omitempty"`
	GradedAt           *int64         `json:"graded_at,omitempty"`
	GradedBy           string         `json:"graded_by,omitempty"`
	Revision           int64          `json:"revision"`

	// Aggregated grade, recomputed from Answers on every change.
	TotalPoints float64 `json:"total_points"`
	MaxPoints   int     `json:"max_points"`
	Percentage  int     `json:"percentage"`
	Passed      bool    `json:"passed"`
}

func (a Attempt) Answer(questionID string) (AnswerRecord, bool) {
	for _, r := range a.Answers {
		if r.QuestionID == questionID {
			return r, true
		}
	}
	return AnswerRecord{}, false
}

func (a *Attempt) upsertAnswer(rec AnswerRecord) {
	for i, r := range a.Answers {
		if r.QuestionID == rec.QuestionID {
			a.Answers[i] = rec
			return
		}
	}
	a.Answers = append(a.Answers, rec)
}

// Grade is the derived score for an attempt; never persisted on its own.
type Grade struct {
	TotalPoints float64 `json:"total_points"`
	MaxPoints   int     `json:"max_points"`
	Percentage  int     `json:"percentage"`
	Passed      bool    `json:"passed"`
}
