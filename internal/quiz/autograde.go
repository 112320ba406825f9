package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GradeResult is the outcome of evaluating a single answer.
type GradeResult struct {
	IsCorrect     bool
	AwardedPoints float64
	NeedsManual   bool
}

// Strategy evaluates one validated answer payload against a question.
type Strategy interface {
	Grade(q Question, payload json.RawMessage) (GradeResult, error)
}

// Grader routes by variant to the matching Strategy. Evaluation is
// deterministic and pure: same (question, answer) always yields the same
// result.
type Grader interface {
	Grade(q Question, payload json.RawMessage) (GradeResult, error)
}

type defaultGrader struct {
	strategies map[Variant]Strategy
}

// NewGrader installs the built-in strategies, one per variant.
func NewGrader() Grader {
	g := &defaultGrader{strategies: map[Variant]Strategy{
		VariantTrueFalse:      trueFalseStrategy{},
		VariantSingleChoice:   singleChoiceStrategy{},
		VariantMultipleChoice: multipleChoiceStrategy{},
		VariantShortAnswer:    shortAnswerStrategy{},
		VariantTextAnswer:     manualStrategy{},
		VariantMatchFollowing: manualStrategy{},
		VariantSortable:       manualStrategy{},
		VariantFillBlanks:     manualStrategy{},
		VariantAudioVideo:     manualStrategy{},
	}}
	for _, v := range Variants {
		if _, ok := g.strategies[v]; !ok {
			panic(fmt.Sprintf("quiz: no grading strategy for variant %q", v))
		}
	}
	return g
}

func (g *defaultGrader) Grade(q Question, payload json.RawMessage) (GradeResult, error) {
	s, ok := g.strategies[q.Data.Variant()]
	if !ok {
		return GradeResult{NeedsManual: true}, nil
	}
	return s.Grade(q, payload)
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Grade(q Question, payload json.RawMessage) (GradeResult, error) {
	d := q.Data.(TrueFalseData)
	var v bool
	if err := json.Unmarshal(payload, &v); err != nil {
		return GradeResult{}, err
	}
	return objectiveResult(v == d.CorrectAnswer, q.Points), nil
}

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q Question, payload json.RawMessage) (GradeResult, error) {
	d := q.Data.(SingleChoiceData)
	var v string
	if err := json.Unmarshal(payload, &v); err != nil {
		return GradeResult{}, err
	}
	return objectiveResult(strings.TrimSpace(v) == strings.TrimSpace(d.CorrectOption), q.Points), nil
}

// multipleChoiceStrategy is all-or-nothing: the selected set must equal the
// correct set exactly; partial overlap scores zero.
type multipleChoiceStrategy struct{}

func (multipleChoiceStrategy) Grade(q Question, payload json.RawMessage) (GradeResult, error) {
	d := q.Data.(MultipleChoiceData)
	var v []string
	if err := json.Unmarshal(payload, &v); err != nil {
		return GradeResult{}, err
	}
	return objectiveResult(setEqual(toSet(v), toSet(d.CorrectOptions)), q.Points), nil
}

type shortAnswerStrategy struct{}

func (shortAnswerStrategy) Grade(q Question, payload json.RawMessage) (GradeResult, error) {
	d := q.Data.(ShortAnswerData)
	var v string
	if err := json.Unmarshal(payload, &v); err != nil {
		return GradeResult{}, err
	}
	return objectiveResult(normalizeText(v) == normalizeText(d.CorrectAnswer), q.Points), nil
}

// manualStrategy covers every variant that needs human judgment.
type manualStrategy struct{}

func (manualStrategy) Grade(Question, json.RawMessage) (GradeResult, error) {
	return GradeResult{NeedsManual: true}, nil
}

func objectiveResult(correct bool, points int) GradeResult {
	r := GradeResult{IsCorrect: correct}
	if correct {
		r.AwardedPoints = float64(points)
	}
	return r
}

// normalizeText folds case and collapses runs of whitespace, so "Paris "
// matches "paris".
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, s := range list {
		m[strings.TrimSpace(s)] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
