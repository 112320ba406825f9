package quiz

import "math"

// ComputeGrade folds answer records into a Grade. It is a pure function of
// its inputs: re-grading before finalize recomputes from the same state and
// calling it twice on unchanged records yields an identical result.
//
// Unanswered and ungraded questions contribute 0 to the total; max points is
// the sum over all questions on the quiz, answered or not.
func ComputeGrade(questions []Question, answers []AnswerRecord, passingScorePercent int) Grade {
	byQuestion := make(map[string]AnswerRecord, len(answers))
	for _, r := range answers {
		byQuestion[r.QuestionID] = r
	}

	g := Grade{}
	for _, q := range questions {
		g.MaxPoints += q.Points
		if r, ok := byQuestion[q.ID]; ok && r.AwardedPoints != nil {
			g.TotalPoints += *r.AwardedPoints
		}
	}
	if g.MaxPoints > 0 {
		g.Percentage = int(math.Round(g.TotalPoints / float64(g.MaxPoints) * 100))
	}
	g.Passed = g.Percentage >= passingScorePercent
	return g
}

func (a *Attempt) applyGrade(g Grade) {
	a.TotalPoints = g.TotalPoints
	a.MaxPoints = g.MaxPoints
	a.Percentage = g.Percentage
	a.Passed = g.Passed
}
