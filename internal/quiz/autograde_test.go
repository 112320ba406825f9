package quiz

import (
	"encoding/json"
	"testing"
)

func gradeOnce(t *testing.T, q Question, payload string) GradeResult {
	t.Helper()
	res, err := NewGrader().Grade(q, json.RawMessage(payload))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	return res
}

func TestAutoGradeDeterministic(t *testing.T) {
	q := Question{Text: "?", Points: 5, Data: SingleChoiceData{Options: []string{"A", "B"}, CorrectOption: "B"}}
	first := gradeOnce(t, q, `"B"`)
	for i := 0; i < 10; i++ {
		if got := gradeOnce(t, q, `"B"`); got != first {
			t.Fatalf("grading is not deterministic: %+v vs %+v", got, first)
		}
	}
	if !first.IsCorrect || first.AwardedPoints != 5 {
		t.Fatalf("correct answer scored %+v", first)
	}
}

func TestTrueFalse(t *testing.T) {
	q := Question{Text: "?", Points: 2, Data: TrueFalseData{CorrectAnswer: false}}
	if res := gradeOnce(t, q, `false`); !res.IsCorrect || res.AwardedPoints != 2 {
		t.Fatalf("got %+v", res)
	}
	if res := gradeOnce(t, q, `true`); res.IsCorrect || res.AwardedPoints != 0 {
		t.Fatalf("got %+v", res)
	}
}

func TestMultipleChoiceAllOrNothing(t *testing.T) {
	q := Question{Text: "?", Points: 4, Data: MultipleChoiceData{
		Options:        []string{"A", "B", "C", "D"},
		CorrectOptions: []string{"A", "B", "C"},
	}}
	// Partial overlap scores zero.
	if res := gradeOnce(t, q, `["A","B"]`); res.IsCorrect || res.AwardedPoints != 0 {
		t.Fatalf("partial overlap must score 0, got %+v", res)
	}
	// Superset scores zero too.
	if res := gradeOnce(t, q, `["A","B","C","D"]`); res.IsCorrect {
		t.Fatalf("superset must score 0, got %+v", res)
	}
	// Exact set, any order.
	if res := gradeOnce(t, q, `["C","A","B"]`); !res.IsCorrect || res.AwardedPoints != 4 {
		t.Fatalf("exact set must score full, got %+v", res)
	}
}

func TestShortAnswerNormalization(t *testing.T) {
	q := Question{Text: "?", Points: 3, Data: ShortAnswerData{CorrectAnswer: "paris"}}
	for _, answer := range []string{`"Paris "`, `" PARIS"`, `"paris"`, `"  Paris  "`} {
		if res := gradeOnce(t, q, answer); !res.IsCorrect {
			t.Fatalf("%s should match %q", answer, "paris")
		}
	}
	if res := gradeOnce(t, q, `"London"`); res.IsCorrect {
		t.Fatal("wrong answer matched")
	}
}

func TestManualVariantsAreNotAutoGraded(t *testing.T) {
	manual := []Question{
		{Text: "essay", Points: 5, Data: TextAnswerData{}},
		{Text: "match", Points: 5, Data: MatchFollowingData{Pairs: []MatchPair{{Prompt: "p", Answer: "a"}}}},
		{Text: "sort", Points: 5, Data: SortableData{Items: []string{"A", "B", "C"}}},
		{Text: "___", Points: 5, Data: FillBlanksData{BlankAnswers: []string{"x"}}},
		{Text: "listen", Points: 5, Data: AudioVideoData{MediaURL: "https://cdn/a.mp3"}},
	}
	for _, q := range manual {
		if q.Data.Variant().AutoGradable() {
			t.Fatalf("%s must not be auto-gradable", q.Data.Variant())
		}
		res := gradeOnce(t, q, `"anything"`)
		if !res.NeedsManual {
			t.Fatalf("%s must need manual grading", q.Data.Variant())
		}
	}

	// A sortable answer in the wrong order is stored as-is for review, not
	// judged by the engine.
	srt := manual[2]
	res := gradeOnce(t, srt, `["A","C","B"]`)
	if res.IsCorrect || res.AwardedPoints != 0 || !res.NeedsManual {
		t.Fatalf("sortable must defer to the instructor, got %+v", res)
	}
}
