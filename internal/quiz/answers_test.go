package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustValidate(t *testing.T, q Question, payload string) json.RawMessage {
	t.Helper()
	out, err := ValidateAnswer(q, json.RawMessage(payload))
	if err != nil {
		t.Fatalf("ValidateAnswer(%s): %v", payload, err)
	}
	return out
}

func mustReject(t *testing.T, q Question, payload string) {
	t.Helper()
	_, err := ValidateAnswer(q, json.RawMessage(payload))
	if err == nil {
		t.Fatalf("ValidateAnswer(%s): expected rejection", payload)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestValidateAnswerShapes(t *testing.T) {
	tf := Question{Text: "?", Points: 1, Data: TrueFalseData{CorrectAnswer: true}}
	mustValidate(t, tf, `true`)
	mustReject(t, tf, `"true"`) // no coercion
	mustReject(t, tf, `1`)

	sc := Question{Text: "?", Points: 1, Data: SingleChoiceData{Options: []string{"A", "B"}, CorrectOption: "A"}}
	mustValidate(t, sc, `"B"`)
	mustReject(t, sc, `"Z"`) // not among options
	mustReject(t, sc, `["A"]`)

	mc := Question{Text: "?", Points: 1, Data: MultipleChoiceData{Options: []string{"A", "B", "C"}, CorrectOptions: []string{"A"}}}
	mustValidate(t, mc, `["A","C"]`)
	mustReject(t, mc, `[]`)
	mustReject(t, mc, `["A","A"]`)
	mustReject(t, mc, `["A","Z"]`)
	mustReject(t, mc, `"A"`)

	srt := Question{Text: "?", Points: 1, Data: SortableData{Items: []string{"A", "B", "C"}}}
	mustValidate(t, srt, `["C","A","B"]`)
	mustReject(t, srt, `["A","B"]`)       // missing item
	mustReject(t, srt, `["A","B","Z"]`)   // foreign item
	mustReject(t, srt, `["A","A","B"]`)   // not a permutation
	mustReject(t, srt, `"A,B,C"`)         // arbitrary string

	fb := Question{
		Text:   "___ plus ___",
		Points: 1,
		Data:   FillBlanksData{BlankAnswers: []string{"one", "two"}},
	}
	mustValidate(t, fb, `["uno","dos"]`)
	mustValidate(t, fb, `["uno",""]`) // a blank left empty is shape-valid
	mustReject(t, fb, `["uno"]`)      // arity mismatch

	mf := Question{Text: "?", Points: 1, Data: MatchFollowingData{Pairs: []MatchPair{
		{Prompt: "dog", Answer: "bark"},
		{Prompt: "cat", Answer: "meow"},
	}}}
	mustValidate(t, mf, `[{"prompt":"cat","answer":"purr"},{"prompt":"dog","answer":"woof"}]`)
	mustReject(t, mf, `[{"prompt":"dog","answer":"woof"}]`)                                  // pair missing
	mustReject(t, mf, `[{"prompt":"dog","answer":"woof"},{"prompt":"fox","answer":"ring"}]`) // unknown prompt
	mustReject(t, mf, `[{"prompt":"dog","answer":""},{"prompt":"cat","answer":"meow"}]`)

	ta := Question{Text: "?", Points: 1, Data: TextAnswerData{}}
	mustValidate(t, ta, `"some essay"`)
	mustReject(t, ta, `"   "`)

	av := Question{Text: "?", Points: 1, Data: AudioVideoData{MediaURL: "https://cdn/x.mp4"}}
	mustValidate(t, av, `"my observations"`)
	mustReject(t, av, `42`)
}
