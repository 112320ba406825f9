package quiz

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "true_false ok",
			q:    Question{Text: "Go is compiled.", Points: 1, Data: TrueFalseData{CorrectAnswer: true}},
		},
		{
			name:    "zero points rejected",
			q:       Question{Text: "x", Points: 0, Data: TrueFalseData{}},
			wantErr: true,
		},
		{
			name:    "single_choice needs two options",
			q:       Question{Text: "x", Points: 1, Data: SingleChoiceData{Options: []string{"A"}, CorrectOption: "A"}},
			wantErr: true,
		},
		{
			name:    "single_choice correct must be an option",
			q:       Question{Text: "x", Points: 1, Data: SingleChoiceData{Options: []string{"A", "B"}, CorrectOption: "C"}},
			wantErr: true,
		},
		{
			name: "single_choice ok",
			q:    Question{Text: "x", Points: 1, Data: SingleChoiceData{Options: []string{"A", "B"}, CorrectOption: "B"}},
		},
		{
			name:    "multiple_choice correct outside options",
			q:       Question{Text: "x", Points: 1, Data: MultipleChoiceData{Options: []string{"A", "B"}, CorrectOptions: []string{"A", "C"}}},
			wantErr: true,
		},
		{
			name:    "multiple_choice needs a correct set",
			q:       Question{Text: "x", Points: 1, Data: MultipleChoiceData{Options: []string{"A", "B"}}},
			wantErr: true,
		},
		{
			name:    "match_following needs pairs",
			q:       Question{Text: "x", Points: 1, Data: MatchFollowingData{}},
			wantErr: true,
		},
		{
			name:    "match_following empty answer",
			q:       Question{Text: "x", Points: 1, Data: MatchFollowingData{Pairs: []MatchPair{{Prompt: "p", Answer: " "}}}},
			wantErr: true,
		},
		{
			name:    "sortable needs items",
			q:       Question{Text: "x", Points: 1, Data: SortableData{}},
			wantErr: true,
		},
		{
			name:    "audio_video needs media url",
			q:       Question{Text: "x", Points: 1, Data: AudioVideoData{}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr {
				var iq *InvalidQuestionDataError
				if !errors.As(err, &iq) {
					t.Fatalf("expected InvalidQuestionDataError, got %T", err)
				}
			}
		})
	}
}

func TestFillBlanksMarkerCount(t *testing.T) {
	q := Question{
		Text:   "The capital of France is ___ and of Italy is ___.",
		Points: 2,
		Data:   FillBlanksData{BlankAnswers: []string{"Paris", "Rome"}},
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("matching marker count should validate: %v", err)
	}

	q.Data = FillBlanksData{BlankAnswers: []string{"Paris"}}
	if err := q.Validate(); err == nil {
		t.Fatal("marker/answer count mismatch must be rejected")
	}

	// A longer run of underscores is still one blank.
	if n := CountBlankMarkers("x _____ y ___ z"); n != 2 {
		t.Fatalf("CountBlankMarkers = %d, want 2", n)
	}
	if n := CountBlankMarkers("no blanks here __"); n != 0 {
		t.Fatalf("two underscores should not count, got %d", n)
	}
}

func TestQuestionJSONRoundTrip(t *testing.T) {
	orig := Question{
		ID:     "q1",
		Text:   "Pick two",
		Points: 3,
		Data:   MultipleChoiceData{Options: []string{"A", "B", "C"}, CorrectOptions: []string{"A", "C"}},
	}
	b, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var back Question
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	d, ok := back.Data.(MultipleChoiceData)
	if !ok {
		t.Fatalf("variant lost in round trip: %T", back.Data)
	}
	if len(d.CorrectOptions) != 2 || back.Points != 3 {
		t.Fatalf("round trip mangled data: %+v", back)
	}

	var unknown Question
	if err := json.Unmarshal([]byte(`{"id":"x","variant":"essay_v2","data":{}}`), &unknown); err == nil {
		t.Fatal("unknown variant must fail to decode")
	}
}

func TestPublicQuestionHidesAnswers(t *testing.T) {
	q := Question{
		ID:     "q1",
		Text:   "Order the steps",
		Points: 2,
		Data:   SortableData{Items: []string{"boot", "alloc", "run"}},
	}
	p := q.Public()
	if len(p.Items) != 3 {
		t.Fatalf("items missing: %+v", p)
	}
	// Sorted lexicographically, not in answer order.
	if p.Items[0] != "alloc" || p.Items[1] != "boot" || p.Items[2] != "run" {
		t.Fatalf("public items leak the correct order: %v", p.Items)
	}

	sc := Question{ID: "q2", Text: "?", Points: 1,
		Data: SingleChoiceData{Options: []string{"A", "B"}, CorrectOption: "B"}}
	b, err := json.Marshal(sc.Public())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "correct") {
		t.Fatalf("public view mentions correctness: %s", b)
	}
}
