package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Variant identifies one of the nine question shapes.
type Variant string

const (
	VariantTrueFalse      Variant = "true_false"
	VariantSingleChoice   Variant = "single_choice"
	VariantMultipleChoice Variant = "multiple_choice"
	VariantShortAnswer    Variant = "short_answer"
	VariantTextAnswer     Variant = "text_answer"
	VariantMatchFollowing Variant = "match_following"
	VariantSortable       Variant = "sortable"
	VariantFillBlanks     Variant = "fill_blanks"
	VariantAudioVideo     Variant = "audio_video"
)

// Variants lists every supported shape. Registries (grading strategies,
// payload decoders) are checked against this list so a new variant cannot
// ship half-wired.
var Variants = []Variant{
	VariantTrueFalse,
	VariantSingleChoice,
	VariantMultipleChoice,
	VariantShortAnswer,
	VariantTextAnswer,
	VariantMatchFollowing,
	VariantSortable,
	VariantFillBlanks,
	VariantAudioVideo,
}

// AutoGradable reports whether correctness is fully determined by matching,
// with no human judgment involved.
func (v Variant) AutoGradable() bool {
	switch v {
	case VariantTrueFalse, VariantSingleChoice, VariantMultipleChoice, VariantShortAnswer:
		return true
	case VariantTextAnswer, VariantMatchFollowing, VariantSortable, VariantFillBlanks, VariantAudioVideo:
		return false
	}
	return false
}

// VariantData is the closed set of per-variant answer/correctness data.
// The unexported marker method seals it to this package; every switch over
// concrete types handles all nine cases.
type VariantData interface {
	Variant() Variant
	// validate enforces the variant's construction invariants. The question
	// text is passed in for variants whose invariants span both (fill_blanks).
	validate(questionText string) error
}

type MatchPair struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

type TrueFalseData struct {
	CorrectAnswer bool `json:"correct_answer"`
}

type SingleChoiceData struct {
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

type MultipleChoiceData struct {
	Options        []string `json:"options"`
	CorrectOptions []string `json:"correct_options"`
}

type ShortAnswerData struct {
	CorrectAnswer string `json:"correct_answer"`
}

type TextAnswerData struct{}

type MatchFollowingData struct {
	Pairs []MatchPair `json:"pairs"`
}

// SortableData holds the items in their correct order.
type SortableData struct {
	Items []string `json:"items"`
}

type FillBlanksData struct {
	BlankAnswers []string `json:"blank_answers"`
}

type AudioVideoData struct {
	MediaURL string `json:"media_url"`
}

func (TrueFalseData) Variant() Variant      { return VariantTrueFalse }
func (SingleChoiceData) Variant() Variant   { return VariantSingleChoice }
func (MultipleChoiceData) Variant() Variant { return VariantMultipleChoice }
func (ShortAnswerData) Variant() Variant    { return VariantShortAnswer }
func (TextAnswerData) Variant() Variant     { return VariantTextAnswer }
func (MatchFollowingData) Variant() Variant { return VariantMatchFollowing }
func (SortableData) Variant() Variant       { return VariantSortable }
func (FillBlanksData) Variant() Variant     { return VariantFillBlanks }
func (AudioVideoData) Variant() Variant     { return VariantAudioVideo }

func (TrueFalseData) validate(string) error { return nil }

func (d SingleChoiceData) validate(string) error {
	if err := validateOptions(VariantSingleChoice, d.Options); err != nil {
		return err
	}
	if !containsString(d.Options, d.CorrectOption) {
		return invalidQuestionf(VariantSingleChoice, "correct option %q is not among the options", d.CorrectOption)
	}
	return nil
}

func (d MultipleChoiceData) validate(string) error {
	if err := validateOptions(VariantMultipleChoice, d.Options); err != nil {
		return err
	}
	if len(d.CorrectOptions) == 0 {
		return invalidQuestionf(VariantMultipleChoice, "at least one correct option is required")
	}
	seen := map[string]bool{}
	for _, c := range d.CorrectOptions {
		if !containsString(d.Options, c) {
			return invalidQuestionf(VariantMultipleChoice, "correct option %q is not among the options", c)
		}
		if seen[c] {
			return invalidQuestionf(VariantMultipleChoice, "duplicate correct option %q", c)
		}
		seen[c] = true
	}
	return nil
}

func (d ShortAnswerData) validate(string) error {
	if strings.TrimSpace(d.CorrectAnswer) == "" {
		return invalidQuestionf(VariantShortAnswer, "correct answer is empty")
	}
	return nil
}

func (TextAnswerData) validate(string) error { return nil }

func (d MatchFollowingData) validate(string) error {
	if len(d.Pairs) == 0 {
		return invalidQuestionf(VariantMatchFollowing, "at least one pair is required")
	}
	prompts := map[string]bool{}
	for i, p := range d.Pairs {
		if strings.TrimSpace(p.Prompt) == "" || strings.TrimSpace(p.Answer) == "" {
			return invalidQuestionf(VariantMatchFollowing, "pair %d has an empty prompt or answer", i+1)
		}
		if prompts[p.Prompt] {
			return invalidQuestionf(VariantMatchFollowing, "duplicate prompt %q", p.Prompt)
		}
		prompts[p.Prompt] = true
	}
	return nil
}

func (d SortableData) validate(string) error {
	if len(d.Items) == 0 {
		return invalidQuestionf(VariantSortable, "at least one item is required")
	}
	seen := map[string]bool{}
	for _, it := range d.Items {
		if strings.TrimSpace(it) == "" {
			return invalidQuestionf(VariantSortable, "items must be non-empty")
		}
		if seen[it] {
			return invalidQuestionf(VariantSortable, "duplicate item %q", it)
		}
		seen[it] = true
	}
	return nil
}

func (d FillBlanksData) validate(questionText string) error {
	if len(d.BlankAnswers) == 0 {
		return invalidQuestionf(VariantFillBlanks, "at least one blank answer is required")
	}
	for i, a := range d.BlankAnswers {
		if strings.TrimSpace(a) == "" {
			return invalidQuestionf(VariantFillBlanks, "blank answer %d is empty", i+1)
		}
	}
	if n := CountBlankMarkers(questionText); n != len(d.BlankAnswers) {
		return invalidQuestionf(VariantFillBlanks, "question text has %d blank markers but %d answers were given", n, len(d.BlankAnswers))
	}
	return nil
}

func (d AudioVideoData) validate(string) error {
	if strings.TrimSpace(d.MediaURL) == "" {
		return invalidQuestionf(VariantAudioVideo, "media URL is required")
	}
	return nil
}

// blankMarker matches one blank in a fill_blanks question text. A blank is a
// run of three or more underscores; longer runs still count as one blank.
var blankMarker = regexp.MustCompile(`_{3,}`)

func CountBlankMarkers(text string) int {
	return len(blankMarker.FindAllStringIndex(text, -1))
}

func validateOptions(v Variant, options []string) error {
	if len(options) < 2 {
		return invalidQuestionf(v, "at least two options are required")
	}
	seen := map[string]bool{}
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return invalidQuestionf(v, "options must be non-empty")
		}
		if seen[o] {
			return invalidQuestionf(v, "duplicate option %q", o)
		}
		seen[o] = true
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// emptyData returns a fresh zero value for a variant, for JSON decoding.
func emptyData(v Variant) (VariantData, error) {
	switch v {
	case VariantTrueFalse:
		return TrueFalseData{}, nil
	case VariantSingleChoice:
		return SingleChoiceData{}, nil
	case VariantMultipleChoice:
		return MultipleChoiceData{}, nil
	case VariantShortAnswer:
		return ShortAnswerData{}, nil
	case VariantTextAnswer:
		return TextAnswerData{}, nil
	case VariantMatchFollowing:
		return MatchFollowingData{}, nil
	case VariantSortable:
		return SortableData{}, nil
	case VariantFillBlanks:
		return FillBlanksData{}, nil
	case VariantAudioVideo:
		return AudioVideoData{}, nil
	}
	return nil, fmt.Errorf("unknown question variant %q", v)
}

// DecodeVariantData parses the raw variant payload for the given variant.
func DecodeVariantData(v Variant, raw json.RawMessage) (VariantData, error) {
	zero, err := emptyData(v)
	if err != nil {
		return nil, err
	}
	switch zero.(type) {
	case TrueFalseData:
		var d TrueFalseData
		err = json.Unmarshal(raw, &d)
		return d, err
	case SingleChoiceData:
		var d SingleChoiceData
		err = json.Unmarshal(raw, &d)
		return d, err
	case MultipleChoiceData:
		var d MultipleChoiceData
		err = json.Unmarshal(raw, &d)
		return d, err
	case ShortAnswerData:
		var d ShortAnswerData
		err = json.Unmarshal(raw, &d)
		return d, err
	case TextAnswerData:
		var d TextAnswerData
		err = json.Unmarshal(raw, &d)
		return d, err
	case MatchFollowingData:
		var d MatchFollowingData
		err = json.Unmarshal(raw, &d)
		return d, err
	case SortableData:
		var d SortableData
		err = json.Unmarshal(raw, &d)
		return d, err
	case FillBlanksData:
		var d FillBlanksData
		err = json.Unmarshal(raw, &d)
		return d, err
	case AudioVideoData:
		var d AudioVideoData
		err = json.Unmarshal(raw, &d)
		return d, err
	}
	return nil, fmt.Errorf("unknown question variant %q", v)
}
