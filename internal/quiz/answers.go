package quiz

import (
	"encoding/json"
	"strings"
)

// ValidateAnswer checks that a submitted payload has the exact shape the
// question's variant expects and returns the normalized payload that will be
// stored. It never coerces a mismatched shape and it does not judge
// correctness.
func ValidateAnswer(q Question, payload json.RawMessage) (json.RawMessage, error) {
	switch d := q.Data.(type) {
	case TrueFalseData:
		var v bool
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, validationErrorf("true/false answer must be a boolean")
		}
		return marshalPayload(v)

	case SingleChoiceData:
		v, err := decodeString(payload, "single choice")
		if err != nil {
			return nil, err
		}
		if !containsString(d.Options, v) {
			return nil, validationErrorf("selected option %q is not among the question's options", v)
		}
		return marshalPayload(v)

	case MultipleChoiceData:
		v, err := decodeStringList(payload, "multiple choice")
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, validationErrorf("at least one option must be selected")
		}
		seen := map[string]bool{}
		for _, s := range v {
			if !containsString(d.Options, s) {
				return nil, validationErrorf("selected option %q is not among the question's options", s)
			}
			if seen[s] {
				return nil, validationErrorf("option %q selected more than once", s)
			}
			seen[s] = true
		}
		return marshalPayload(v)

	case ShortAnswerData:
		v, err := decodeString(payload, "short answer")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(v) == "" {
			return nil, validationErrorf("answer text is empty")
		}
		return marshalPayload(v)

	case TextAnswerData:
		v, err := decodeString(payload, "text answer")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(v) == "" {
			return nil, validationErrorf("answer text is empty")
		}
		return marshalPayload(v)

	case MatchFollowingData:
		var v []MatchPair
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, validationErrorf("matching answer must be a list of {prompt, answer} pairs")
		}
		if len(v) != len(d.Pairs) {
			return nil, validationErrorf("expected %d pairs, got %d", len(d.Pairs), len(v))
		}
		prompts := make([]string, 0, len(d.Pairs))
		for _, p := range d.Pairs {
			prompts = append(prompts, p.Prompt)
		}
		submitted := make([]string, 0, len(v))
		for _, p := range v {
			if strings.TrimSpace(p.Answer) == "" {
				return nil, validationErrorf("pair for prompt %q has an empty answer", p.Prompt)
			}
			submitted = append(submitted, p.Prompt)
		}
		if !isPermutation(submitted, prompts) {
			return nil, validationErrorf("submitted prompts do not match the question's prompts")
		}
		return marshalPayload(v)

	case SortableData:
		v, err := decodeStringList(payload, "sortable")
		if err != nil {
			return nil, err
		}
		if !isPermutation(v, d.Items) {
			return nil, validationErrorf("submitted order must be a permutation of the question's items")
		}
		return marshalPayload(v)

	case FillBlanksData:
		v, err := decodeStringList(payload, "fill-in-the-blanks")
		if err != nil {
			return nil, err
		}
		if len(v) != len(d.BlankAnswers) {
			return nil, validationErrorf("expected %d blank answers, got %d", len(d.BlankAnswers), len(v))
		}
		return marshalPayload(v)

	case AudioVideoData:
		v, err := decodeString(payload, "audio/video response")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(v) == "" {
			return nil, validationErrorf("answer text is empty")
		}
		return marshalPayload(v)
	}
	return nil, validationErrorf("unknown question variant")
}

func decodeString(payload json.RawMessage, what string) (string, error) {
	var v string
	if err := json.Unmarshal(payload, &v); err != nil {
		return "", validationErrorf("%s answer must be a string", what)
	}
	return v, nil
}

func decodeStringList(payload json.RawMessage, what string) ([]string, error) {
	var v []string
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, validationErrorf("%s answer must be a list of strings", what)
	}
	return v, nil
}

func marshalPayload(v interface{}) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// isPermutation reports whether a and b hold the same strings with the same
// multiplicities, in any order.
func isPermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := map[string]int{}
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}
