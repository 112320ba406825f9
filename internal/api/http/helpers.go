package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
)

var validate = validator.New()

// decodeAndValidate parses the JSON body and runs the struct's validation
// tags; domain-level rules still run in the quiz package afterwards.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("bad json: " + err.Error())
	}
	return validate.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP statuses. The reason
// string always reaches the caller; the engine never returns a generic
// failure.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *quiz.ValidationError
		iq *quiz.InvalidQuestionDataError
		gr *quiz.GradeOutOfRangeError
	)
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrAttemptLimitExceeded),
		errors.Is(err, quiz.ErrAttemptAlreadyActive),
		errors.Is(err, quiz.ErrAttemptClosed),
		errors.Is(err, quiz.ErrAttemptNotSubmitted),
		errors.Is(err, quiz.ErrQuizFrozen),
		errors.Is(err, quiz.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ve), errors.As(err, &iq), errors.As(err, &gr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
