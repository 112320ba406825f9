package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/matteusmoreira/eadinpeace-sub001/internal/auth/middleware"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
)

type applyGradingReq struct {
	Grades   []quiz.QuestionGrade `json:"grades"`
	Comments string               `json:"comments,omitempty"`
	Finalize bool                 `json:"finalize,omitempty"`
	// Revision the grader read the attempt at; stale saves are rejected with
	// 409 instead of silently overwriting a colleague's work.
	Revision int64 `json:"revision,omitempty"`
}

// POST /attempts/{attemptID}/grading
// finalize=false is the draft path: scores persist, status stays. With
// finalize=true the attempt transitions to graded and the learner is
// notified.
func ApplyGradingHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		var req applyGradingReq
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		grade, err := svc.GradeAttempt(r.Context(), quiz.GradeAttemptInput{
			AttemptID: attemptID,
			Grades:    req.Grades,
			Comments:  req.Comments,
			GradedBy:  authmw.SubjectFromContext(r.Context()),
			Finalize:  req.Finalize,
			Revision:  req.Revision,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, grade)
	}
}
