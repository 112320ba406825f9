package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/matteusmoreira/eadinpeace-sub001/internal/auth/middleware"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/rbac"
)

// POST /attempts
// Learners start attempts for themselves; the quiz id comes from the body.
func StartAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID string `json:"quiz_id" validate:"required"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		a, err := svc.StartAttempt(r.Context(), req.QuizID, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// PUT /attempts/{attemptID}/answers/{questionID}
// Body is the raw variant-shaped payload; re-answering overwrites.
func RecordAnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		questionID := chi.URLParam(r, "questionID")
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := svc.RecordAnswer(r.Context(), attemptID, questionID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TimeSpentSeconds int `json:"time_spent_seconds"`
		}
		// Body is optional; time spent is client-reported and advisory.
		_ = json.NewDecoder(r.Body).Decode(&req)
		grade, err := svc.SubmitAttempt(r.Context(), chi.URLParam(r, "attemptID"), req.TimeSpentSeconds)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, grade)
	}
}

// GET /attempts/{attemptID}
// Owners see their own attempt; attempt:view-all sees any.
func GetAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if !rbac.Has(role, "attempt:view-all") && view.UserID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// GET /attempts?quiz_id=...&user_id=...&status=...&limit=50&offset=0
// Roles without attempt:view-all are scoped to their own attempts.
func ListAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if !rbac.Has(role, "attempt:view-all") {
			userID = sub
		}
		list, err := svc.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: strings.TrimSpace(r.URL.Query().Get("quiz_id")),
			UserID: userID,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
