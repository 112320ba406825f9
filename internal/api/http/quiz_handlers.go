package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/rbac"
)

type createQuizReq struct {
	CourseID            string `json:"course_id" validate:"required"`
	LessonID            string `json:"lesson_id"`
	OrganizationID      string `json:"organization_id"`
	Title               string `json:"title" validate:"required"`
	Description         string `json:"description"`
	TimeLimitMinutes    int    `json:"time_limit_minutes" validate:"gte=0"`
	PassingScorePercent int    `json:"passing_score_percent" validate:"gte=0,lte=100"`
	MaxAttempts         int    `json:"max_attempts" validate:"gte=1"`
}

// POST /quizzes
func CreateQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuizReq
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := svc.CreateQuiz(r.Context(), quiz.CreateQuizInput{
			CourseID:            req.CourseID,
			LessonID:            req.LessonID,
			OrganizationID:      req.OrganizationID,
			Title:               req.Title,
			Description:         req.Description,
			TimeLimitMinutes:    req.TimeLimitMinutes,
			PassingScorePercent: req.PassingScorePercent,
			MaxAttempts:         req.MaxAttempts,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

type addQuestionReq struct {
	Text        string          `json:"text" validate:"required"`
	Points      int             `json:"points" validate:"gt=0"`
	Explanation string          `json:"explanation"`
	Variant     quiz.Variant    `json:"variant" validate:"required"`
	Data        json.RawMessage `json:"data" validate:"required"`
}

// POST /quizzes/{quizID}/questions
func AddQuestionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		var req addQuestionReq
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := quiz.DecodeVariantData(req.Variant, req.Data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		question, err := svc.AddQuestion(r.Context(), quizID, quiz.QuestionInput{
			Text:        req.Text,
			Points:      req.Points,
			Explanation: req.Explanation,
			Data:        data,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, question)
	}
}

// PUT /quizzes/{quizID}/publish
func PublishQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Published bool `json:"published"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := svc.PublishQuiz(r.Context(), chi.URLParam(r, "quizID"), req.Published); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"published": req.Published})
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type quizResponse struct {
	quiz.Quiz
	Questions []quiz.PublicQuestion `json:"questions"`
}

// GET /quizzes/{quizID}
// Learners get the public view; graders get full questions with answer data.
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		q, err := svc.GetQuiz(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if rbac.Has(rbac.RoleFromContext(r.Context()), "attempt:grade") {
			writeJSON(w, http.StatusOK, q)
			return
		}
		resp := quizResponse{Quiz: q}
		resp.Quiz.Questions = nil
		for _, question := range q.Questions {
			resp.Questions = append(resp.Questions, question.Public())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
