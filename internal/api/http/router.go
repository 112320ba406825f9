package http

import (
	"github.com/go-chi/chi/v5"

	authmw "github.com/matteusmoreira/eadinpeace-sub001/internal/auth/middleware"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/rbac"
)

// Mount wires the authenticated quiz/attempt/grading routes onto r.
func Mount(r chi.Router, svc *quiz.Service, authSvc *authmw.AuthService, defaultOrgID string) {
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:create")).Post("/quizzes", CreateQuizHandler(svc))
		pr.With(rbac.Require("quiz:edit")).Post("/quizzes/{quizID}/questions", AddQuestionHandler(svc))
		pr.With(rbac.Require("quiz:edit")).Put("/quizzes/{quizID}/publish", PublishQuizHandler(svc))
		pr.With(rbac.Require("quiz:delete")).Delete("/quizzes/{quizID}", DeleteQuizHandler(svc))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", GetQuizHandler(svc))

		pr.With(rbac.Require("attempt:create")).Post("/attempts", StartAttemptHandler(svc))
		pr.With(rbac.Require("attempt:save")).Put("/attempts/{attemptID}/answers/{questionID}", RecordAnswerHandler(svc))
		pr.With(rbac.Require("attempt:submit")).Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts", ListAttemptsHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts/{attemptID}", GetAttemptHandler(svc))
		pr.With(rbac.Require("attempt:grade")).Post("/attempts/{attemptID}/grading", ApplyGradingHandler(svc))

		pr.With(rbac.Require("rubric:view")).Get("/rubrics", ListRubricsHandler(svc, defaultOrgID))
		pr.With(rbac.Require("rubric:manage")).Post("/rubrics", CreateRubricHandler(svc, defaultOrgID))
	})
}
