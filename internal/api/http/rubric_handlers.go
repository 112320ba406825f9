package http

import (
	"net/http"
	"strings"

	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
)

// ListRubricsHandler serves rubrics for an organization.
// GET /rubrics?organization_id=...
func ListRubricsHandler(svc *quiz.Service, defaultOrgID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := strings.TrimSpace(r.URL.Query().Get("organization_id"))
		if orgID == "" {
			orgID = defaultOrgID
		}
		list, err := svc.ListRubrics(r.Context(), orgID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /rubrics
func CreateRubricHandler(svc *quiz.Service, defaultOrgID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.Rubric
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.OrganizationID == "" {
			req.OrganizationID = defaultOrgID
		}
		created, err := svc.CreateRubric(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}
