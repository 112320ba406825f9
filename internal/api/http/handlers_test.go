package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/matteusmoreira/eadinpeace-sub001/internal/auth/middleware"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
)

type env struct {
	srv        *httptest.Server
	instructor string
	student    string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	svc := quiz.NewService(quiz.NewInMemoryStore())
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	Mount(r, svc, authSvc, "org-1")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	instructor, err := authSvc.IssueJWT("instructor-1", "instructor")
	if err != nil {
		t.Fatal(err)
	}
	student, err := authSvc.IssueJWT("student-1", "student")
	if err != nil {
		t.Fatal(err)
	}
	return &env{srv: srv, instructor: instructor, student: student}
}

func (e *env) do(t *testing.T, token, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(json.RawMessage); ok {
			buf.Write(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

// buildQuiz drives the instructor endpoints: create, add questions, publish.
func (e *env) buildQuiz(t *testing.T) (quizID string, questionIDs []string) {
	t.Helper()
	resp := e.do(t, e.instructor, "POST", "/quizzes", map[string]interface{}{
		"course_id":             "course-1",
		"title":                 "Module 3 quiz",
		"passing_score_percent": 60,
		"max_attempts":          2,
	})
	wantStatus(t, resp, http.StatusCreated)
	var created quiz.Quiz
	decodeBody(t, resp, &created)
	quizID = created.ID

	questions := []map[string]interface{}{
		{
			"text":    "Pick the right one",
			"points":  5,
			"variant": "single_choice",
			"data":    map[string]interface{}{"options": []string{"A", "B", "C"}, "correct_option": "B"},
		},
		{
			"text":    "Explain your reasoning",
			"points":  5,
			"variant": "text_answer",
			"data":    map[string]interface{}{},
		},
	}
	for _, q := range questions {
		resp = e.do(t, e.instructor, "POST", "/quizzes/"+quizID+"/questions", q)
		wantStatus(t, resp, http.StatusCreated)
		var added struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &added)
		questionIDs = append(questionIDs, added.ID)
	}

	resp = e.do(t, e.instructor, "PUT", "/quizzes/"+quizID+"/publish", map[string]bool{"published": true})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	return quizID, questionIDs
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	quizID, questionIDs := e.buildQuiz(t)

	// Learner view must not leak answers.
	resp := e.do(t, e.student, "GET", "/quizzes/"+quizID, nil)
	wantStatus(t, resp, http.StatusOK)
	var studentView struct {
		Questions []quiz.PublicQuestion `json:"questions"`
	}
	decodeBody(t, resp, &studentView)
	if len(studentView.Questions) != 2 {
		t.Fatalf("student sees %d questions", len(studentView.Questions))
	}
	raw, _ := json.Marshal(studentView)
	if bytes.Contains(raw, []byte("correct_option")) {
		t.Fatal("answer key leaked to the learner view")
	}

	// Start an attempt.
	resp = e.do(t, e.student, "POST", "/attempts", map[string]string{"quiz_id": quizID})
	wantStatus(t, resp, http.StatusCreated)
	var attempt quiz.Attempt
	decodeBody(t, resp, &attempt)
	if attempt.UserID != "student-1" || attempt.AttemptNumber != 1 {
		t.Fatalf("attempt: %+v", attempt)
	}

	// A second concurrent start conflicts.
	resp = e.do(t, e.student, "POST", "/attempts", map[string]string{"quiz_id": quizID})
	wantStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	// Answer both questions.
	resp = e.do(t, e.student, "PUT",
		fmt.Sprintf("/attempts/%s/answers/%s", attempt.ID, questionIDs[0]),
		json.RawMessage(`"B"`))
	wantStatus(t, resp, http.StatusOK)
	var recorded quiz.RecordAnswerResult
	decodeBody(t, resp, &recorded)
	if recorded.IsCorrect == nil || !*recorded.IsCorrect {
		t.Fatalf("auto-grade over HTTP: %+v", recorded)
	}

	resp = e.do(t, e.student, "PUT",
		fmt.Sprintf("/attempts/%s/answers/%s", attempt.ID, questionIDs[1]),
		json.RawMessage(`"because reasons"`))
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Malformed payload shape: 400, not 500.
	resp = e.do(t, e.student, "PUT",
		fmt.Sprintf("/attempts/%s/answers/%s", attempt.ID, questionIDs[0]),
		json.RawMessage(`["B"]`))
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// Submit.
	resp = e.do(t, e.student, "POST", "/attempts/"+attempt.ID+"/submit",
		map[string]int{"time_spent_seconds": 90})
	wantStatus(t, resp, http.StatusOK)
	var grade quiz.Grade
	decodeBody(t, resp, &grade)
	if grade.Percentage != 50 || grade.Passed {
		t.Fatalf("submit grade: %+v", grade)
	}

	// Students cannot grade.
	resp = e.do(t, e.student, "POST", "/attempts/"+attempt.ID+"/grading",
		map[string]interface{}{"finalize": true})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// The instructor grades the essay and finalizes.
	resp = e.do(t, e.instructor, "POST", "/attempts/"+attempt.ID+"/grading", map[string]interface{}{
		"grades":   []map[string]interface{}{{"question_id": questionIDs[1], "points": 4, "feedback": "good"}},
		"comments": "well argued",
		"finalize": true,
	})
	wantStatus(t, resp, http.StatusOK)
	decodeBody(t, resp, &grade)
	if grade.Percentage != 90 || !grade.Passed {
		t.Fatalf("final grade: %+v", grade)
	}

	// Answering after submission is a conflict.
	resp = e.do(t, e.student, "PUT",
		fmt.Sprintf("/attempts/%s/answers/%s", attempt.ID, questionIDs[0]),
		json.RawMessage(`"A"`))
	wantStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	// The student can read their own graded attempt.
	resp = e.do(t, e.student, "GET", "/attempts/"+attempt.ID, nil)
	wantStatus(t, resp, http.StatusOK)
	var view quiz.AttemptView
	decodeBody(t, resp, &view)
	if view.Status != quiz.StatusGraded || view.InstructorComments != "well argued" {
		t.Fatalf("attempt view: %+v", view.Attempt)
	}
}

func TestAttemptOwnershipOverHTTP(t *testing.T) {
	e := newEnv(t)
	quizID, _ := e.buildQuiz(t)

	resp := e.do(t, e.student, "POST", "/attempts", map[string]string{"quiz_id": quizID})
	wantStatus(t, resp, http.StatusCreated)
	var attempt quiz.Attempt
	decodeBody(t, resp, &attempt)

	authSvc := authmw.NewAuthService("test-secret")
	otherStudent, err := authSvc.IssueJWT("student-2", "student")
	if err != nil {
		t.Fatal(err)
	}

	// Another student cannot read it; the instructor can.
	resp = e.do(t, otherStudent, "GET", "/attempts/"+attempt.ID, nil)
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = e.do(t, e.instructor, "GET", "/attempts/"+attempt.ID, nil)
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Listing without view-all is scoped to the caller even with a user_id
	// filter for someone else.
	resp = e.do(t, otherStudent, "GET", "/attempts?user_id=student-1", nil)
	wantStatus(t, resp, http.StatusOK)
	var list []quiz.Attempt
	decodeBody(t, resp, &list)
	if len(list) != 0 {
		t.Fatalf("student-2 must not see student-1's attempts: %d returned", len(list))
	}

	resp = e.do(t, e.instructor, "GET", "/attempts?user_id=student-1", nil)
	wantStatus(t, resp, http.StatusOK)
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("instructor list: %d attempts", len(list))
	}
}

func TestRoleGuardsOverHTTP(t *testing.T) {
	e := newEnv(t)

	// Students cannot create quizzes.
	resp := e.do(t, e.student, "POST", "/quizzes", map[string]interface{}{
		"course_id": "c", "title": "t", "max_attempts": 1,
	})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// No token at all.
	req, _ := http.NewRequest("GET", e.srv.URL+"/rubrics", nil)
	raw, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, raw, http.StatusUnauthorized)
	raw.Body.Close()
}

func TestRubricEndpoints(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, e.instructor, "POST", "/rubrics", map[string]interface{}{
		"name": "Essay rubric",
		"criteria": []map[string]interface{}{
			{"name": "depth", "max_points": 10, "levels": []map[string]interface{}{
				{"label": "excellent", "percentage": 100},
				{"label": "good", "percentage": 80},
			}},
		},
	})
	wantStatus(t, resp, http.StatusCreated)
	var created quiz.Rubric
	decodeBody(t, resp, &created)
	if created.ID == "" || created.OrganizationID != "org-1" {
		t.Fatalf("rubric defaults: %+v", created)
	}

	resp = e.do(t, e.instructor, "GET", "/rubrics", nil)
	wantStatus(t, resp, http.StatusOK)
	var rubrics []quiz.Rubric
	decodeBody(t, resp, &rubrics)
	if len(rubrics) != 1 || rubrics[0].Name != "Essay rubric" {
		t.Fatalf("rubric list: %+v", rubrics)
	}

	// Students may view but not manage.
	resp = e.do(t, e.student, "POST", "/rubrics", map[string]interface{}{"name": "x"})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}
