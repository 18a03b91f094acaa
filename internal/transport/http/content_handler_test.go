package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grader-content-api/internal/app"
	"grader-content-api/internal/domain"
	"grader-content-api/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewDocumentStore()
	ctx := context.Background()
	put := func(p domain.Path, body string) {
		if err := store.Set(ctx, p, json.RawMessage(body)); err != nil {
			t.Fatalf("set %s: %v", p, err)
		}
	}
	put(domain.SubjectsPath("5").Doc("math"), `{"id":"stale","grade":"5","name":"Mathematics"}`)
	put(domain.SubjectsPath("5").Doc("english"), `{"grade":"5","name":"English"}`)
	put(domain.ChaptersPath("5", "math").Doc("advanced"), `{"name":"Advanced Topics","order":2}`)
	put(domain.ChaptersPath("5", "math").Doc("basics"), `{"name":"Basics","order":1}`)
	put(domain.QuizzesPath("5", "math", "basics").Doc("quiz2"), `{"name":"Basics – Quiz 2","duration":15,"questions":[]}`)
	put(domain.QuizzesPath("5", "math", "basics").Doc("quiz1"), `{"name":"Basics – Quiz 1","duration":15,"totalQuestions":1,
		"questions":[{"id":"q1","question":"What is 3 + 4?","options":["2","7","9","11"],"correctIndex":1,"explanation":"Because the correct answer is 7."}]}`)

	mux := http.NewServeMux()
	NewContentHandler(app.NewContentService(store), nil).Register(mux)
	srv := httptest.NewServer(WithRequestLogging(mux, nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, strings.TrimSpace(string(body))
}

func TestListSubjectsUsesDocumentKeys(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv, "/5/subjects")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var subjects []domain.Subject
	if err := json.Unmarshal([]byte(body), &subjects); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(subjects) != 2 || subjects[0].ID != "english" || subjects[1].ID != "math" {
		t.Fatalf("unexpected subjects: %+v", subjects)
	}
}

func TestListChaptersSortedByOrder(t *testing.T) {
	srv := newTestServer(t)
	_, body := get(t, srv, "/5/math/chapters")
	var chapters []domain.Chapter
	if err := json.Unmarshal([]byte(body), &chapters); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chapters) != 2 || chapters[0].ID != "basics" || chapters[1].ID != "advanced" {
		t.Fatalf("unexpected chapter order: %+v", chapters)
	}
}

func TestListQuizzesIncludesQuestions(t *testing.T) {
	srv := newTestServer(t)
	_, body := get(t, srv, "/5/math/basics/quizzes")
	var quizzes []domain.Quiz
	if err := json.Unmarshal([]byte(body), &quizzes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].ID != "quiz1" {
		t.Fatalf("unexpected quizzes: %+v", quizzes)
	}
	if len(quizzes[0].Questions) != 1 {
		t.Fatalf("questions not embedded: %+v", quizzes[0].Questions)
	}
	if opt, ok := quizzes[0].Questions[0].CorrectOption(); !ok || opt != "7" {
		t.Fatalf("expected correct option 7, got %q (ok=%v)", opt, ok)
	}
}

func TestGetQuiz(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv, "/5/math/basics/quiz1")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(body), &quiz); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quiz.ID != "quiz1" || quiz.Duration != 15 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

func TestGetQuizNotFound(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/5/math/basics/quiz9", "/6/math/basics/quiz1", "/5/math/basics/a%2Fb"} {
		status, body := get(t, srv, path)
		if status != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, status)
		}
		if body != `{"error":"quiz not found"}` {
			t.Fatalf("%s: unexpected body %s", path, body)
		}
	}
}

func TestInvalidGrade(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/five/subjects", "/-1/math/chapters", "/5a/math/basics/quizzes", "/x/math/basics/quiz1"} {
		status, body := get(t, srv, path)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, status)
		}
		if body != `{"error":"invalid grade"}` {
			t.Fatalf("%s: unexpected body %s", path, body)
		}
	}
}

func TestEmptyListings(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/9/subjects", "/5/art/chapters", "/5/math/advanced/quizzes"} {
		status, body := get(t, srv, path)
		if status != http.StatusOK || body != "[]" {
			t.Fatalf("%s: expected 200 [], got %d %s", path, status, body)
		}
	}
}

type failingService struct{ ContentService }

func (failingService) ListSubjects(context.Context, int) ([]domain.Subject, error) {
	return nil, errors.New("store down")
}

func (failingService) Ready(context.Context) error { return errors.New("store down") }

func TestStoreFailureIsInternalError(t *testing.T) {
	mux := http.NewServeMux()
	NewContentHandler(failingService{}, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	status, body := get(t, srv, "/5/subjects")
	if status != http.StatusInternalServerError || body != `{"error":"internal server error"}` {
		t.Fatalf("expected 500, got %d %s", status, body)
	}
	if status, _ := get(t, srv, "/readyz"); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected %s header", RequestIDHeader)
	}
	if status, _ := get(t, srv, "/readyz"); status != http.StatusOK {
		t.Fatalf("expected ready, got %d", status)
	}
}
