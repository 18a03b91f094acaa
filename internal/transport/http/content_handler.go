package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"grader-content-api/internal/domain"
)

// ContentService is the read side the handler serves.
type ContentService interface {
	ListSubjects(ctx context.Context, grade int) ([]domain.Subject, error)
	ListChapters(ctx context.Context, grade int, subjectID string) ([]domain.Chapter, error)
	ListQuizzes(ctx context.Context, grade int, subjectID, chapterID string) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, grade int, subjectID, chapterID, quizID string) (domain.Quiz, error)
	Ready(ctx context.Context) error
}

type ContentHandler struct {
	service ContentService
	logger  *slog.Logger
}

func NewContentHandler(service ContentService, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{service: service, logger: logger}
}

type errorPayload struct {
	Error string `json:"error"`
}

// Register mounts the content routes and health checks on mux.
func (h *ContentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", h.ready)
	mux.HandleFunc("GET /{grade}/subjects", h.listSubjects)
	mux.HandleFunc("GET /{grade}/{subjectId}/chapters", h.listChapters)
	mux.HandleFunc("GET /{grade}/{subjectId}/{chapterId}/quizzes", h.listQuizzes)
	mux.HandleFunc("GET /{grade}/{subjectId}/{chapterId}/{quizId}", h.getQuiz)
}

func (h *ContentHandler) listSubjects(w http.ResponseWriter, r *http.Request) {
	grade, ok := h.grade(w, r)
	if !ok {
		return
	}
	subjects, err := h.service.ListSubjects(r.Context(), grade)
	h.respond(w, r, subjects, err)
}

func (h *ContentHandler) listChapters(w http.ResponseWriter, r *http.Request) {
	grade, ok := h.grade(w, r)
	if !ok {
		return
	}
	chapters, err := h.service.ListChapters(r.Context(), grade, r.PathValue("subjectId"))
	h.respond(w, r, chapters, err)
}

func (h *ContentHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	grade, ok := h.grade(w, r)
	if !ok {
		return
	}
	quizzes, err := h.service.ListQuizzes(r.Context(), grade, r.PathValue("subjectId"), r.PathValue("chapterId"))
	h.respond(w, r, quizzes, err)
}

func (h *ContentHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	grade, ok := h.grade(w, r)
	if !ok {
		return
	}
	quiz, err := h.service.GetQuiz(r.Context(), grade,
		r.PathValue("subjectId"), r.PathValue("chapterId"), r.PathValue("quizId"))
	h.respond(w, r, quiz, err)
}

func (h *ContentHandler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Warn("store not ready", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *ContentHandler) grade(w http.ResponseWriter, r *http.Request) (int, bool) {
	grade, err := domain.ParseGrade(r.PathValue("grade"))
	if err != nil {
		h.writeError(w, r, err)
		return 0, false
	}
	return grade, true
}

func (h *ContentHandler) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *ContentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: domain.ErrQuizNotFound.Error()})
	case errors.Is(err, domain.ErrInvalidGrade):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: domain.ErrInvalidGrade.Error()})
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
