package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"grader-content-api/internal/domain"
)

// DocumentReader reads the hierarchical store. List returns the documents of
// a collection in ascending id order and an empty slice when the collection
// has no documents. Get returns domain.ErrDocumentNotFound for a missing
// document.
type DocumentReader interface {
	List(ctx context.Context, collection domain.Path) ([]domain.Document, error)
	Get(ctx context.Context, doc domain.Path) (domain.Document, error)
}

// DocumentWriter creates or replaces a document's body.
type DocumentWriter interface {
	Set(ctx context.Context, doc domain.Path, data json.RawMessage) error
}

// DocumentStore abstracts the hierarchical document store (memory, SQLite,
// Postgres, Firestore).
type DocumentStore interface {
	DocumentReader
	DocumentWriter
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ContentService resolves grade/subject/chapter/quiz requests against the store.
type ContentService struct {
	store DocumentReader
}

func NewContentService(store DocumentReader) *ContentService {
	return &ContentService{store: store}
}

// ListSubjects returns every subject under grade in id order.
func (s *ContentService) ListSubjects(ctx context.Context, grade int) ([]domain.Subject, error) {
	docs, err := s.list(ctx, domain.SubjectsPath(domain.GradeKey(grade)))
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return domain.DecodeAll[domain.Subject](docs)
}

// ListChapters returns the chapters of a subject sorted by display order.
func (s *ContentService) ListChapters(ctx context.Context, grade int, subjectID string) ([]domain.Chapter, error) {
	docs, err := s.list(ctx, domain.ChaptersPath(domain.GradeKey(grade), subjectID))
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	chapters, err := domain.DecodeAll[domain.Chapter](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	return chapters, nil
}

// ListQuizzes returns the quizzes of a chapter, questions included, sorted by name.
func (s *ContentService) ListQuizzes(ctx context.Context, grade int, subjectID, chapterID string) ([]domain.Quiz, error) {
	docs, err := s.list(ctx, domain.QuizzesPath(domain.GradeKey(grade), subjectID, chapterID))
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes, err := domain.DecodeAll[domain.Quiz](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(quizzes, func(i, j int) bool {
		return quizzes[i].Name < quizzes[j].Name
	})
	return quizzes, nil
}

// GetQuiz returns one quiz or domain.ErrQuizNotFound.
func (s *ContentService) GetQuiz(ctx context.Context, grade int, subjectID, chapterID, quizID string) (domain.Quiz, error) {
	path := domain.QuizPath(domain.GradeKey(grade), subjectID, chapterID, quizID)
	if path.Validate() != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	doc, err := s.store.Get(ctx, path)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return domain.Decode[domain.Quiz](doc)
}

// list treats a path no document can live under as an empty collection.
func (s *ContentService) list(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	if collection.Validate() != nil {
		return []domain.Document{}, nil
	}
	return s.store.List(ctx, collection)
}

// Ready pings the store when it supports it.
func (s *ContentService) Ready(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
