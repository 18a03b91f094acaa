// Package content holds the offline content pipeline's tagged records and the
// directory layout they are persisted in.
package content

import (
	"fmt"

	"grader-content-api/internal/domain"
)

// Kind tags the payload carried by a Record.
type Kind int

const (
	KindSubject Kind = iota + 1
	KindChapter
	KindQuizzes
)

func (k Kind) String() string {
	switch k {
	case KindSubject:
		return "subject"
	case KindChapter:
		return "chapter"
	case KindQuizzes:
		return "quizzes"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Location is where a record sits in the tree. ChapterID is empty for
// subject records.
type Location struct {
	Grade     string
	SubjectID string
	ChapterID string
}

// Record is one unit of generated content. Exactly one payload field is set,
// selected by Kind.
type Record struct {
	Kind     Kind
	Location Location
	Subject  *domain.Subject
	Chapter  *domain.Chapter
	Quizzes  []domain.Quiz
}

func SubjectRecord(loc Location, s domain.Subject) Record {
	return Record{Kind: KindSubject, Location: loc, Subject: &s}
}

func ChapterRecord(loc Location, c domain.Chapter) Record {
	return Record{Kind: KindChapter, Location: loc, Chapter: &c}
}

func QuizzesRecord(loc Location, quizzes []domain.Quiz) Record {
	return Record{Kind: KindQuizzes, Location: loc, Quizzes: quizzes}
}

// Payload returns the value that is persisted for the record.
func (r Record) Payload() (any, error) {
	switch r.Kind {
	case KindSubject:
		if r.Subject == nil {
			return nil, fmt.Errorf("%s record at %s has no payload", r.Kind, r.Location)
		}
		return r.Subject, nil
	case KindChapter:
		if r.Chapter == nil {
			return nil, fmt.Errorf("%s record at %s has no payload", r.Kind, r.Location)
		}
		return r.Chapter, nil
	case KindQuizzes:
		if r.Quizzes == nil {
			return []domain.Quiz{}, nil
		}
		return r.Quizzes, nil
	default:
		return nil, fmt.Errorf("unknown record kind %s", r.Kind)
	}
}

func (l Location) String() string {
	if l.ChapterID == "" {
		return l.Grade + "/" + l.SubjectID
	}
	return l.Grade + "/" + l.SubjectID + "/" + l.ChapterID
}
