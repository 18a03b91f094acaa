package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Collection names of the content tree:
//
//	grades/{grade}/subjects/{subject}/chapters/{chapter}/quizzes/{quiz}
const (
	GradesCollection   = "grades"
	SubjectsCollection = "subjects"
	ChaptersCollection = "chapters"
	QuizzesCollection  = "quizzes"
)

// Path addresses a node of the hierarchical store. Segments alternate
// collection id and document id, so an odd length is a collection and an even
// length is a document.
type Path []string

// Root returns the top-level collection with the given id.
func Root(collection string) Path {
	return Path{collection}
}

// ParsePath splits a slash-separated path and validates its segments.
func ParsePath(raw string) (Path, error) {
	p := Path(strings.Split(strings.Trim(raw, "/"), "/"))
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports whether every segment is non-empty and slash-free.
func (p Path) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for i, seg := range p {
		if seg == "" || strings.Contains(seg, "/") {
			return fmt.Errorf("%w: segment %d of %q", ErrInvalidPath, i, p.String())
		}
	}
	return nil
}

// ValidateCollection is Validate plus a check that p addresses a collection.
func (p Path) ValidateCollection() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.IsCollection() {
		return fmt.Errorf("%w: %s is not a collection", ErrInvalidPath, p)
	}
	return nil
}

// ValidateDocument is Validate plus a check that p addresses a document.
func (p Path) ValidateDocument() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.IsDocument() {
		return fmt.Errorf("%w: %s is not a document", ErrInvalidPath, p)
	}
	return nil
}

func (p Path) IsCollection() bool { return len(p)%2 == 1 }

func (p Path) IsDocument() bool { return len(p) > 0 && len(p)%2 == 0 }

// Doc returns the document id under collection p.
func (p Path) Doc(id string) Path {
	return p.child(id)
}

// Collection returns the sub-collection id under document p.
func (p Path) Collection(id string) Path {
	return p.child(id)
}

func (p Path) child(id string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = id
	return out
}

// Parent returns the enclosing node, or nil for a root collection.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	n := len(p) - 1
	return p[:n:n]
}

// ID returns the last segment.
func (p Path) ID() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// GradePath is grades/{grade}. Grade is the store key, see GradeKey.
func GradePath(grade string) Path {
	return Root(GradesCollection).Doc(grade)
}

// SubjectsPath is the collection of subjects of a grade.
func SubjectsPath(grade string) Path {
	return GradePath(grade).Collection(SubjectsCollection)
}

// ChaptersPath is the collection of chapters of a subject.
func ChaptersPath(grade, subjectID string) Path {
	return SubjectsPath(grade).Doc(subjectID).Collection(ChaptersCollection)
}

// QuizzesPath is the collection of quizzes of a chapter.
func QuizzesPath(grade, subjectID, chapterID string) Path {
	return ChaptersPath(grade, subjectID).Doc(chapterID).Collection(QuizzesCollection)
}

// QuizPath addresses a single quiz document.
func QuizPath(grade, subjectID, chapterID, quizID string) Path {
	return QuizzesPath(grade, subjectID, chapterID).Doc(quizID)
}

// ParseGrade converts a grade path segment. Only decimal digits are accepted.
func ParseGrade(raw string) (int, error) {
	if raw == "" {
		return 0, ErrInvalidGrade
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, raw)
		}
	}
	grade, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, raw)
	}
	return grade, nil
}
