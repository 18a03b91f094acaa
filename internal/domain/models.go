package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GradeLevel is the grade label stored inside documents. Generated content
// writes it as a string; hand-written data sometimes uses a JSON number.
type GradeLevel string

func (g *GradeLevel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GradeLevel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("grade: %w", err)
	}
	*g = GradeLevel(n.String())
	return nil
}

// GradeKey is the store key of an integer grade.
func GradeKey(grade int) string {
	return strconv.Itoa(grade)
}

// Subject is a named area of study within a grade.
type Subject struct {
	ID          string     `json:"id"`
	Grade       GradeLevel `json:"grade"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
}

func (s *Subject) SetID(id string) { s.ID = id }

// Chapter is a unit of content within a subject. Order is the display sequence.
type Chapter struct {
	ID          string     `json:"id"`
	Grade       GradeLevel `json:"grade"`
	SubjectID   string     `json:"subjectId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
	Locked      bool       `json:"locked"`
	Tests       int        `json:"tests"`
}

func (c *Chapter) SetID(id string) { c.ID = id }

// Quiz is a set of questions under a chapter. Questions are embedded.
type Quiz struct {
	ID             string     `json:"id"`
	Grade          GradeLevel `json:"grade"`
	SubjectID      string     `json:"subjectId"`
	ChapterID      string     `json:"chapterId"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Duration       int        `json:"duration"`
	TotalQuestions int        `json:"totalQuestions"`
	Locked         bool       `json:"locked"`
	Questions      []Question `json:"questions"`
}

func (q *Quiz) SetID(id string) { q.ID = id }

// Question models a multiple-choice item with exactly one correct option.
type Question struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// CorrectOption returns the option at CorrectIndex, or false when the index
// is out of range.
func (q Question) CorrectOption() (string, bool) {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return "", false
	}
	return q.Options[q.CorrectIndex], true
}

// Document is a raw store document: its key and JSON body.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Identified is implemented by entity pointers that take their id from the
// store key.
type Identified[T any] interface {
	*T
	SetID(id string)
}

// Decode unmarshals a document body into T and overwrites its id with the
// document key.
func Decode[T any, P Identified[T]](doc Document) (T, error) {
	var v T
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			return v, fmt.Errorf("decode document %q: %w", doc.ID, err)
		}
	}
	P(&v).SetID(doc.ID)
	return v, nil
}

// DecodeAll decodes every document in order.
func DecodeAll[T any, P Identified[T]](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T, P](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
