package domain

import (
	"encoding/json"
	"testing"
)

func TestDecodeMergesDocumentKey(t *testing.T) {
	doc := Document{ID: "math", Data: json.RawMessage(`{"id":"stale","grade":"5","name":"Mathematics"}`)}
	subject, err := Decode[Subject](doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if subject.ID != "math" {
		t.Fatalf("expected id from document key, got %q", subject.ID)
	}
	if subject.Grade != "5" || subject.Name != "Mathematics" {
		t.Fatalf("unexpected subject %+v", subject)
	}
}

func TestGradeLevelAcceptsNumbers(t *testing.T) {
	var c Chapter
	if err := json.Unmarshal([]byte(`{"grade":6,"order":2}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Grade != "6" {
		t.Fatalf("expected grade 6, got %q", c.Grade)
	}
	if err := json.Unmarshal([]byte(`{"grade":true}`), &c); err == nil {
		t.Fatalf("expected error for boolean grade")
	}
}

func TestDecodeAllKeepsOrder(t *testing.T) {
	docs := []Document{
		{ID: "quiz1", Data: json.RawMessage(`{"name":"A"}`)},
		{ID: "quiz2", Data: json.RawMessage(`{"name":"B"}`)},
	}
	quizzes, err := DecodeAll[Quiz](docs)
	if err != nil {
		t.Fatalf("decode all: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].ID != "quiz1" || quizzes[1].ID != "quiz2" {
		t.Fatalf("unexpected quizzes %+v", quizzes)
	}
	if _, err := DecodeAll[Quiz]([]Document{{ID: "bad", Data: json.RawMessage(`[`)}}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCorrectOption(t *testing.T) {
	q := Question{Options: []string{"1", "2", "7", "9"}, CorrectIndex: 2}
	if opt, ok := q.CorrectOption(); !ok || opt != "7" {
		t.Fatalf("expected 7, got %q %v", opt, ok)
	}
	q.CorrectIndex = 4
	if _, ok := q.CorrectOption(); ok {
		t.Fatalf("expected out of range")
	}
}
