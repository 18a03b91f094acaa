package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"grader-content-api/internal/domain"
)

// ErrOutputExists is returned by WriteTree when the target already exists.
var ErrOutputExists = errors.New("output directory already exists")

// File names of the on-disk layout:
//
//	<grade>/<subject>/subject.json
//	<grade>/<subject>/<chapter>/chapter.json
//	<grade>/<subject>/<chapter>/quizzes.json
const (
	SubjectFile = "subject.json"
	ChapterFile = "chapter.json"
	QuizzesFile = "quizzes.json"
)

func kindFile(k Kind) (string, error) {
	switch k {
	case KindSubject:
		return SubjectFile, nil
	case KindChapter:
		return ChapterFile, nil
	case KindQuizzes:
		return QuizzesFile, nil
	default:
		return "", fmt.Errorf("unknown record kind %s", k)
	}
}

func locationDir(root string, loc Location) string {
	if loc.ChapterID == "" {
		return filepath.Join(root, loc.Grade, loc.SubjectID)
	}
	return filepath.Join(root, loc.Grade, loc.SubjectID, loc.ChapterID)
}

// WriteTree persists records under root. It refuses to touch an existing root
// and returns ErrOutputExists without writing anything.
func WriteTree(root string, records []Record) error {
	if _, err := os.Stat(root); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, root)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat output: %w", err)
	}

	for _, rec := range records {
		name, err := kindFile(rec.Kind)
		if err != nil {
			return err
		}
		payload, err := rec.Payload()
		if err != nil {
			return err
		}
		dir := locationDir(root, rec.Location)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		data, err := marshalIndent(payload)
		if err != nil {
			return fmt.Errorf("encode %s record at %s: %w", rec.Kind, rec.Location, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// marshalIndent keeps "<" and ">" literal so question text stays readable.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadTree loads every record under root in directory order: each subject,
// then for each of its chapters the chapter followed by its quizzes.
func ReadTree(root string) ([]Record, error) {
	grades, err := subdirs(root)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, grade := range grades {
		subjects, err := subdirs(filepath.Join(root, grade))
		if err != nil {
			return nil, err
		}
		for _, subjectID := range subjects {
			loc := Location{Grade: grade, SubjectID: subjectID}
			rec, err := readRecord(root, loc, KindSubject)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)

			chapters, err := subdirs(locationDir(root, loc))
			if err != nil {
				return nil, err
			}
			for _, chapterID := range chapters {
				loc := Location{Grade: grade, SubjectID: subjectID, ChapterID: chapterID}
				for _, kind := range []Kind{KindChapter, KindQuizzes} {
					rec, err := readRecord(root, loc, kind)
					if err != nil {
						return nil, err
					}
					records = append(records, rec)
				}
			}
		}
	}
	return records, nil
}

func readRecord(root string, loc Location, kind Kind) (Record, error) {
	name, err := kindFile(kind)
	if err != nil {
		return Record{}, err
	}
	path := filepath.Join(locationDir(root, loc), name)
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", path, err)
	}

	switch kind {
	case KindSubject:
		var s domain.Subject
		if err := json.Unmarshal(data, &s); err != nil {
			return Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return SubjectRecord(loc, s), nil
	case KindChapter:
		var c domain.Chapter
		if err := json.Unmarshal(data, &c); err != nil {
			return Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return ChapterRecord(loc, c), nil
	case KindQuizzes:
		var quizzes []domain.Quiz
		if err := json.Unmarshal(data, &quizzes); err != nil {
			return Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return QuizzesRecord(loc, quizzes), nil
	default:
		return Record{}, fmt.Errorf("unknown record kind %s", kind)
	}
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
