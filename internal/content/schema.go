package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator checks record payloads against the embedded JSON schemas.
// It is safe for concurrent use.
type Validator struct {
	subject *jsonschema.Schema
	chapter *jsonschema.Schema
	quiz    *jsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", name, err)
		}
		url := fmt.Sprintf("schema://content/%s.json", name)
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		return compiled, nil
	}

	v := &Validator{}
	var err error
	if v.subject, err = compile("subject"); err != nil {
		return nil, err
	}
	if v.chapter, err = compile("chapter"); err != nil {
		return nil, err
	}
	if v.quiz, err = compile("quiz"); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the record's payload. Each quiz of a quizzes record is
// validated on its own so the error names the offending quiz.
func (v *Validator) Validate(rec Record) error {
	switch rec.Kind {
	case KindSubject:
		if rec.Subject == nil {
			return fmt.Errorf("subject record at %s has no payload", rec.Location)
		}
		return v.check(v.subject, rec.Subject, "subject "+rec.Subject.ID)
	case KindChapter:
		if rec.Chapter == nil {
			return fmt.Errorf("chapter record at %s has no payload", rec.Location)
		}
		return v.check(v.chapter, rec.Chapter, "chapter "+rec.Chapter.ID)
	case KindQuizzes:
		for i := range rec.Quizzes {
			if err := v.check(v.quiz, &rec.Quizzes[i], "quiz "+rec.Quizzes[i].ID); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown record kind %s", rec.Kind)
	}
}

func (v *Validator) check(schema *jsonschema.Schema, payload any, what string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", what, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", what, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid %s: %w", what, err)
	}
	return nil
}
