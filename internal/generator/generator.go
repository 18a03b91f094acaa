// Package generator synthesizes sample grade content for seeding a store.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"grader-content-api/internal/content"
	"grader-content-api/internal/domain"
)

// SubjectSpec describes one generated subject.
type SubjectSpec struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// ChapterSpec describes one generated chapter of every subject.
type ChapterSpec struct {
	ID   string
	Name string
}

// Config fixes the shape of the generated tree.
type Config struct {
	Grades           []string
	Subjects         []SubjectSpec
	Chapters         []ChapterSpec
	QuizIDs          []string
	QuestionsPerQuiz int
	QuizDuration     int // minutes
}

// DefaultConfig returns the stock two-grade, three-subject tree.
func DefaultConfig() Config {
	return Config{
		Grades: []string{"5", "6"},
		Subjects: []SubjectSpec{
			{ID: "math", Name: "Mathematics", Icon: "📐", Color: "#FDE047"},
			{ID: "science", Name: "Science", Icon: "🔬", Color: "#4ADE80"},
			{ID: "english", Name: "English", Icon: "📖", Color: "#60A5FA"},
		},
		Chapters: []ChapterSpec{
			{ID: "basics", Name: "Basics"},
			{ID: "advanced", Name: "Advanced Topics"},
		},
		QuizIDs:          []string{"quiz1", "quiz2"},
		QuestionsPerQuiz: 10,
		QuizDuration:     15,
	}
}

// Generator builds content records from a Config.
type Generator struct {
	cfg Config
	rnd *rand.Rand
}

// New returns a generator. A zero seed uses the current time.
func New(cfg Config, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns the whole tree as records, parents before children.
func (g *Generator) Generate() []content.Record {
	var records []content.Record
	for _, grade := range g.cfg.Grades {
		for _, subj := range g.cfg.Subjects {
			loc := content.Location{Grade: grade, SubjectID: subj.ID}
			records = append(records, content.SubjectRecord(loc, domain.Subject{
				ID:          subj.ID,
				Grade:       domain.GradeLevel(grade),
				Name:        subj.Name,
				Description: fmt.Sprintf("%s for Grade %s", subj.Name, grade),
				Color:       subj.Color,
				Icon:        subj.Icon,
			}))

			for i, ch := range g.cfg.Chapters {
				loc := content.Location{Grade: grade, SubjectID: subj.ID, ChapterID: ch.ID}
				records = append(records, content.ChapterRecord(loc, domain.Chapter{
					ID:          ch.ID,
					Grade:       domain.GradeLevel(grade),
					SubjectID:   subj.ID,
					Name:        ch.Name,
					Description: fmt.Sprintf("%s in %s", ch.Name, subj.Name),
					Order:       i + 1,
					Locked:      false,
					Tests:       len(g.cfg.QuizIDs),
				}))
				records = append(records, content.QuizzesRecord(loc, g.quizzes(grade, subj, ch)))
			}
		}
	}
	return records
}

func (g *Generator) quizzes(grade string, subj SubjectSpec, ch ChapterSpec) []domain.Quiz {
	quizzes := make([]domain.Quiz, 0, len(g.cfg.QuizIDs))
	for i, quizID := range g.cfg.QuizIDs {
		n := i + 1
		questions := make([]domain.Question, 0, g.cfg.QuestionsPerQuiz)
		for q := 1; q <= g.cfg.QuestionsPerQuiz; q++ {
			questions = append(questions, RandomQuestion(q, g.rnd))
		}
		quizzes = append(quizzes, domain.Quiz{
			ID:             quizID,
			Grade:          domain.GradeLevel(grade),
			SubjectID:      subj.ID,
			ChapterID:      ch.ID,
			Name:           fmt.Sprintf("%s – Quiz %d", ch.Name, n),
			Description:    fmt.Sprintf("Quiz %d on %s", n, ch.Name),
			Duration:       g.cfg.QuizDuration,
			TotalQuestions: len(questions),
			Locked:         false,
			Questions:      questions,
		})
	}
	return quizzes
}
