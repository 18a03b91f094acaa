package generator

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"grader-content-api/internal/domain"
)

const (
	operandMin    = 1
	operandMax    = 9
	distractorMin = 1
	distractorMax = 20
	optionCount   = 4
)

// ComparisonOptions are the fixed choices of yes/no templates.
var ComparisonOptions = []string{"Yes", "No", "Maybe", "Not sure"}

// Answer is a template result: an integer for arithmetic templates, text for
// comparison templates.
type Answer struct {
	Numeric bool
	Value   int
	Text    string
}

func (a Answer) String() string {
	if a.Numeric {
		return strconv.Itoa(a.Value)
	}
	return a.Text
}

// Template renders a question from two operands and computes its answer.
type Template struct {
	Name   string
	Format string
	Solve  func(a, b int) Answer
}

// Render fills the template text with the operands.
func (t Template) Render(a, b int) string {
	return fmt.Sprintf(t.Format, a, b)
}

// Templates available to the generator, picked uniformly.
var Templates = []Template{
	{
		Name:   "addition",
		Format: "What is %d + %d?",
		Solve:  func(a, b int) Answer { return Answer{Numeric: true, Value: a + b} },
	},
	{
		Name:   "multiplication",
		Format: "What is %d × %d?",
		Solve:  func(a, b int) Answer { return Answer{Numeric: true, Value: a * b} },
	},
	{
		Name:   "comparison",
		Format: "Is %d > %d?",
		Solve: func(a, b int) Answer {
			if a > b {
				return Answer{Text: "Yes"}
			}
			return Answer{Text: "No"}
		},
	},
}

// TemplateByName returns the named template.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// BuildQuestion assembles question q{id} from a template and fixed operands.
// rnd only draws distractors for arithmetic answers; a nil rnd uses a
// time-seeded source.
func BuildQuestion(id int, tmpl Template, a, b int, rnd *rand.Rand) domain.Question {
	answer := tmpl.Solve(a, b)

	var options []string
	if answer.Numeric {
		if rnd == nil {
			rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		options = fourOptions(answer.Value, rnd)
	} else {
		options = slices.Clone(ComparisonOptions)
	}
	correct := slices.Index(options, answer.String())

	return domain.Question{
		ID:           fmt.Sprintf("q%d", id),
		Question:     tmpl.Render(a, b),
		Options:      options,
		CorrectIndex: correct,
		Explanation:  fmt.Sprintf("Because the correct answer is %s.", answer),
	}
}

// fourOptions returns the correct value plus distinct distractors, sorted
// ascending so the correct index is reproducible for a given rnd.
func fourOptions(correct int, rnd *rand.Rand) []string {
	values := []int{correct}
	for len(values) < optionCount {
		v := distractorMin + rnd.Intn(distractorMax-distractorMin+1)
		if !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	slices.Sort(values)

	options := make([]string, len(values))
	for i, v := range values {
		options[i] = strconv.Itoa(v)
	}
	return options
}

// RandomQuestion draws operands and a template from rnd.
func RandomQuestion(id int, rnd *rand.Rand) domain.Question {
	a := operandMin + rnd.Intn(operandMax-operandMin+1)
	b := operandMin + rnd.Intn(operandMax-operandMin+1)
	tmpl := Templates[rnd.Intn(len(Templates))]
	return BuildQuestion(id, tmpl, a, b, rnd)
}
