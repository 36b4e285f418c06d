package study

import (
	"fmt"
	"strings"
)

// Category: один вид учебного материала, который можно запросить.
type Category int

const (
	Summary Category = iota
	PracticeQuestions
	Vocabulary
	Resources
)

// Categories в порядке, в котором строки попадают в промпт.
var Categories = []Category{Summary, PracticeQuestions, Vocabulary, Resources}

func (c Category) String() string {
	switch c {
	case Summary:
		return "summary"
	case PracticeQuestions:
		return "practice_questions"
	case Vocabulary:
		return "vocabulary"
	case Resources:
		return "resources"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Label: подпись переключателя для пользователя.
func (c Category) Label() string {
	switch c {
	case Summary:
		return "Summary"
	case PracticeQuestions:
		return "Practice Questions with Answers"
	case Vocabulary:
		return "Important Vocabulary"
	case Resources:
		return "Include Additional Resources (e.g., videos, articles)"
	default:
		return c.String()
	}
}

// ParseCategory принимает как имя категории, так и короткие синонимы.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summary":
		return Summary, true
	case "practice_questions", "practice", "questions":
		return PracticeQuestions, true
	case "vocabulary", "vocab":
		return Vocabulary, true
	case "resources", "additional_resources":
		return Resources, true
	}
	return 0, false
}

// Toggles: набор переключателей. Нулевое значение: всё выключено.
type Toggles struct {
	Summary           bool `json:"summary"`
	PracticeQuestions bool `json:"practice_questions"`
	Vocabulary        bool `json:"vocabulary"`
	Resources         bool `json:"resources"`
}

func (t Toggles) Enabled(c Category) bool {
	switch c {
	case Summary:
		return t.Summary
	case PracticeQuestions:
		return t.PracticeQuestions
	case Vocabulary:
		return t.Vocabulary
	case Resources:
		return t.Resources
	}
	return false
}

// With возвращает копию с изменённым переключателем.
func (t Toggles) With(c Category, on bool) Toggles {
	switch c {
	case Summary:
		t.Summary = on
	case PracticeQuestions:
		t.PracticeQuestions = on
	case Vocabulary:
		t.Vocabulary = on
	case Resources:
		t.Resources = on
	}
	return t
}

// Outcome: результат сборки промпта.
type Outcome int

const (
	NoOp Outcome = iota
	NeedsSelection
	Ready
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case NeedsSelection:
		return "needs_selection"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Prompt: тегированный результат Build. Text заполнен только для Ready.
type Prompt struct {
	Outcome Outcome
	Text    string
}

const preambleFormat = "Please provide the following information for the topic: '%s'.\n\n"

var categoryLines = map[Category]string{
	Summary:           "- A detailed summary with additional insights and notes.\n",
	PracticeQuestions: "- A set of practice questions with answers provided directly below each question.\n",
	Vocabulary:        "- A list of important vocabulary terms with definitions.\n",
	Resources:         "- Include links to relevant articles, videos, or resources for further learning.\n",
}

// Preamble: вступление промпта без строк категорий.
func Preamble(topic string) string {
	return fmt.Sprintf(preambleFormat, topic)
}

// Line: строка инструкции для категории.
func Line(c Category) string { return categoryLines[c] }

// Build собирает инструкцию для модели. Чистая функция.
// Пустая тема -> NoOp; ни одной строки категории не добавлено -> NeedsSelection.
func Build(topic string, t Toggles) Prompt {
	if topic == "" {
		return Prompt{Outcome: NoOp}
	}

	var b strings.Builder
	b.WriteString(Preamble(topic))

	appended := 0
	for _, c := range Categories {
		if !t.Enabled(c) {
			continue
		}
		b.WriteString(categoryLines[c])
		appended++
	}
	if appended == 0 {
		return Prompt{Outcome: NeedsSelection}
	}
	return Prompt{Outcome: Ready, Text: b.String()}
}
