package examgen

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// QuestionType is the kind of a generated question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multipleChoice"
	TypeFillBlanks     QuestionType = "fillBlanks"
	TypeTrueFalse      QuestionType = "trueFalse"
	TypeOpenQuestions  QuestionType = "openQuestions"
)

// AllTypes lists every question type in canonical order.
var AllTypes = []QuestionType{TypeMultipleChoice, TypeFillBlanks, TypeTrueFalse, TypeOpenQuestions}

// Valid reports whether t is one of the four known types.
func (t QuestionType) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// TypeSet is a set of question types.
type TypeSet map[QuestionType]bool

// NewTypeSet builds a set from the given types.
func NewTypeSet(types ...QuestionType) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

// Has reports whether t is in the set.
func (s TypeSet) Has(t QuestionType) bool {
	return s[t]
}

// List returns the members in canonical order, unknown types last and sorted.
func (s TypeSet) List() []QuestionType {
	out := lo.Filter(AllTypes, func(t QuestionType, _ int) bool { return s[t] })
	var extra []QuestionType
	for t, ok := range s {
		if ok && !t.Valid() {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Len returns the number of members.
func (s TypeSet) Len() int {
	return len(s.List())
}

func (s TypeSet) String() string {
	return strings.Join(lo.Map(s.List(), func(t QuestionType, _ int) string { return string(t) }), ", ")
}

// Question is one generated item. Options is set only for multipleChoice.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	q.Options = slices.Clone(q.Options)
	return q
}

// QuestionSet is an ordered list of questions.
type QuestionSet []Question

// Clone returns a deep copy of s.
func (s QuestionSet) Clone() QuestionSet {
	if s == nil {
		return nil
	}
	return lo.Map(s, func(q Question, _ int) Question { return q.Clone() })
}

// IDs returns the question ids in order.
func (s QuestionSet) IDs() []string {
	return lo.Map(s, func(q Question, _ int) string { return q.ID })
}

// Index returns the position of the question with the given id, or -1.
func (s QuestionSet) Index(id string) int {
	return slices.IndexFunc(s, func(q Question) bool { return q.ID == id })
}

// SourceMaterial is optional reference text the questions should be based on.
type SourceMaterial struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// GenerationConfig is the input to the generation pipeline.
type GenerationConfig struct {
	Title            string          `json:"title"`
	Language         string          `json:"language"`
	Difficulty       string          `json:"difficulty"`
	Topics           string          `json:"topics"`
	QuestionCount    int             `json:"questionsCount"`
	Types            TypeSet         `json:"questionTypes"`
	SourceMaterial   *SourceMaterial `json:"sourceMaterial,omitempty"`
	GroupName        *string         `json:"groupName,omitempty"`
	MultipleVersions bool            `json:"generateMultipleVersions"`
	VersionsCount    int             `json:"versionsCount"`
	AnswerKey        bool            `json:"generateAnswerKey"`
}

// AnswerKeyEntry is the expected answer for the question at a 1-based position.
type AnswerKeyEntry struct {
	Question int    `json:"question"`
	Answer   string `json:"answer"`
}

// Version is one shuffled presentation of a question set.
type Version struct {
	Label     string           `json:"label"`
	Questions QuestionSet      `json:"questions"`
	AnswerKey []AnswerKeyEntry `json:"answerKey,omitempty"`
}

// Name is the display name of the version, e.g. "Version A".
func (v Version) Name() string {
	return "Version " + v.Label
}
