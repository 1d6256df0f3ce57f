package examgen

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Validator checks a parsed question. Implementations are stateless and
// safe for concurrent use.
type Validator interface {
	// Name is a short identifier used in error messages and logs.
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the standard validator chain.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&ChoiceValidator{},
		&TrueFalseValidator{},
		&BlankValidator{},
	}
}

// StructuralValidator checks that the question text is present and bounded.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question text is empty"}
	}
	if utf8.RuneCountInString(q.Text) > 4000 {
		return &ValidationError{Validator: v.Name(), Message: "question text exceeds 4000 characters"}
	}
	return nil
}

// ChoiceValidator checks multipleChoice options and that the correct
// answer is one of them.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeMultipleChoice {
		return nil
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return &ValidationError{Validator: v.Name(), Message: "options contain an empty entry"}
		}
		if seen[o] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", o)}
		}
		seen[o] = true
	}
	if len(q.Options) < 2 {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("needs at least 2 options, got %d", len(q.Options))}
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct answer %q is not one of the options", q.CorrectAnswer)}
	}
	return nil
}

// TrueFalseValidator checks that a trueFalse answer is one of the
// accepted spellings of true or false.
type TrueFalseValidator struct{}

func (v *TrueFalseValidator) Name() string { return "true-false" }

func (v *TrueFalseValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeTrueFalse {
		return nil
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "trueFalse question has no correct answer"}
	}
	if _, ok := parseTruth(q.CorrectAnswer); !ok {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct answer %q is neither true nor false", q.CorrectAnswer)}
	}
	return nil
}

// blankMarker matches the ways models write a blank: runs of underscores,
// ellipses, or empty brackets.
var blankMarker = regexp.MustCompile(`_{3,}|\.{3}|…|\[\s*\]|\(\s*\)`)

// BlankValidator checks that fillBlanks questions contain a blank.
type BlankValidator struct{}

func (v *BlankValidator) Name() string { return "blank" }

func (v *BlankValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeFillBlanks {
		return nil
	}
	if !blankMarker.MatchString(q.Text) {
		return &ValidationError{Validator: v.Name(), Message: "fillBlanks question has no blank marker"}
	}
	return nil
}
