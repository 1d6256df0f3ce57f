package activity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an activity does not exist or belongs to
// another owner.
var ErrNotFound = errors.New("activity not found")

// ErrInvalid indicates an activity or edit was rejected. Fields names the
// offending fields.
type ErrInvalid struct {
	Fields []string
}

func (e *ErrInvalid) Error() string {
	return fmt.Sprintf("invalid activity: %s", strings.Join(e.Fields, ", "))
}

// ErrQuestionNotFound indicates an edit referenced an unknown question id.
type ErrQuestionNotFound struct {
	QuestionID string
}

func (e *ErrQuestionNotFound) Error() string {
	return fmt.Sprintf("question %s not found", e.QuestionID)
}

// ErrVersionNotFound indicates an edit referenced an unknown version label.
type ErrVersionNotFound struct {
	Label string
}

func (e *ErrVersionNotFound) Error() string {
	return fmt.Sprintf("version %q not found", e.Label)
}

// ErrIndexOutOfRange indicates a move target outside the question list.
type ErrIndexOutOfRange struct {
	Index int
	Len   int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("position %d out of range [0, %d)", e.Index, e.Len)
}
