package examgen

import (
	"fmt"
	"strings"
)

// ErrConfigInvalid indicates the generation config was rejected before any
// upstream call. Fields names the offending request fields.
type ErrConfigInvalid struct {
	Fields []string
}

func (e *ErrConfigInvalid) Error() string {
	return fmt.Sprintf("invalid generation config: %s", strings.Join(e.Fields, ", "))
}

// ErrUpstreamUnavailable indicates the completion service could not be
// reached or answered with a non-success status. Body is diagnostic only.
type ErrUpstreamUnavailable struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ErrUpstreamUnavailable) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion service unavailable (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("completion service unavailable: %v", e.Err)
	}
	return "completion service unavailable"
}

func (e *ErrUpstreamUnavailable) Unwrap() error { return e.Err }

// ErrEmptyCompletion indicates the completion call succeeded without text.
type ErrEmptyCompletion struct{}

func (e *ErrEmptyCompletion) Error() string {
	return "completion service returned no content"
}

// ErrMalformedResponse indicates the completion text could not be decoded
// into a question set.
type ErrMalformedResponse struct {
	Reason  string
	Content string
	Err     error
}

func (e *ErrMalformedResponse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed completion: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed completion: %s", e.Reason)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// ErrTypeViolation indicates the completion contains question types that
// were not requested. The whole attempt fails.
type ErrTypeViolation struct {
	Offending []QuestionType
	Allowed   []QuestionType
}

func (e *ErrTypeViolation) Error() string {
	return fmt.Sprintf("completion returned question types %s, allowed: %s",
		joinTypes(e.Offending), joinTypes(e.Allowed))
}

// ErrAnswerNotFound indicates a correct answer that cannot be located, such
// as a multipleChoice answer missing from its options.
type ErrAnswerNotFound struct {
	QuestionID string
	Answer     string
}

func (e *ErrAnswerNotFound) Error() string {
	return fmt.Sprintf("question %s: correct answer %q not found", e.QuestionID, e.Answer)
}

// ErrCountMismatch indicates the completion returned a different number of
// questions than requested. Only raised in strict count mode.
type ErrCountMismatch struct {
	Requested int
	Got       int
}

func (e *ErrCountMismatch) Error() string {
	return fmt.Sprintf("requested %d questions, completion returned %d", e.Requested, e.Got)
}

func joinTypes(ts []QuestionType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// truncateContent keeps diagnostics bounded when echoing upstream text.
func truncateContent(raw []byte) string {
	const limit = 2048
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "…"
}
