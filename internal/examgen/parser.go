package examgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/examforge/examforge/internal/llm"
)

// ParseResult is a validated question set plus any non-fatal findings.
type ParseResult struct {
	Questions QuestionSet
	Warnings  []string
}

// ParseOption customizes ParseAndValidate.
type ParseOption func(*parseOptions)

type parseOptions struct {
	strictCount bool
	validators  []Validator
}

// WithStrictCount makes a count mismatch fail with ErrCountMismatch.
func WithStrictCount(strict bool) ParseOption {
	return func(o *parseOptions) { o.strictCount = strict }
}

// WithValidators replaces the default validator chain.
func WithValidators(vs ...Validator) ParseOption {
	return func(o *parseOptions) { o.validators = vs }
}

// rawQuestion is a decoded question before the tagged-union step.
type rawQuestion struct {
	ID            json.RawMessage   `json:"id"`
	Type          QuestionType      `json:"type"`
	Question      string            `json:"question"`
	Options       []json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage   `json:"correctAnswer"`
}

type rawPayload struct {
	Questions []rawQuestion `json:"questions"`
}

// ParseAndValidate turns completion text into a validated QuestionSet.
// It never mutates raw and returns questions in decoded order.
func ParseAndValidate(raw string, types TypeSet, count int, opts ...ParseOption) (*ParseResult, error) {
	o := parseOptions{validators: DefaultValidators()}
	for _, opt := range opts {
		opt(&o)
	}

	body := extractJSON(raw)
	if len(body) == 0 {
		return nil, &ErrMalformedResponse{Reason: "no JSON object found", Content: truncateContent([]byte(raw))}
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, &ErrMalformedResponse{Reason: "invalid JSON", Content: truncateContent(body), Err: err}
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, &ErrMalformedResponse{Reason: "top-level value is not an object", Content: truncateContent(body)}
	}
	if err := llm.Validate(payloadSchema, body); err != nil {
		return nil, &ErrMalformedResponse{Reason: "unexpected payload shape", Content: truncateContent(body), Err: err}
	}

	var payload rawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ErrMalformedResponse{Reason: "decode questions", Content: truncateContent(body), Err: err}
	}

	if err := checkTypes(payload.Questions, types); err != nil {
		return nil, err
	}

	questions := make(QuestionSet, 0, len(payload.Questions))
	for i, rq := range payload.Questions {
		q, err := decodeQuestion(rq)
		if err != nil {
			return nil, &ErrMalformedResponse{Reason: fmt.Sprintf("question %d", i+1), Content: truncateContent(body), Err: err}
		}
		for _, v := range o.validators {
			if verr := v.Validate(&q); verr != nil {
				return nil, &ErrMalformedResponse{Reason: fmt.Sprintf("question %d", i+1), Content: truncateContent(body), Err: verr}
			}
		}
		questions = append(questions, q)
	}
	assignIDs(questions)

	res := &ParseResult{Questions: questions}
	if len(questions) != count {
		if o.strictCount {
			return nil, &ErrCountMismatch{Requested: count, Got: len(questions)}
		}
		msg := fmt.Sprintf("requested %d questions, received %d", count, len(questions))
		slog.Warn("question count mismatch", "requested", count, "received", len(questions))
		res.Warnings = append(res.Warnings, msg)
	}
	return res, nil
}

// extractJSON strips Markdown code fences and surrounding prose, returning
// the outermost JSON object text.
func extractJSON(raw string) []byte {
	s := strings.TrimSpace(raw)

	if start := strings.Index(s, "```"); start >= 0 {
		inner := s[start+3:]
		// Drop the info string ("json", "JSON", ...) up to the first newline.
		if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], "{[") {
			inner = inner[nl+1:]
		}
		if end := strings.Index(inner, "```"); end >= 0 {
			inner = inner[:end]
		}
		s = strings.TrimSpace(inner)
	}

	open := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if open < 0 || end < open {
		return []byte(strings.TrimSpace(s))
	}
	return bytes.TrimSpace([]byte(s[open : end+1]))
}

func checkTypes(qs []rawQuestion, allowed TypeSet) error {
	var offending []QuestionType
	for _, q := range qs {
		if !allowed.Has(q.Type) && !slices.Contains(offending, q.Type) {
			offending = append(offending, q.Type)
		}
	}
	if len(offending) == 0 {
		return nil
	}
	slices.Sort(offending)
	return &ErrTypeViolation{Offending: offending, Allowed: allowed.List()}
}

// decodeQuestion dispatches on the type tag.
func decodeQuestion(rq rawQuestion) (Question, error) {
	q := Question{
		ID:   scalarString(rq.ID),
		Type: rq.Type,
		Text: strings.TrimSpace(rq.Question),
	}
	switch rq.Type {
	case TypeMultipleChoice:
		q.Options = make([]string, len(rq.Options))
		for i, o := range rq.Options {
			q.Options[i] = strings.TrimSpace(scalarString(o))
		}
		q.CorrectAnswer = strings.TrimSpace(scalarString(rq.CorrectAnswer))
	case TypeTrueFalse:
		q.CorrectAnswer = normalizeTrueFalse(scalarString(rq.CorrectAnswer))
	case TypeFillBlanks, TypeOpenQuestions:
		q.CorrectAnswer = strings.TrimSpace(scalarString(rq.CorrectAnswer))
	default:
		return Question{}, fmt.Errorf("unknown question type %q", rq.Type)
	}
	return q, nil
}

// scalarString renders a JSON string, number or boolean as text. Null and
// absent values become "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}

// normalizeTrueFalse maps the accepted spellings to "true"/"false" and
// leaves anything else untouched for the answer key to reject.
func normalizeTrueFalse(s string) string {
	if b, ok := parseTruth(s); ok {
		return strconv.FormatBool(b)
	}
	return strings.TrimSpace(s)
}

func parseTruth(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "verdadeiro", "v", "t":
		return true, true
	case "false", "falso", "f":
		return false, true
	}
	return false, false
}

// assignIDs fills missing ids and re-issues duplicates.
func assignIDs(qs QuestionSet) {
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		if qs[i].ID == "" || seen[qs[i].ID] {
			qs[i].ID = uuid.NewString()
		}
		seen[qs[i].ID] = true
	}
}
