package llm

import (
	"context"
	"strings"
)

// Provider is a single-turn completion backend. Exam generation treats it
// as an untrusted text source: whatever comes back is parsed and validated
// by the caller.
type Provider interface {
	// Complete sends one prompt and returns the model's text. When
	// req.Schema is set the backend asks for native structured output and
	// the text is checked against the schema before it is returned.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// Model returns the model identifier requests are sent to.
	Model() string
}

// Request is one prompt/response cycle.
type Request struct {
	System string
	Prompt string

	// Schema, when set, requests JSON conforming to it.
	Schema *Schema

	// SkipValidation sends Schema to the backend but leaves checking the
	// returned text to the caller.
	SkipValidation bool

	// MaxTokens caps the completion length. Zero means defaultMaxTokens.
	MaxTokens int

	// Temperature of zero leaves the backend default in place.
	Temperature float64
}

const defaultMaxTokens = 4096

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// Schema describes the JSON document expected from the model.
type Schema struct {
	// Name identifies the schema (e.g. "exam-question-set-trueFalse") and
	// keys the compiled-validator cache, so equal names must mean equal
	// definitions.
	Name        string
	Description string
	Definition  map[string]any
}

// Completion is the model output for one Request.
type Completion struct {
	Text  string
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// Truncated is set when generation stopped at the token limit.
	Truncated bool
}

// Usage counts tokens for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// finish applies the checks shared by every backend once the text has been
// extracted from the vendor response.
func finish(req Request, c *Completion) (*Completion, error) {
	if strings.TrimSpace(c.Text) == "" {
		return nil, &ErrNoContent{Model: c.Model}
	}
	if c.Truncated {
		return nil, &ErrTruncated{Content: c.Text}
	}
	if req.Schema != nil && !req.SkipValidation {
		if err := Validate(req.Schema, []byte(c.Text)); err != nil {
			return nil, err
		}
	}
	return c, nil
}
