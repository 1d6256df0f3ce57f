package examgen

import (
	"context"
	"errors"
	"strings"

	"github.com/examforge/examforge/internal/llm"
)

// CompletionClient sends one prompt to the completion service and returns
// its raw text. It never retries; retry policy belongs to the provider
// stack and is off by default.
type CompletionClient struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewCompletionClient wraps provider.
func NewCompletionClient(provider llm.Provider, maxTokens int, temperature float64) *CompletionClient {
	return &CompletionClient{provider: provider, maxTokens: maxTokens, temperature: temperature}
}

// Complete performs a single request/response cycle.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, nil)
}

// CompleteStructured is Complete with a response schema attached. The
// schema constrains the model only; the text is checked by
// ParseAndValidate so type violations keep their diagnostics.
func (c *CompletionClient) CompleteStructured(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	return c.complete(ctx, prompt, schema)
}

func (c *CompletionClient) complete(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExamGeneration)

	// ResponseSchema's type enum would turn an off-set type into a schema
	// mismatch, so the provider only forwards the schema.
	resp, err := c.provider.Complete(ctx, llm.Request{
		System:         systemPrompt,
		Prompt:         prompt,
		Schema:         schema,
		SkipValidation: schema != nil,
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
	})
	if err != nil {
		return "", mapCompletionError(err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", &ErrEmptyCompletion{}
	}
	return resp.Text, nil
}

// mapCompletionError translates provider errors into the pipeline taxonomy.
func mapCompletionError(err error) error {
	var (
		upstream *llm.ErrUpstream
		empty    *llm.ErrNoContent
		mismatch *llm.ErrSchemaMismatch
		cut      *llm.ErrTruncated
	)
	switch {
	case errors.As(err, &empty):
		return &ErrEmptyCompletion{}
	case errors.As(err, &upstream):
		return &ErrUpstreamUnavailable{StatusCode: upstream.StatusCode, Body: upstream.Body, Err: err}
	case errors.As(err, &mismatch):
		return &ErrMalformedResponse{Reason: "structured output rejected", Content: truncateContent([]byte(mismatch.Content)), Err: err}
	case errors.As(err, &cut):
		return &ErrMalformedResponse{Reason: "completion truncated at the token limit", Content: truncateContent([]byte(cut.Content))}
	default:
		return &ErrUpstreamUnavailable{Err: err}
	}
}
