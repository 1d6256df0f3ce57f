package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider completes prompts with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider for cfg.Model, taken as a model ID.
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.maxTokens())}
	if req.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}}
	}
	if req.Schema != nil {
		// Gemini takes JSON Schema as is through responseJsonSchema.
		gc.ResponseMIMEType = "application/json"
		gc.ResponseJsonSchema = req.Schema.Definition
	}

	res, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, geminiError(err)
	}

	c := &Completion{Text: res.Text(), Model: p.model}
	if res.ModelVersion != "" {
		c.Model = res.ModelVersion
	}
	if u := res.UsageMetadata; u != nil {
		c.Usage = Usage{InputTokens: int(u.PromptTokenCount), OutputTokens: int(u.CandidatesTokenCount)}
	}
	if len(res.Candidates) > 0 {
		c.Truncated = res.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	return finish(req, c)
}

func (p *GeminiProvider) Model() string { return p.model }

func geminiError(err error) error {
	up := &ErrUpstream{Provider: BackendGemini, Err: err}
	// genai returns APIError by value; older releases used a pointer.
	var (
		apiErr genai.APIError
		ptr    *genai.APIError
	)
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &ptr):
		apiErr = *ptr
	default:
		return up
	}
	up.StatusCode = apiErr.Code
	up.Body = strings.TrimSpace(apiErr.Message)
	return up
}
