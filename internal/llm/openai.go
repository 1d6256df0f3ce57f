package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider completes prompts with the Chat Completions API. It serves
// OpenAI itself and compatible gateways such as OpenRouter.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	backend string
}

// NewOpenAIProvider creates a provider for the OpenAI API, or for any
// compatible endpoint given in cfg.BaseURL.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	return newChatProvider(BackendOpenAI, cfg, nil)
}

// NewOpenRouterProvider creates a provider for OpenRouter. Model IDs carry
// the vendor prefix, e.g. "anthropic/claude-sonnet-4-5".
func NewOpenRouterProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	// OpenRouter attributes traffic by this header.
	return newChatProvider(BackendOpenRouter, cfg, http.Header{"X-Title": {"examforge"}})
}

func newChatProvider(backend string, cfg Config, extra http.Header) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", backend)
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	if len(extra) > 0 {
		cc.HTTPClient = headerDoer{next: cc.HTTPClient, header: extra}
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cc), model: cfg.Model, backend: backend}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.maxTokens(),
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("encode schema %q: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, p.mapError(err)
	}

	c := &Completion{
		Model: resp.Model,
		Usage: Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	}
	if len(resp.Choices) > 0 {
		c.Text = resp.Choices[0].Message.Content
		c.Truncated = resp.Choices[0].FinishReason == openai.FinishReasonLength
	}
	if c.Model == "" {
		c.Model = p.model
	}
	return finish(req, c)
}

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) mapError(err error) error {
	up := &ErrUpstream{Provider: p.backend, Err: err}
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
	)
	switch {
	case errors.As(err, &apiErr):
		up.StatusCode = apiErr.HTTPStatusCode
		up.Body = apiErr.Message
	case errors.As(err, &reqErr):
		up.StatusCode = reqErr.HTTPStatusCode
		up.Body = string(reqErr.Body)
	}
	return up
}

// headerDoer adds fixed headers to every request.
type headerDoer struct {
	next   openai.HTTPDoer
	header http.Header
}

func (d headerDoer) Do(r *http.Request) (*http.Response, error) {
	for k, vs := range d.header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	return d.next.Do(r)
}
