package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCapture struct {
	body   map[string]any
	header http.Header
}

func chatServer(t *testing.T, status int, payload map[string]any) (string, *chatCapture) {
	t.Helper()
	got := &chatCapture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.header = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&got.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1", got
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_ReturnsRawText(t *testing.T) {
	url, got := chatServer(t, http.StatusOK, chatCompletion("```json\n{}\n```", "stop"))
	p, err := NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
	require.NoError(t, err)

	c, err := p.Complete(context.Background(), Request{System: "You write exams.", Prompt: "Generate.", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", c.Text)
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25}, c.Usage)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", c.Model)

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Generate.", msgs[1].(map[string]any)["content"])
	assert.Nil(t, got.body["response_format"])
	assert.Empty(t, got.header.Get("X-Title"))
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	url, got := chatServer(t, http.StatusOK, chatCompletion(`{"n":1}`, "stop"))
	p, err := NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o", BaseURL: url})
	require.NoError(t, err)

	schema := &Schema{Name: "test-openai-n", Definition: map[string]any{
		"type": "object", "properties": map[string]any{"n": map[string]any{"type": "integer"}},
		"required": []any{"n"}, "additionalProperties": false,
	}}
	c, err := p.Complete(context.Background(), Request{Prompt: "x", Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, c.Text)

	rf := got.body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", rf["type"])
	js := rf["json_schema"].(map[string]any)
	assert.Equal(t, "test-openai-n", js["name"])
	assert.Equal(t, true, js["strict"])
}

func TestOpenAIProvider_Rejections(t *testing.T) {
	schema := &Schema{Name: "test-openai-obj", Definition: map[string]any{"type": "object"}}
	tests := []struct {
		name    string
		content string
		finish  string
		schema  *Schema
		check   func(t *testing.T, err error)
	}{
		{"empty", "", "stop", nil, func(t *testing.T, err error) {
			var nc *ErrNoContent
			require.ErrorAs(t, err, &nc)
		}},
		{"length", `{"questions":[`, "length", nil, func(t *testing.T, err error) {
			var tr *ErrTruncated
			require.ErrorAs(t, err, &tr)
		}},
		{"off schema", `[1,2]`, "stop", schema, func(t *testing.T, err error) {
			var sm *ErrSchemaMismatch
			require.ErrorAs(t, err, &sm)
			assert.Equal(t, `[1,2]`, sm.Content)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, _ := chatServer(t, http.StatusOK, chatCompletion(tt.content, tt.finish))
			p, err := NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
			require.NoError(t, err)
			_, err = p.Complete(context.Background(), Request{Prompt: "x", Schema: tt.schema})
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusUnauthorized} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			url, _ := chatServer(t, status, map[string]any{
				"error": map[string]any{"type": "server_error", "message": "boom"},
			})
			p, err := NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), Request{Prompt: "x"})
			var up *ErrUpstream
			require.ErrorAs(t, err, &up)
			assert.Equal(t, status, up.StatusCode)
			assert.Equal(t, "boom", up.Body)
			assert.Equal(t, BackendOpenAI, up.Provider)
			assert.Equal(t, status != http.StatusUnauthorized, up.Temporary())
		})
	}
}

func TestOpenAIProvider_TransportFailure(t *testing.T) {
	p, err := NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o", BaseURL: "http://127.0.0.1:1/v1"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Prompt: "x"})
	var up *ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Zero(t, up.StatusCode)
	assert.True(t, up.Temporary())
	assert.Equal(t, "gpt-4o", p.Model())
}

func TestOpenRouterProvider(t *testing.T) {
	url, got := chatServer(t, http.StatusOK, chatCompletion("ok", "stop"))
	p, err := NewOpenRouterProvider(Config{APIKey: "sk-or", Model: "anthropic/claude-sonnet-4-5", BaseURL: url})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "examforge", got.header.Get("X-Title"))
	assert.Equal(t, "Bearer sk-or", got.header.Get("Authorization"))
	assert.Equal(t, "anthropic/claude-sonnet-4-5", got.body["model"])

	_, err = NewOpenRouterProvider(Config{Model: "m"})
	assert.Error(t, err)
}
