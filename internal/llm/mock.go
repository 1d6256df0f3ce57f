package llm

import (
	"context"
	"net/http"
	"sync"
)

// MockResponse is one scripted outcome of a MockProvider call.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// TextResponse scripts a completion holding text.
func TextResponse(text string) MockResponse {
	return MockResponse{Text: text}
}

// ErrorResponse scripts a failed call.
func ErrorResponse(err error) MockResponse {
	return MockResponse{Err: err}
}

// MockProvider replays scripted responses in order and records every
// request. Scripted text goes through the same checks as a real backend's.
// Once the script runs out it answers like an unavailable backend.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

// NewMockProvider scripts responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Complete(_ context.Context, req Request) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.script) == 0 {
		return nil, &ErrUpstream{Provider: BackendMock, StatusCode: http.StatusServiceUnavailable, Body: "no scripted completion left"}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return finish(req, &Completion{Text: next.Text, Usage: next.Usage, Model: BackendMock})
}

func (m *MockProvider) Model() string { return BackendMock }

// Push appends responses to the script.
func (m *MockProvider) Push(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// CallCount is the number of Complete calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastPrompt is the prompt of the most recent call.
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	return m.Calls[len(m.Calls)-1].Prompt
}
