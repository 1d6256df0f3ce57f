package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearLLMEnv blanks every variable ConfigFromEnv reads so the host
// environment cannot leak into a test.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EXAMFORGE_LLM_PROVIDER", "EXAMFORGE_LLM_API_KEY", "EXAMFORGE_LLM_MODEL", "EXAMFORGE_LLM_BASE_URL",
		"EXAMFORGE_LLM_TIMEOUT", "EXAMFORGE_LLM_MAX_ATTEMPTS",
	} {
		t.Setenv(k, "")
	}
	for name, b := range backends {
		for _, suffix := range []string{"_API_KEY", "_MODEL", "_BASE_URL"} {
			t.Setenv("EXAMFORGE_"+strings.ToUpper(name)+suffix, "")
		}
		if b.vendorKeyEnv != "" {
			t.Setenv(b.vendorKeyEnv, "")
		}
	}
}

func TestConfigFromEnv_Explicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("EXAMFORGE_LLM_PROVIDER", "OpenAI")
	t.Setenv("EXAMFORGE_OPENAI_API_KEY", "sk-env")
	t.Setenv("EXAMFORGE_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("EXAMFORGE_LLM_TIMEOUT", "15s")
	t.Setenv("EXAMFORGE_LLM_MAX_ATTEMPTS", "3")

	cfg := ConfigFromEnv()
	assert.Equal(t, BackendOpenAI, cfg.Provider)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_GenericVariablesWin(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("EXAMFORGE_LLM_PROVIDER", "anthropic")
	t.Setenv("EXAMFORGE_LLM_API_KEY", "generic")
	t.Setenv("EXAMFORGE_ANTHROPIC_API_KEY", "specific")
	t.Setenv("EXAMFORGE_LLM_BASE_URL", "http://proxy.local")

	cfg := ConfigFromEnv()
	assert.Equal(t, "generic", cfg.APIKey)
	assert.Equal(t, "http://proxy.local", cfg.BaseURL)
	assert.Empty(t, cfg.Model)
}

func TestConfigFromEnv_Discovery(t *testing.T) {
	t.Run("vendor variable", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		t.Setenv("OPENROUTER_API_KEY", "sk-or")

		cfg := ConfigFromEnv()
		assert.Equal(t, BackendAnthropic, cfg.Provider)
		assert.Equal(t, "sk-ant", cfg.APIKey)
	})

	t.Run("gemini first", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-oa")
		t.Setenv("EXAMFORGE_GEMINI_API_KEY", "g")

		cfg := ConfigFromEnv()
		assert.Equal(t, BackendGemini, cfg.Provider)
		assert.Equal(t, "g", cfg.APIKey)
	})

	t.Run("nothing found", func(t *testing.T) {
		clearLLMEnv(t)
		cfg := ConfigFromEnv()
		assert.Equal(t, BackendAnthropic, cfg.Provider)
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_Validate(t *testing.T) {
	ok := func(mut func(*Config)) Config {
		c := DefaultConfig()
		c.APIKey = "k"
		mut(&c)
		return c
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults with key", ok(func(*Config) {}), ""},
		{"missing key", ok(func(c *Config) { c.APIKey = "" }), "EXAMFORGE_ANTHROPIC_API_KEY"},
		{"mock needs no key", ok(func(c *Config) { c.Provider = BackendMock; c.APIKey = "" }), ""},
		{"unknown provider", ok(func(c *Config) { c.Provider = "llama" }), "unknown LLM provider"},
		{"zero attempts", ok(func(c *Config) { c.Retry.MaxAttempts = 0 }), "max attempts"},
		{"negative timeout", ok(func(c *Config) { c.Timeout = -time.Second }), "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBackendModelAliases(t *testing.T) {
	tests := []struct {
		backend, in, want string
	}{
		{BackendAnthropic, "", "claude-haiku-4-5"},
		{BackendAnthropic, "claude-sonnet", "claude-sonnet-4-5"},
		{BackendAnthropic, "claude-opus-4-1-20250805", "claude-opus-4-1-20250805"},
		{BackendGemini, "gemini-flash", "gemini-2.5-flash"},
		{BackendGemini, "gemini-2.0-flash", "gemini-2.0-flash"},
		{BackendOpenAI, "", "gpt-4o-mini"},
		{BackendOpenRouter, "", "openai/gpt-4o-mini"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backends[tt.backend].model(tt.in), "%s %q", tt.backend, tt.in)
	}
	assert.Equal(t, []string{"anthropic", "gemini", "mock", "openai", "openrouter"}, Backends())
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil)
	require.Error(t, err)

	cfg := DefaultConfig()
	cfg.Provider = BackendMock
	cfg.Retry.MaxAttempts = 2
	p, err := NewProvider(context.Background(), cfg, &recordingEventRepo{})
	require.NoError(t, err)
	assert.Equal(t, BackendMock, p.Model())

	cfg = DefaultConfig()
	cfg.APIKey = "k"
	p, err = NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", p.Model())
}
