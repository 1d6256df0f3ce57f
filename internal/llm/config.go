package llm

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted in Config.Provider.
const (
	BackendAnthropic  = "anthropic"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
	BackendMock       = "mock"
)

// Config selects one completion backend and how calls to it are bounded.
type Config struct {
	Provider string
	APIKey   string

	// Model is a model ID or one of the backend's short aliases. Empty
	// selects the backend default.
	Model string

	// BaseURL overrides the backend endpoint (proxies, tests).
	BaseURL string

	// Timeout bounds one completion call, retries included.
	Timeout time.Duration
	Retry   RetryPolicy
}

type backend struct {
	// vendorKeyEnv is the vendor's conventional API key variable.
	vendorKeyEnv string
	defaultModel string
	aliases      map[string]string
	open         func(ctx context.Context, cfg Config) (Provider, error)
}

func (b backend) model(name string) string {
	name = cmp.Or(name, b.defaultModel)
	if id, ok := b.aliases[name]; ok {
		return id
	}
	return name
}

var backends = map[string]backend{
	BackendAnthropic: {
		vendorKeyEnv: "ANTHROPIC_API_KEY",
		defaultModel: "claude-haiku",
		aliases: map[string]string{
			"claude-haiku":  "claude-haiku-4-5",
			"claude-sonnet": "claude-sonnet-4-5",
		},
		open: func(_ context.Context, cfg Config) (Provider, error) { return NewAnthropicProvider(cfg) },
	},
	BackendOpenAI: {
		vendorKeyEnv: "OPENAI_API_KEY",
		defaultModel: "gpt-4o-mini",
		open:         func(_ context.Context, cfg Config) (Provider, error) { return NewOpenAIProvider(cfg) },
	},
	BackendGemini: {
		vendorKeyEnv: "GEMINI_API_KEY",
		defaultModel: "gemini-flash",
		aliases: map[string]string{
			"gemini-flash": "gemini-2.5-flash",
			"gemini-pro":   "gemini-2.5-pro",
		},
		open: func(ctx context.Context, cfg Config) (Provider, error) { return NewGeminiProvider(ctx, cfg) },
	},
	BackendOpenRouter: {
		vendorKeyEnv: "OPENROUTER_API_KEY",
		defaultModel: "openai/gpt-4o-mini",
		open:         func(_ context.Context, cfg Config) (Provider, error) { return NewOpenRouterProvider(cfg) },
	},
	BackendMock: {
		defaultModel: BackendMock,
		open:         func(context.Context, Config) (Provider, error) { return NewMockProvider(), nil },
	},
}

// discoveryOrder is the order in which backends are probed for a key when
// EXAMFORGE_LLM_PROVIDER is unset.
var discoveryOrder = []string{BackendGemini, BackendOpenAI, BackendAnthropic, BackendOpenRouter}

// Backends lists the accepted Provider values.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DefaultConfig targets Anthropic with a 90s budget and no retries.
func DefaultConfig() Config {
	return Config{
		Provider: BackendAnthropic,
		Timeout:  90 * time.Second,
		Retry:    DefaultRetryPolicy(),
	}
}

// ConfigFromEnv reads the EXAMFORGE_LLM_* variables. Without
// EXAMFORGE_LLM_PROVIDER the first backend that has a key, either
// EXAMFORGE_<BACKEND>_API_KEY or the vendor's own variable, is chosen.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := strings.ToLower(os.Getenv("EXAMFORGE_LLM_PROVIDER")); p != "" {
		cfg.Provider = p
	} else if p, ok := discover(); ok {
		cfg.Provider = p
	}

	prefix := "EXAMFORGE_" + strings.ToUpper(cfg.Provider) + "_"
	cfg.APIKey = firstEnv("EXAMFORGE_LLM_API_KEY", prefix+"API_KEY", backends[cfg.Provider].vendorKeyEnv)
	cfg.Model = firstEnv("EXAMFORGE_LLM_MODEL", prefix+"MODEL")
	cfg.BaseURL = firstEnv("EXAMFORGE_LLM_BASE_URL", prefix+"BASE_URL")

	if d, err := time.ParseDuration(os.Getenv("EXAMFORGE_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("EXAMFORGE_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

func discover() (string, bool) {
	for _, name := range discoveryOrder {
		if firstEnv("EXAMFORGE_"+strings.ToUpper(name)+"_API_KEY", backends[name].vendorKeyEnv) != "" {
			return name, true
		}
	}
	return "", false
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the backend exists and has what it needs to start.
func (c Config) Validate() error {
	if _, ok := backends[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider %q (want one of %s)", c.Provider, strings.Join(Backends(), ", "))
	}
	if c.Provider != BackendMock && c.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider (EXAMFORGE_LLM_API_KEY or EXAMFORGE_%s_API_KEY)",
			c.Provider, strings.ToUpper(c.Provider))
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("LLM timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
