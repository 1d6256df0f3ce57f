package examgen

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/examforge/examforge/internal/llm"
)

// Result is the output of one generation cycle. Questions is always the
// validated base set. Versions is set only for multi-version requests;
// AnswerKey only for single-set requests that asked for one.
type Result struct {
	Questions   QuestionSet
	AnswerKey   []AnswerKeyEntry
	Versions    []Version
	GeneratedAt time.Time
	Config      GenerationConfig
	Seed        int
	Warnings    []string
}

// Generator runs the prompt, completion, parse and versioning steps.
type Generator struct {
	completion *CompletionClient
	config     Config

	// Now and NewRand are replaceable for tests.
	Now     func() time.Time
	NewRand func() *rand.Rand
}

// NewGenerator creates a Generator over provider.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	if cfg.Validators == nil {
		cfg.Validators = DefaultValidators()
	}
	return &Generator{
		completion: NewCompletionClient(provider, cfg.MaxTokens, cfg.Temperature),
		config:     cfg,
		Now:        func() time.Time { return time.Now().UTC() },
		NewRand:    NewRand,
	}
}

// Generate validates cfg, asks the completion service for one base set and
// derives versions locally. Nothing is persisted; a failure at any step
// returns no partial result.
func (g *Generator) Generate(ctx context.Context, cfg GenerationConfig, seed int) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := slog.With("title", cfg.Title, "seed", seed)

	prompt := BuildPrompt(cfg, seed)
	log.InfoContext(ctx, "exam prompt built",
		"questions", cfg.QuestionCount, "types", cfg.Types.String(),
		"multiple_versions", cfg.MultipleVersions, "prompt_chars", len(prompt))

	start := time.Now()
	var (
		text string
		err  error
	)
	if g.config.StructuredOutput {
		schema, serr := ResponseSchema(cfg.Types)
		if serr != nil {
			return nil, serr
		}
		text, err = g.completion.CompleteStructured(ctx, prompt, schema)
	} else {
		text, err = g.completion.Complete(ctx, prompt)
	}
	if err != nil {
		log.ErrorContext(ctx, "completion failed", "error", err, "latency", time.Since(start))
		return nil, err
	}
	log.InfoContext(ctx, "completion received", "chars", len(text), "latency", time.Since(start))

	parsed, err := ParseAndValidate(text, cfg.Types, cfg.QuestionCount,
		WithStrictCount(g.config.StrictCount), WithValidators(g.config.Validators...))
	if err != nil {
		log.WarnContext(ctx, "completion rejected", "error", err)
		return nil, err
	}
	log.InfoContext(ctx, "completion validated",
		"questions", len(parsed.Questions), "warnings", len(parsed.Warnings))

	res := &Result{
		Questions:   parsed.Questions,
		GeneratedAt: g.Now(),
		Config:      cfg,
		Seed:        seed,
		Warnings:    parsed.Warnings,
	}

	if !cfg.MultipleVersions {
		if cfg.AnswerKey {
			key, err := BuildAnswerKey(res.Questions)
			if err != nil {
				log.WarnContext(ctx, "answer key failed", "error", err)
				return nil, err
			}
			res.AnswerKey = key
		}
		return res, nil
	}

	versions, err := GenerateVersions(res.Questions, cfg.VersionsCount, cfg.AnswerKey, g.NewRand())
	if err != nil {
		log.WarnContext(ctx, "versioning failed", "error", err)
		return nil, err
	}
	res.Versions = versions
	log.InfoContext(ctx, "versions generated", "versions", len(versions), "answer_key", cfg.AnswerKey)
	return res, nil
}
