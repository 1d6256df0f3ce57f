package examgen

import "strings"

// Limits applied to generation requests.
const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
	MaxVersionsCount     = 26
)

// Config controls the behavior of the Generator.
type Config struct {
	// Validators run on every parsed question in order; the first
	// failure rejects the completion.
	Validators []Validator

	// MaxTokens is the token budget for the completion.
	MaxTokens int

	// Temperature controls completion randomness (0.0-1.0).
	Temperature float64

	// StrictCount turns a question count mismatch into ErrCountMismatch
	// instead of a warning.
	StrictCount bool

	// StructuredOutput asks the provider for schema-constrained JSON.
	StructuredOutput bool
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators:  DefaultValidators(),
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}

// WithDefaults fills zero values the request layer leaves open.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if !c.MultipleVersions {
		c.VersionsCount = 1
	} else if c.VersionsCount == 0 {
		c.VersionsCount = 2
	}
	c.Title = strings.TrimSpace(c.Title)
	c.Language = strings.TrimSpace(c.Language)
	c.Difficulty = strings.TrimSpace(c.Difficulty)
	return c
}

// Validate checks the config before any upstream call. It returns
// *ErrConfigInvalid naming every offending field.
func (c GenerationConfig) Validate() error {
	var fields []string
	if strings.TrimSpace(c.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(c.Language) == "" {
		fields = append(fields, "language")
	}
	if strings.TrimSpace(c.Difficulty) == "" {
		fields = append(fields, "difficulty")
	}
	if c.QuestionCount < 1 || c.QuestionCount > MaxQuestionCount {
		fields = append(fields, "questionsCount")
	}
	if c.Types.Len() == 0 || c.hasUnknownType() {
		fields = append(fields, "questionTypes")
	}
	if c.MultipleVersions && (c.VersionsCount < 1 || c.VersionsCount > MaxVersionsCount) {
		fields = append(fields, "versionsCount")
	}
	if c.SourceMaterial != nil && strings.TrimSpace(c.SourceMaterial.Text) == "" && strings.TrimSpace(c.SourceMaterial.Title) == "" {
		fields = append(fields, "materialConteudo")
	}
	if len(fields) > 0 {
		return &ErrConfigInvalid{Fields: fields}
	}
	return nil
}

func (c GenerationConfig) hasUnknownType() bool {
	for t, ok := range c.Types {
		if ok && !t.Valid() {
			return true
		}
	}
	return false
}
