package examgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	cfg := GenerationConfig{Title: "  Quiz ", Types: NewTypeSet(TypeOpenQuestions)}.WithDefaults()
	assert.Equal(t, "Quiz", cfg.Title)
	assert.Equal(t, DefaultQuestionCount, cfg.QuestionCount)
	assert.Equal(t, 1, cfg.VersionsCount)

	multi := GenerationConfig{MultipleVersions: true}.WithDefaults()
	assert.Equal(t, 2, multi.VersionsCount)

	kept := GenerationConfig{MultipleVersions: true, VersionsCount: 7}.WithDefaults()
	assert.Equal(t, 7, kept.VersionsCount)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationConfig)
		fields []string
	}{
		{"valid", func(*GenerationConfig) {}, nil},
		{"language", func(c *GenerationConfig) { c.Language = "" }, []string{"language"}},
		{"count too high", func(c *GenerationConfig) { c.QuestionCount = MaxQuestionCount + 1 }, []string{"questionsCount"}},
		{"count negative", func(c *GenerationConfig) { c.QuestionCount = -1 }, []string{"questionsCount"}},
		{"unknown type", func(c *GenerationConfig) { c.Types = NewTypeSet("essay") }, []string{"questionTypes"}},
		{"too many versions", func(c *GenerationConfig) {
			c.MultipleVersions = true
			c.VersionsCount = MaxVersionsCount + 1
		}, []string{"versionsCount"}},
		{"versions ignored when single", func(c *GenerationConfig) { c.VersionsCount = 99 }, nil},
		{"blank material", func(c *GenerationConfig) { c.SourceMaterial = &SourceMaterial{} }, []string{"materialConteudo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var ci *ErrConfigInvalid
			require.ErrorAs(t, err, &ci)
			assert.Equal(t, tt.fields, ci.Fields)
		})
	}
}
