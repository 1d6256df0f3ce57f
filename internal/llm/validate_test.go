package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionListSchema() *Schema {
	return &Schema{
		Name: "test-question-list",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"questions"},
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"type":     map[string]any{"type": "string", "enum": []any{"multipleChoice", "trueFalse"}},
							"question": map[string]any{"type": "string", "minLength": 1},
							"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []any{"type", "question"},
					},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"questions":[{"type":"trueFalse","question":"Sky is blue"}]}`, false},
		{"valid with options", `{"questions":[{"type":"multipleChoice","question":"Pick","options":["a","b"]}]}`, false},
		{"empty list", `{"questions":[]}`, false},
		{"missing list", `{}`, true},
		{"missing question", `{"questions":[{"type":"trueFalse"}]}`, true},
		{"empty question", `{"questions":[{"type":"trueFalse","question":""}]}`, true},
		{"bad enum", `{"questions":[{"type":"essay","question":"Write"}]}`, true},
		{"numeric options", `{"questions":[{"type":"multipleChoice","question":"x","options":[1,2]}]}`, true},
		{"array at top", `[{"type":"trueFalse","question":"x"}]`, true},
		{"malformed", `{"questions":[{oops`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(questionListSchema(), []byte(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var sm *ErrSchemaMismatch
			require.ErrorAs(t, err, &sm)
			assert.Equal(t, tt.raw, sm.Content)
			assert.Equal(t, "test-question-list", sm.Schema)
		})
	}
}

func TestValidate_NilSchema(t *testing.T) {
	assert.NoError(t, Validate(nil, []byte(`not even json`)))
}

func TestValidate_BrokenSchema(t *testing.T) {
	s := &Schema{Name: "test-broken", Definition: map[string]any{"type": 42}}
	err := Validate(s, []byte(`{}`))
	var sm *ErrSchemaMismatch
	require.ErrorAs(t, err, &sm)
	assert.ErrorContains(t, err, "test-broken")
}
