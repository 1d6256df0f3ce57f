package examgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/llm"
)

func TestResponseSchema_RestrictsTypes(t *testing.T) {
	schema, err := ResponseSchema(NewTypeSet(TypeTrueFalse, TypeMultipleChoice))
	require.NoError(t, err)
	assert.Equal(t, "exam-question-set-multipleChoice-trueFalse", schema.Name)

	def := schema.Definition
	assert.NotContains(t, def, "$schema")
	assert.Equal(t, false, def["additionalProperties"])

	raw, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"enum":["multipleChoice","trueFalse"]`)

	ok3 := json.RawMessage(`{"questions":[{"type":"trueFalse","question":"q","options":[],"correctAnswer":"true"}]}`)
	assert.NoError(t, llm.Validate(schema, ok3))

	bad := json.RawMessage(`{"questions":[{"type":"openQuestions","question":"q","options":[],"correctAnswer":""}]}`)
	assert.Error(t, llm.Validate(schema, bad))
}

func TestResponseSchema_NameTracksTypeSet(t *testing.T) {
	a, err := ResponseSchema(NewTypeSet(TypeFillBlanks))
	require.NoError(t, err)
	b, err := ResponseSchema(NewTypeSet(TypeFillBlanks, TypeOpenQuestions))
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)
}
