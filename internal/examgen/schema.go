package examgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/examforge/examforge/internal/llm"
)

// schemaQuestion is the question shape requested through structured output.
// Every field is required so strict providers accept the schema.
type schemaQuestion struct {
	Type          string   `json:"type" jsonschema:"description=One of the requested question types"`
	Question      string   `json:"question" jsonschema:"minLength=1"`
	Options       []string `json:"options" jsonschema:"description=Answer options for multipleChoice; empty for other types"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type schemaDoc struct {
	Questions []schemaQuestion `json:"questions"`
}

// ResponseSchema reflects the structured output schema, restricting "type"
// to the requested set.
func ResponseSchema(types TypeSet) (*llm.Schema, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	reflected := r.Reflect(&schemaDoc{})

	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode reflected schema: %w", err)
	}
	delete(def, "$schema")
	delete(def, "$id")

	enum := make([]any, 0, types.Len())
	names := make([]string, 0, types.Len())
	for _, t := range types.List() {
		enum = append(enum, string(t))
		names = append(names, string(t))
	}
	sort.Strings(names)

	props, _ := def["properties"].(map[string]any)
	questions, _ := props["questions"].(map[string]any)
	items, _ := questions["items"].(map[string]any)
	itemProps, _ := items["properties"].(map[string]any)
	typeProp, ok := itemProps["type"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("reflected schema has no question type property")
	}
	typeProp["enum"] = enum

	return &llm.Schema{
		// Compiled schemas are cached by name, so the name encodes the type set.
		Name:        "exam-question-set-" + strings.Join(names, "-"),
		Description: "A set of exam questions",
		Definition:  def,
	}, nil
}

// payloadSchema validates decoded completions before the tagged-union
// decode. It is lenient where models commonly drift: "type" has no enum so
// unknown types surface as ErrTypeViolation, and answers may be booleans
// or numbers.
var payloadSchema = &llm.Schema{
	Name: "exam-question-payload",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"type", "question"},
					"properties": map[string]any{
						"id":       map[string]any{"type": []any{"string", "integer"}},
						"type":     map[string]any{"type": "string"},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":  []any{"array", "null"},
							"items": map[string]any{"type": []any{"string", "number", "boolean"}},
						},
						"correctAnswer": map[string]any{"type": []any{"string", "number", "boolean", "null"}},
					},
				},
			},
		},
	},
}
