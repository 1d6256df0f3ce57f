package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64 // input price, 0 means unknown
	}{
		{"gpt-4o-mini", 0.15},
		{"claude-haiku-4-5-20251001", 1},
		{"gpt-4o-2024-08-06", 2.5},
		{"anthropic/claude-sonnet-4-5", 3},
		{"openai/gpt-4o-mini", 0.15},
		{"gemini-flash-latest", 0.3},
		{"  GPT-4.1 ", 2},
		{"llama-3-70b", 0},
		{"", 0},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if tt.want == 0 {
			assert.Nil(t, c, tt.model)
			continue
		}
		require.NotNil(t, c, tt.model)
		assert.Equal(t, tt.want, c.InputPerMTok, tt.model)
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	assert.InDelta(t, 0.0035, c.Cost(1000, 500), 1e-12)
	assert.Zero(t, c.Cost(0, 0))
}
