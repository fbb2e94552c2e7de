package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerSchema() *OutputToolSpec {
	return &OutputToolSpec{
		ToolName: "final_answer",
		Schema: map[string]any{
			"type":                 "object",
			"required":             []any{"answer"},
			"additionalProperties": false,
			"properties": map[string]any{
				"answer": map[string]any{"type": "string"},
			},
		},
	}
}

func TestValidateOutputTool_ValidArgumentsPass(t *testing.T) {
	verdict, msg, err := validateOutputTool(answerSchema(), ToolCall{Arguments: `{"answer":"42"}`}, 0)

	require.NoError(t, err)
	assert.Equal(t, OutputValid, verdict)
	assert.Empty(t, msg)
}

func TestValidateOutputTool_MissingRequiredFieldIsInvalid(t *testing.T) {
	verdict, msg, err := validateOutputTool(answerSchema(), ToolCall{Arguments: `{}`}, 0)

	require.NoError(t, err)
	assert.Equal(t, OutputInvalid, verdict)
	assert.NotEmpty(t, msg)
}

func TestValidateOutputTool_MalformedJSONIsInvalid(t *testing.T) {
	verdict, msg, err := validateOutputTool(answerSchema(), ToolCall{Arguments: `not json`}, 0)

	require.NoError(t, err)
	assert.Equal(t, OutputInvalid, verdict)
	assert.Contains(t, msg, "not valid JSON")
}

func TestValidateOutputTool_ExhaustsRetries(t *testing.T) {
	verdict, msg, err := validateOutputTool(answerSchema(), ToolCall{Arguments: `{}`}, maxOutputValidationRetries)

	require.NoError(t, err)
	assert.Equal(t, OutputMaxRetriesExceeded, verdict)
	assert.Contains(t, msg, "exceeded")
}
