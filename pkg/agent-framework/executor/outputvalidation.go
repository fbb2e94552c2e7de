package executor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// OutputValidationVerdict discriminates the outcome of validating the
// manifest's OutputTool call arguments (§4.3 step 10).
type OutputValidationVerdict string

const (
	OutputValid              OutputValidationVerdict = "valid"
	OutputInvalid             OutputValidationVerdict = "invalid"
	OutputMaxRetriesExceeded OutputValidationVerdict = "max_retries_exceeded"
)

const maxOutputValidationRetries = 3

// validateOutputTool validates call.Arguments against spec.Schema using
// santhosh-tekuri/jsonschema.
//
// Grounded on haasonsaas-nexus's use of github.com/santhosh-tekuri/
// jsonschema/v5 — the nearest pack repo to carry a JSON-schema validator —
// rather than hand-rolling argument validation on the standard library; the
// teacher's own structured-output support (agents.Agent's
// `opts.Output` → `responses.TextFormat{Format: map[string]any{"type":
// "json_schema", ...}}` in agent.go) only wraps the schema for the
// provider's use and never validates the returned arguments against it.
func validateOutputTool(spec *OutputToolSpec, call ToolCall, retries int) (OutputValidationVerdict, string, error) {
	if retries >= maxOutputValidationRetries {
		return OutputMaxRetriesExceeded, fmt.Sprintf("exceeded %d output validation retries", maxOutputValidationRetries), nil
	}

	schemaBytes, err := json.Marshal(spec.Schema)
	if err != nil {
		return OutputInvalid, "", err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("output-tool.json", bytes.NewReader(schemaBytes)); err != nil {
		return OutputInvalid, "", err
	}
	schema, err := compiler.Compile("output-tool.json")
	if err != nil {
		return OutputInvalid, "", err
	}

	var args any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return OutputInvalid, fmt.Sprintf("output arguments are not valid JSON: %v", err), nil
	}

	if err := schema.Validate(args); err != nil {
		return OutputInvalid, err.Error(), nil
	}

	return OutputValid, "", nil
}
