package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"vpnvalidator/internal/domain"
)

// verdictSchema constrains the shape of the judge's JSON answer. Fields
// may be absent (they are backfilled with defaults), but a present field
// with the wrong type is treated as a malformed answer.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"is_valid": {"type": "boolean"},
		"status": {"type": "string"},
		"confidence": {"type": "number"},
		"issues": {"type": "array", "items": {"type": "string"}},
		"reasoning": {"type": "string"},
		"missing_fields": {"type": "array", "items": {"type": "string"}},
		"signature_analysis": {"type": "object"},
		"document_type_analysis": {"type": "object"},
		"recommendations": {"type": "array", "items": {"type": "string"}}
	}
}`

var compileSchemaOnce = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("verdict.json", bytes.NewReader([]byte(verdictSchema))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("verdict.json")
})

// ParseVerdict turns the judge's raw text answer into a JudgeVerdict. It
// strips markdown code fences, validates the JSON against the verdict
// schema, backfills absent fields with conservative defaults, and
// normalizes the confidence into [0, 1]. Errors wrap
// domain.ErrJudgeMalformed.
func ParseVerdict(text string) (*domain.JudgeVerdict, error) {
	text = stripFences(text)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", domain.ErrJudgeMalformed, err)
	}

	schema, err := compileSchemaOnce()
	if err != nil {
		return nil, fmt.Errorf("compiling verdict schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJudgeMalformed, err)
	}

	applyDefaults(raw)

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJudgeMalformed, err)
	}
	var verdict domain.JudgeVerdict
	if err := json.Unmarshal(normalized, &verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJudgeMalformed, err)
	}

	verdict.Confidence = normalizeConfidence(verdict.Confidence)
	return &verdict, nil
}

// applyDefaults backfills fields the judge omitted. Defaults are
// conservative: an incomplete answer reads as a rejection.
func applyDefaults(raw map[string]interface{}) {
	defaults := map[string]interface{}{
		"is_valid":       false,
		"status":         string(domain.StatusRejected),
		"confidence":     0.0,
		"issues":         []interface{}{"LLM evaluation failed"},
		"reasoning":      "Unable to evaluate due to processing error",
		"missing_fields": []interface{}{},
		"signature_analysis": map[string]interface{}{
			"count": 0, "sufficient": false, "description": "Unable to analyze",
		},
		"document_type_analysis": map[string]interface{}{
			"detected_type": string(domain.DocTypeUnknown), "confidence": 0.0, "description": "Unable to analyze",
		},
		"recommendations": []interface{}{},
	}
	for key, value := range defaults {
		if _, ok := raw[key]; !ok {
			raw[key] = value
		}
	}
}

// normalizeConfidence maps a percentage-style confidence (anything
// above 1) onto the unit scale and clamps the result into [0, 1].
func normalizeConfidence(c float64) float64 {
	if c > 1 {
		c = c / 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// stripFences removes a surrounding markdown code fence, with or
// without a json language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
