package schema

// SchemaVersion is the canonical envelope version this build emits.
const SchemaVersion = "1.0.0"

// BuildEnvelopeSchema returns the JSON-Schema (draft 2020-12 subset)
// for the canonical envelope as a generic map. Enforces required-field
// presence, rejects undeclared top-level fields, and type-checks the
// contract surface downstream consumers depend on.
func BuildEnvelopeSchema() map[string]any {
	confidenceProp := map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
	stringArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	sourceFile := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filename":   map[string]any{"type": "string"},
			"size_bytes": map[string]any{"type": "integer"},
			"sha256":     map[string]any{"type": "string", "pattern": `^[0-9a-f]{64}$`},
			"page_count": map[string]any{"type": "integer"},
		},
		"required": []string{"filename", "size_bytes", "sha256", "page_count"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"schema_version": map[string]any{"type": "string", "const": SchemaVersion},
			"job": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"job_id":       map[string]any{"type": "string", "minLength": 1},
					"source_files": map[string]any{"type": "array", "items": sourceFile},
					"created_at":   map[string]any{"type": "string"},
					"processed_at": map[string]any{"type": "string"},
				},
				"required": []string{"job_id", "source_files", "created_at", "processed_at"},
			},
			"entity": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ulb_name": map[string]any{"type": "string"},
					"ulb_code": map[string]any{"type": "string"},
					"state":    map[string]any{"type": "string"},
				},
				"required": []string{"ulb_name", "ulb_code", "state"},
			},
			"statement_periods": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "pattern": `^FY\d{4}-\d{2}$`},
			},
			"source_units": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"currency":      map[string]any{"type": "string"},
					"reported_unit": map[string]any{"type": "string"},
				},
				"required": []string{"currency", "reported_unit"},
			},
			"outputs": map[string]any{
				"type":     "object",
				"required": []string{"balance_sheet", "income_expenditure", "cash_flow", "audit_report"},
			},
			"confidence": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"overall":      confidenceProp,
					"by_statement": map[string]any{"type": "object", "additionalProperties": confidenceProp},
				},
				"required": []string{"overall", "by_statement"},
			},
			"validation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"validation_status": map[string]any{"type": "string", "enum": []string{"PASSED", "FAILED"}},
				},
				"required": []string{"validation_status", "findings"},
			},
			"requires_manual_review": map[string]any{"type": "boolean"},
			"review_reasons":         stringArray,
			"evidence_index":         map[string]any{"type": "object"},
		},
		"required": []string{
			"schema_version", "job", "entity", "statement_periods",
			"source_units", "outputs", "confidence", "validation",
			"requires_manual_review", "review_reasons", "evidence_index",
		},
	}
}
