package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() map[string]any {
	return map[string]any{
		"schema_version": SchemaVersion,
		"job": map[string]any{
			"job_id": "7b0f1d9e",
			"source_files": []any{map[string]any{
				"filename":   "afs_2023_24.pdf",
				"size_bytes": 1024,
				"sha256":     strings.Repeat("ab", 32),
				"page_count": 12,
			}},
			"created_at":   "2026-08-30T10:00:00Z",
			"processed_at": "2026-08-30T10:00:05Z",
		},
		"entity": map[string]any{
			"ulb_name": "Test Municipal Council",
			"ulb_code": "TMC001",
			"state":    "Test State",
		},
		"statement_periods": []any{"FY2023-24"},
		"source_units": map[string]any{
			"currency":      "INR",
			"reported_unit": "rupees",
		},
		"outputs": map[string]any{
			"balance_sheet":      map[string]any{},
			"income_expenditure": map[string]any{},
			"cash_flow":          map[string]any{},
			"audit_report":       nil,
		},
		"confidence": map[string]any{
			"overall":      0.91,
			"by_statement": map[string]any{"balance_sheet": 0.93},
		},
		"validation": map[string]any{
			"validation_status": "PASSED",
			"findings":          []any{},
		},
		"requires_manual_review": false,
		"review_reasons":         []any{},
		"evidence_index":         map[string]any{},
	}
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValidateAcceptsValidEnvelope(t *testing.T) {
	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, validEnvelope()))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateMissingRequiredField(t *testing.T) {
	env := validEnvelope()
	delete(env, "validation")

	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, env))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestValidateRejectsUndeclaredField(t *testing.T) {
	env := validEnvelope()
	env["debug_notes"] = "should not be here"

	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, env))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestValidateBadPeriodFormat(t *testing.T) {
	env := validEnvelope()
	env["statement_periods"] = []any{"2023-24"}

	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, env))
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	joined := strings.Join(violations, "\n")
	assert.Contains(t, joined, "statement_periods")
}

func TestValidateConfidenceOutOfRange(t *testing.T) {
	env := validEnvelope()
	env["confidence"] = map[string]any{
		"overall":      1.2,
		"by_statement": map[string]any{},
	}

	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, env))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestValidateWrongSchemaVersion(t *testing.T) {
	env := validEnvelope()
	env["schema_version"] = "0.9.0"

	violations, err := Validate(BuildEnvelopeSchema(), marshal(t, env))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestValidateMalformedPayload(t *testing.T) {
	_, err := Validate(BuildEnvelopeSchema(), []byte("{not json"))
	assert.Error(t, err)
}
