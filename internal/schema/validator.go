// Package schema validates canonical envelopes against a JSON-Schema
// (draft 2020-12 subset) and reports violations as readable strings.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks payload (raw JSON) against schemaMap. The returned
// slice holds one human-readable violation per failed constraint, in
// evaluation order; an empty slice means the payload is valid.
func Validate(schemaMap map[string]any, payload []byte) ([]string, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	err = compiled.Validate(v)
	if err == nil {
		return []string{}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate payload: %w", err)
	}

	var violations []string
	for _, unit := range verr.BasicOutput().Errors {
		if unit.Error == "" {
			continue
		}
		loc := unit.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		violations = append(violations, fmt.Sprintf("%s: %s", loc, unit.Error))
	}
	return violations, nil
}
