package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/traitkit/internal/ir"
)

// marshalOutcome converts an Outcome to canonical JSON TEXT for storage.
// Empty fields are left out so equal outcomes store byte-identical text.
func marshalOutcome(o ir.Outcome) (string, error) {
	m := map[string]any{"kind": string(o.Kind)}
	if o.Value != "" {
		m["value"] = o.Value
	}
	if o.Code != "" {
		m["code"] = o.Code
	}
	if o.Message != "" {
		m["message"] = o.Message
	}
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}
	return string(data), nil
}

// unmarshalOutcome parses stored outcome TEXT.
func unmarshalOutcome(data string) (ir.Outcome, error) {
	var o ir.Outcome
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return ir.Outcome{}, fmt.Errorf("unmarshal outcome: %w", err)
	}
	switch o.Kind {
	case ir.OutcomeBool, ir.OutcomeType, ir.OutcomeSize, ir.OutcomeError:
	default:
		return ir.Outcome{}, fmt.Errorf("unmarshal outcome: unknown kind %q", o.Kind)
	}
	return o, nil
}
