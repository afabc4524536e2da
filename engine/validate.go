package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rishicds/orinai-sub000/core"
)

// Validator owns every structural check on dashboard outputs, and every
// coercion from untyped AI payloads to the canonical type. Callers never
// hand-roll that mapping; they only ever see core.DashboardOutput.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a typed output. The input is never mutated; when a
// repair is possible (missing or too-short title), a corrected copy is
// attached.
func (v *Validator) Validate(output *core.DashboardOutput, c *core.Classification) *core.ValidationResult {
	result := &core.ValidationResult{}

	if output == nil {
		result.Errors = append(result.Errors, "output is missing")
		return result
	}

	if strings.TrimSpace(output.Title) == "" {
		result.Errors = append(result.Errors, "title is missing or empty")
	} else if len(output.Title) < core.MinTitleLength {
		result.Warnings = append(result.Warnings, fmt.Sprintf("title shorter than %d characters", core.MinTitleLength))
	}

	for i, link := range output.Sublinks {
		if strings.TrimSpace(link.Label) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("sublink %d is missing a label", i))
		}
		if strings.TrimSpace(link.Route) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("sublink %d is missing a route", i))
		}
	}

	if c != nil && output.Kind != c.Kind {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("output kind %q differs from classified kind %q", output.Kind, c.Kind))
	}
	if len(output.Data) == 0 && output.Kind != core.KindText {
		result.Warnings = append(result.Warnings, "data array is empty for a non-text kind")
	}

	if len(output.Data) > 0 {
		if _, ok := output.Data[0]["label"]; !ok {
			result.Suggestions = append(result.Suggestions, "data records conventionally carry label/value keys")
		}
	}

	// Titles below the minimum length are repaired, not just flagged.
	if len(strings.TrimSpace(output.Title)) < core.MinTitleLength {
		corrected := *output
		corrected.Title = correctedTitle(output.Kind, c)
		corrected.ClampTitle()
		result.Corrected = &corrected
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// CoerceRaw maps an untyped AI payload onto the canonical type. Structural
// problems become validation errors, never panics; the returned output
// carries whatever fields did coerce.
func (v *Validator) CoerceRaw(payload map[string]any, c *core.Classification) (*core.DashboardOutput, *core.ValidationResult) {
	result := &core.ValidationResult{}
	output := &core.DashboardOutput{}
	if c != nil {
		output.Kind = c.Kind
	}

	if payload == nil {
		result.Errors = append(result.Errors, "payload is missing")
		return output, result
	}

	if raw, present := payload["visualization_kind"]; present {
		if s, ok := raw.(string); ok && core.ValidKind(core.VisualizationKind(s)) {
			output.Kind = core.VisualizationKind(s)
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown visualization_kind %v, keeping classified kind", raw))
		}
	}

	if raw, present := payload["title"]; present {
		if s, ok := raw.(string); ok {
			output.Title = s
		} else {
			result.Errors = append(result.Errors, "title field must be a string")
		}
	}

	if raw, present := payload["data"]; present {
		list, ok := raw.([]any)
		if !ok {
			result.Errors = append(result.Errors, "data field must be an array")
		} else {
			for _, item := range list {
				if record, ok := item.(map[string]any); ok {
					output.Data = append(output.Data, record)
				} else {
					output.Data = append(output.Data, core.DataPoint{"value": item})
				}
			}
		}
	}

	if raw, present := payload["config"]; present {
		if cfg, ok := raw.(map[string]any); ok {
			output.Config = cfg
		}
	}

	if raw, present := payload["summary"]; present {
		if s, ok := raw.(string); ok {
			output.Summary = s
		}
	}

	if raw, present := payload["sublinks"]; present {
		list, ok := raw.([]any)
		if !ok {
			result.Errors = append(result.Errors, "sublinks field must be an array")
		} else {
			for i, item := range list {
				record, ok := item.(map[string]any)
				if !ok {
					result.Errors = append(result.Errors, fmt.Sprintf("sublink %d must be an object", i))
					continue
				}
				link := core.Sublink{}
				link.Label, _ = record["label"].(string)
				link.Route, _ = record["route"].(string)
				if rawCtx, ok := record["context"].(map[string]any); ok {
					link.Context = make(map[string]string, len(rawCtx))
					for k, val := range rawCtx {
						link.Context[k] = fmt.Sprint(val)
					}
				}
				link.EnsureContext(output.Kind, output.Title)
				output.Sublinks = append(output.Sublinks, link)
			}
		}
	}

	output.ClampTitle()
	result.IsValid = len(result.Errors) == 0
	return output, result
}

// ParseDashboard decodes AI completion text into a canonical output,
// rejecting payloads whose coercion reported errors.
func (v *Validator) ParseDashboard(text string, c *core.Classification) (*core.DashboardOutput, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: dashboard JSON: %v", core.ErrSchemaViolation, err)
	}

	output, result := v.CoerceRaw(payload, c)
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", core.ErrSchemaViolation, strings.Join(result.Errors, "; "))
	}
	return output, nil
}

// correctedTitle synthesizes a title from the output or classified kind.
func correctedTitle(kind core.VisualizationKind, c *core.Classification) string {
	if kind == "" && c != nil {
		kind = c.Kind
	}
	if kind == "" {
		kind = core.KindText
	}
	words := strings.Split(string(kind), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + " Analysis"
}
