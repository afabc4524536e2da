package engine_test

import (
	"strings"
	"testing"

	"github.com/rishicds/orinai-sub000/core"
	"github.com/rishicds/orinai-sub000/engine"
)

func TestValidateAcceptsGoodOutput(t *testing.T) {
	v := engine.NewValidator()
	output := &core.DashboardOutput{
		Kind:  core.KindPieChart,
		Title: "Market Share",
		Data:  []core.DataPoint{{"label": "A", "value": 1}},
	}
	c := &core.Classification{Kind: core.KindPieChart}

	result := v.Validate(output, c)
	if !result.IsValid {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.Corrected != nil {
		t.Fatal("no correction expected")
	}
}

func TestValidateCorrectsMissingTitle(t *testing.T) {
	v := engine.NewValidator()
	output := &core.DashboardOutput{
		Kind: core.KindPieChart,
		Data: []core.DataPoint{{"label": "A", "value": 1}},
	}
	c := &core.Classification{Kind: core.KindPieChart}

	result := v.Validate(output, c)
	if result.IsValid {
		t.Fatal("missing title must be an error")
	}
	if result.Corrected == nil {
		t.Fatal("expected a corrected copy")
	}
	if result.Corrected.Title != "Pie Chart Analysis" {
		t.Fatalf("corrected title = %q", result.Corrected.Title)
	}
	if output.Title != "" {
		t.Fatal("validated input was mutated")
	}
}

func TestValidateCorrectsShortTitle(t *testing.T) {
	v := engine.NewValidator()
	output := &core.DashboardOutput{
		Kind:  core.KindText,
		Title: "Hi",
		Data:  []core.DataPoint{{"label": "Overview", "value": "greeting"}},
	}
	c := &core.Classification{Kind: core.KindText}

	result := v.Validate(output, c)
	if !result.IsValid {
		t.Fatalf("short title must stay a warning, errors = %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a short-title warning")
	}
	if result.Corrected == nil {
		t.Fatal("expected a corrected copy")
	}
	if result.Corrected.Title != "Text Analysis" {
		t.Fatalf("corrected title = %q", result.Corrected.Title)
	}
	if len(result.Corrected.Title) < core.MinTitleLength {
		t.Fatalf("corrected title still too short: %q", result.Corrected.Title)
	}
	if output.Title != "Hi" {
		t.Fatal("validated input was mutated")
	}
}

func TestValidateFlagsBrokenSublinks(t *testing.T) {
	v := engine.NewValidator()
	output := &core.DashboardOutput{
		Kind:     core.KindTable,
		Title:    "Records",
		Data:     []core.DataPoint{{"label": "A"}},
		Sublinks: []core.Sublink{{Label: "Details"}},
	}

	result := v.Validate(output, &core.Classification{Kind: core.KindTable})
	if result.IsValid {
		t.Fatal("missing sublink route must be an error")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "route") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidateWarnsOnKindMismatch(t *testing.T) {
	v := engine.NewValidator()
	output := &core.DashboardOutput{
		Kind:  core.KindBarChart,
		Title: "Trend",
		Data:  []core.DataPoint{{"label": "A", "value": 1}},
	}

	result := v.Validate(output, &core.Classification{Kind: core.KindLineChart})
	if !result.IsValid {
		t.Fatalf("kind mismatch must stay a warning, errors = %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a kind-mismatch warning")
	}
}

func TestCoerceRawRejectsNonArrayData(t *testing.T) {
	v := engine.NewValidator()
	payload := map[string]any{
		"title": "Broken",
		"data":  "not-an-array",
	}

	output, result := v.CoerceRaw(payload, &core.Classification{Kind: core.KindPieChart})
	if result.IsValid {
		t.Fatal("string data must invalidate the payload")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "data field must be an array") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v", result.Errors)
	}
	if output.Title != "Broken" {
		t.Fatalf("coercible fields must survive, title = %q", output.Title)
	}
}

func TestCoerceRawHappyPath(t *testing.T) {
	v := engine.NewValidator()
	payload := map[string]any{
		"visualization_kind": "bar_chart",
		"title":              "Quarterly Output",
		"data": []any{
			map[string]any{"label": "Q1", "value": 10.0},
			"bare-value",
		},
		"sublinks": []any{
			map[string]any{"label": "Drill down", "route": "/drill"},
		},
	}

	output, result := v.CoerceRaw(payload, &core.Classification{Kind: core.KindPieChart})
	if !result.IsValid {
		t.Fatalf("errors = %v", result.Errors)
	}
	if output.Kind != core.KindBarChart {
		t.Fatalf("kind = %q, payload kind must win", output.Kind)
	}
	if len(output.Data) != 2 {
		t.Fatalf("data = %v", output.Data)
	}
	if output.Data[1]["value"] != "bare-value" {
		t.Fatalf("scalar item not wrapped: %v", output.Data[1])
	}
	if len(output.Sublinks) != 1 || len(output.Sublinks[0].Context) == 0 {
		t.Fatalf("sublink context not backfilled: %v", output.Sublinks)
	}
}

func TestCoerceRawKeepsClassifiedKindOnUnknown(t *testing.T) {
	v := engine.NewValidator()
	payload := map[string]any{
		"visualization_kind": "hologram",
		"title":              "T",
	}

	output, result := v.CoerceRaw(payload, &core.Classification{Kind: core.KindLineChart})
	if output.Kind != core.KindLineChart {
		t.Fatalf("kind = %q, want classified kind", output.Kind)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected unknown-kind warning")
	}
}

func TestParseDashboardStripsFences(t *testing.T) {
	v := engine.NewValidator()
	text := "```json\n{\"title\": \"Fenced\", \"data\": [{\"label\": \"A\", \"value\": 1}]}\n```"

	output, err := v.ParseDashboard(text, &core.Classification{Kind: core.KindPieChart})
	if err != nil {
		t.Fatalf("ParseDashboard: %v", err)
	}
	if output.Title != "Fenced" {
		t.Fatalf("title = %q", output.Title)
	}
}

func TestParseDashboardRejectsGarbage(t *testing.T) {
	v := engine.NewValidator()
	if _, err := v.ParseDashboard("not json at all", &core.Classification{Kind: core.KindPieChart}); err == nil {
		t.Fatal("expected parse error")
	}
}
