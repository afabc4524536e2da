package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rishicds/orinai-sub000/core"
	"github.com/rishicds/orinai-sub000/engine"
	"github.com/rishicds/orinai-sub000/knowledge"
)

func TestSynthesizeCannedTopic(t *testing.T) {
	s := engine.NewSynthesizer(nil, nil, nil, nil)
	c := &core.Classification{Kind: core.KindPieChart}

	output, decisions, err := s.Synthesize(context.Background(),
		"Show me the market share breakdown of smartphone brands", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if output.Kind != core.KindPieChart {
		t.Fatalf("kind = %q", output.Kind)
	}
	if output.Title != "Global Smartphone Market Share" {
		t.Fatalf("title = %q", output.Title)
	}
	if len(output.Data) < 3 {
		t.Fatalf("data points = %d, want at least 3", len(output.Data))
	}
	if !strings.Contains(strings.Join(decisions, " "), "canned topic") {
		t.Fatalf("decisions = %v", decisions)
	}
	for _, link := range output.Sublinks {
		if len(link.Context) == 0 {
			t.Fatalf("sublink %q has empty context", link.Label)
		}
	}
}

func TestSynthesizeMockFallback(t *testing.T) {
	s := engine.NewSynthesizer(nil, nil, nil, nil)
	c := &core.Classification{Kind: core.KindBarChart}

	output, decisions, err := s.Synthesize(context.Background(),
		"compare quarterly widget output", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if output.Kind != core.KindBarChart {
		t.Fatalf("kind = %q", output.Kind)
	}
	if len(output.Data) < 3 {
		t.Fatalf("data points = %d", len(output.Data))
	}
	if len(output.Sublinks) != 2 {
		t.Fatalf("sublinks = %d, want 2", len(output.Sublinks))
	}
	for _, link := range output.Sublinks {
		if len(link.Context) == 0 {
			t.Fatalf("sublink %q has empty context", link.Label)
		}
	}
	if !strings.Contains(strings.Join(decisions, " "), "mock dataset") {
		t.Fatalf("decisions = %v", decisions)
	}
}

func TestSynthesizeChartFromAI(t *testing.T) {
	client := &fakeClient{response: `{
		"title": "Quarterly Widget Output",
		"data": [
			{"label": "Q1", "value": 10},
			{"label": "Q2", "value": 14},
			{"label": "Q3", "value": 9}
		],
		"summary": "Output peaked in Q2."
	}`}
	s := engine.NewSynthesizer(client, nil, nil, nil)
	c := &core.Classification{Kind: core.KindBarChart}

	output, decisions, err := s.Synthesize(context.Background(),
		"compare quarterly widget output", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if output.Title != "Quarterly Widget Output" {
		t.Fatalf("title = %q", output.Title)
	}
	if len(output.Data) != 3 {
		t.Fatalf("data points = %d", len(output.Data))
	}
	if !strings.Contains(strings.Join(decisions, " "), "via ai") {
		t.Fatalf("decisions = %v", decisions)
	}
}

func TestSynthesizeFallsBackWhenAIFails(t *testing.T) {
	client := &fakeClient{err: errors.New("api down")}
	s := engine.NewSynthesizer(client, nil, nil, nil)
	c := &core.Classification{Kind: core.KindLineChart}

	output, decisions, err := s.Synthesize(context.Background(),
		"growth of widget output", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if output == nil || len(output.Data) == 0 {
		t.Fatal("fallback produced no output")
	}

	joined := strings.Join(decisions, " | ")
	if !strings.Contains(joined, "ai synthesis failed") {
		t.Fatalf("decisions = %q", joined)
	}
	if !strings.Contains(joined, "mock dataset") {
		t.Fatalf("decisions = %q", joined)
	}
}

func TestSynthesizeTextualSegmentsSections(t *testing.T) {
	s := engine.NewSynthesizer(nil, []knowledge.Source{knowledge.NewStatic()}, nil, nil)
	c := &core.Classification{Kind: core.KindInfographic}

	output, _, err := s.Synthesize(context.Background(),
		"explain the smartphone technology landscape", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if output.Kind != core.KindInfographic {
		t.Fatalf("kind = %q", output.Kind)
	}
	if len(output.Data) == 0 {
		t.Fatal("no sections produced")
	}

	found := false
	for _, point := range output.Data {
		if point["label"] == "Technology Landscape" {
			found = true
			bullets, ok := point["bullets"].([]string)
			if !ok || len(bullets) == 0 {
				t.Fatalf("section has no bullets: %v", point)
			}
		}
	}
	if !found {
		t.Fatalf("expected Technology Landscape section, got %v", output.Data)
	}
	if output.Summary == "" {
		t.Fatal("summary missing")
	}
}

func TestSynthesizeTextualOverviewFallback(t *testing.T) {
	// A bundle with unstructured prose and no content sources produces the
	// single Overview section.
	s := engine.NewSynthesizer(nil, []knowledge.Source{}, nil, nil)
	c := &core.Classification{Kind: core.KindText}
	bundle := &core.ContextBundle{}
	bundle.AddChunk(core.Chunk{Text: "plain prose without any heading structure at all", Source: "test", Relevance: 0.5})

	output, decisions, err := s.Synthesize(context.Background(), "tell me something", bundle, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(output.Data) != 1 {
		t.Fatalf("sections = %d, want 1", len(output.Data))
	}
	if output.Data[0]["label"] != "Overview" {
		t.Fatalf("label = %v", output.Data[0]["label"])
	}
	if !strings.Contains(strings.Join(decisions, " "), "overview fallback") {
		t.Fatalf("decisions = %v", decisions)
	}
}

func TestSynthesizeClampsLongTitles(t *testing.T) {
	canned := []engine.CannedTopic{{
		Keywords: []string{"everything"},
		Build: func(query string) *core.DashboardOutput {
			return &core.DashboardOutput{
				Kind:  core.KindTable,
				Title: strings.Repeat("very long title ", 20),
				Data:  []core.DataPoint{{"label": "a", "value": 1}},
			}
		},
	}}
	s := engine.NewSynthesizer(nil, nil, canned, nil)
	c := &core.Classification{Kind: core.KindTable}

	output, _, err := s.Synthesize(context.Background(), "everything", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(output.Title) != core.MaxTitleLength {
		t.Fatalf("title length = %d, want %d", len(output.Title), core.MaxTitleLength)
	}
	if !strings.HasSuffix(output.Title, "...") {
		t.Fatalf("title = %q", output.Title)
	}
}

func TestSynthesizeSetsImagePrompt(t *testing.T) {
	s := engine.NewSynthesizer(nil, nil, nil, nil)
	c := &core.Classification{Kind: core.KindPieChart, RequiresImage: true}

	output, _, err := s.Synthesize(context.Background(),
		"breakdown of pizza toppings with a picture", &core.ContextBundle{}, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if output.ImagePrompt == "" {
		t.Fatal("image prompt missing")
	}
}

func TestSynthesizeCarriesBundleCitations(t *testing.T) {
	s := engine.NewSynthesizer(nil, nil, nil, nil)
	c := &core.Classification{Kind: core.KindBarChart}
	bundle := &core.ContextBundle{}
	bundle.AddCitation(core.Citation{Title: "Source", URL: "https://example.com"})

	output, _, err := s.Synthesize(context.Background(), "compare things", bundle, c)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(output.Citations) != 1 || output.Citations[0].URL != "https://example.com" {
		t.Fatalf("citations = %v", output.Citations)
	}
}
