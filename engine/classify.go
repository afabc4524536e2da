package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/rishicds/orinai-sub000/core"
	"github.com/rishicds/orinai-sub000/llm"
)

// classifierProvider is one link in the classification fallback chain.
// Providers are consulted in priority order; the first available one that
// succeeds wins.
type classifierProvider interface {
	name() string
	available() bool
	classify(ctx context.Context, query string) (*core.Classification, error)
}

// Classifier turns a free-text query into a Classification. The AI
// provider runs first when a completion client is configured; the keyword
// heuristic is always available and always succeeds, so classification as
// a whole cannot fail.
type Classifier struct {
	providers []classifierProvider
}

// NewClassifier builds the provider chain. A nil client leaves only the
// deterministic heuristic.
func NewClassifier(client llm.Client) *Classifier {
	var providers []classifierProvider
	if client != nil {
		providers = append(providers, &aiClassifier{client: client})
	}
	providers = append(providers, &heuristicClassifier{})
	return &Classifier{providers: providers}
}

// Classify returns the classification and the name of the provider that
// produced it.
func (c *Classifier) Classify(ctx context.Context, query string) (*core.Classification, string, error) {
	for _, p := range c.providers {
		if !p.available() {
			continue
		}
		result, err := p.classify(ctx, query)
		if err != nil {
			log.Printf("[CLASSIFY] %s provider failed, trying next: %v", p.name(), err)
			continue
		}
		return result, p.name(), nil
	}
	return nil, "", fmt.Errorf("no classification provider succeeded")
}

// aiClassifier asks the completion backend for a JSON classification
// constrained to the closed enum set.
type aiClassifier struct {
	client llm.Client
}

func (a *aiClassifier) name() string { return "ai" }

func (a *aiClassifier) available() bool { return a.client != nil }

const classifySystemPrompt = `You classify dashboard queries. Respond with a JSON object:
{
  "visualization_kind": one of "pie_chart", "bar_chart", "line_chart", "table", "text", "timeline", "comparison", "infographic",
  "complexity": one of "simple", "multi_chart", "dashboard",
  "requires_memory": true when the query refers to the user's own past conversations,
  "requires_external": true when the query needs knowledge beyond the query itself,
  "requires_image": true when the query asks for an image or illustration
}
Use exactly these field names and enum values.`

func (a *aiClassifier) classify(ctx context.Context, query string) (*core.Classification, error) {
	text, err := a.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: classifySystemPrompt},
		{Role: llm.RoleUser, Content: query},
	}, llm.Options{
		Intent:         "classify",
		ResponseFormat: llm.FormatJSON,
		Temperature:    0.1,
		MaxTokens:      256,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Kind             string `json:"visualization_kind"`
		Complexity       string `json:"complexity"`
		RequiresMemory   bool   `json:"requires_memory"`
		RequiresExternal bool   `json:"requires_external"`
		RequiresImage    bool   `json:"requires_image"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: classification JSON: %v", core.ErrSchemaViolation, err)
	}

	kind := core.VisualizationKind(payload.Kind)
	if !core.ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown visualization kind %q", core.ErrSchemaViolation, payload.Kind)
	}
	complexity := core.Complexity(payload.Complexity)
	if !core.ValidComplexity(complexity) {
		return nil, fmt.Errorf("%w: unknown complexity %q", core.ErrSchemaViolation, payload.Complexity)
	}

	return &core.Classification{
		Kind:             kind,
		Complexity:       complexity,
		RequiresMemory:   payload.RequiresMemory,
		RequiresExternal: payload.RequiresExternal,
		RequiresImage:    payload.RequiresImage,
	}, nil
}

// heuristicClassifier is the deterministic keyword fallback. Same input
// always yields the same output.
type heuristicClassifier struct{}

func (h *heuristicClassifier) name() string { return "heuristic" }

func (h *heuristicClassifier) available() bool { return true }

// kindKeywordGroups are scanned in priority order; the first group with a
// match decides the kind.
var kindKeywordGroups = []struct {
	kind     core.VisualizationKind
	keywords []string
}{
	{core.KindPieChart, []string{
		"share", "proportion", "percentage", "breakdown", "distribution", "composition", "split",
	}},
	{core.KindBarChart, []string{
		"compare", "comparison", "versus", " vs ", "difference between", "ranking", "top ",
	}},
	{core.KindLineChart, []string{
		"trend", "over time", "growth", "history of", "change in", "evolution", "forecast",
	}},
	{core.KindTimeline, []string{
		"timeline", "schedule", "roadmap", "milestones", "chronology", "sequence of events",
	}},
	{core.KindTable, []string{
		"table", "list of", "spreadsheet", "detailed data", "records of",
	}},
	{core.KindComparison, []string{
		"pros and cons", "side by side", "contrast", "trade-off",
	}},
	{core.KindInfographic, []string{
		"infographic", "explain", "how does", "guide to",
	}},
}

var memoryKeywords = []string{
	"my previous", "my recent", "my past", "my conversation", "my history",
	"we discussed", "last time", "i told you", "remember when", "earlier conversation",
	"topics i discuss",
}

var externalKeywords = []string{
	"latest", "current", "today", "this year", "news", "real-time",
	"recent developments", "up to date", "right now",
}

var imageKeywords = []string{
	"image", "picture", "photo", "diagram", "illustration", "drawing", "logo",
}

var dashboardComplexityKeywords = []string{"comprehensive", "complete", "dashboard", "full picture"}

func (h *heuristicClassifier) classify(ctx context.Context, query string) (*core.Classification, error) {
	lower := strings.ToLower(query)

	kind := core.KindText
	for _, group := range kindKeywordGroups {
		if containsAny(lower, group.keywords) {
			kind = group.kind
			break
		}
	}

	complexity := core.ComplexitySimple
	if len(query) > 120 || strings.Count(lower, " and ")+strings.Count(lower, ",") >= 2 {
		complexity = core.ComplexityMultiChart
	}
	if containsAny(lower, dashboardComplexityKeywords) {
		complexity = core.ComplexityDashboard
	}

	return &core.Classification{
		Kind:             kind,
		Complexity:       complexity,
		RequiresMemory:   containsAny(lower, memoryKeywords),
		RequiresExternal: containsAny(lower, externalKeywords),
		RequiresImage:    containsAny(lower, imageKeywords),
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
