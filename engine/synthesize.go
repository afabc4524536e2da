package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/rishicds/orinai-sub000/core"
	"github.com/rishicds/orinai-sub000/knowledge"
	"github.com/rishicds/orinai-sub000/llm"
)

// CannedTopic pairs a query pattern with a hand-authored dashboard. The
// synthesizer consults the table before resorting to the generic mock
// fallback, so demo-grade answers survive a dead AI backend.
type CannedTopic struct {
	// Keywords must all appear in the lowercased query.
	Keywords []string

	// Build produces the canned output for a matching query.
	Build func(query string) *core.DashboardOutput
}

// Synthesizer turns a classified query plus its context bundle into a
// draft dashboard output. Chart kinds go through the AI backend with a
// mock-dataset fallback; textual kinds aggregate prose from the content
// sources without any AI call.
type Synthesizer struct {
	client    llm.Client
	sources   []knowledge.Source
	canned    []CannedTopic
	validator *Validator
}

// NewSynthesizer creates a synthesizer. A nil client disables the AI
// path; nil canned topics fall back to the built-in table.
func NewSynthesizer(client llm.Client, sources []knowledge.Source, canned []CannedTopic, validator *Validator) *Synthesizer {
	if canned == nil {
		canned = DefaultCannedTopics
	}
	if validator == nil {
		validator = NewValidator()
	}
	return &Synthesizer{
		client:    client,
		sources:   sources,
		canned:    canned,
		validator: validator,
	}
}

// Synthesize produces the unvalidated draft output and the decisions the
// stage took along the way.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, bundle *core.ContextBundle, c *core.Classification) (*core.DashboardOutput, []string, error) {
	if c.Kind.IsTextual() {
		return s.synthesizeTextual(ctx, query, bundle, c)
	}
	return s.synthesizeChart(ctx, query, bundle, c)
}

// synthesizeChart drives the AI → canned → mock fallback chain.
func (s *Synthesizer) synthesizeChart(ctx context.Context, query string, bundle *core.ContextBundle, c *core.Classification) (*core.DashboardOutput, []string, error) {
	var decisions []string

	if s.client != nil {
		output, err := s.chartFromAI(ctx, query, bundle, c)
		if err == nil {
			decisions = append(decisions, "synthesis via ai")
			s.finish(output, query, bundle, c)
			return output, decisions, nil
		}
		log.Printf("[SYNTH] ai synthesis failed, falling back: %v", err)
		decisions = append(decisions, "ai synthesis failed")
	}

	if output := s.lookupCanned(query); output != nil {
		decisions = append(decisions, "synthesis via canned topic")
		s.finish(output, query, bundle, c)
		return output, decisions, nil
	}

	output := mockDashboard(c.Kind, query)
	decisions = append(decisions, "synthesis via mock dataset")
	s.finish(output, query, bundle, c)
	return output, decisions, nil
}

const synthesizeSystemPrompt = `You generate dashboard datasets. Respond with a JSON object:
{
  "title": short dashboard title,
  "data": array of objects, each with "label" and "value" keys,
  "summary": one or two sentences,
  "sublinks": array of {"label", "route", "context"} drill-down links (optional)
}
The data must fit the requested visualization kind.`

func (s *Synthesizer) chartFromAI(ctx context.Context, query string, bundle *core.ContextBundle, c *core.Classification) (*core.DashboardOutput, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Visualization kind: %s\nQuery: %s\n", c.Kind, query)
	if !bundle.Empty() {
		b.WriteString("\nContext:\n")
		for i, chunk := range bundle.Chunks {
			if i == 6 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", excerpt(chunk.Text, 300))
		}
	}

	text, err := s.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: synthesizeSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}, llm.Options{
		Intent:         "synthesize",
		ResponseFormat: llm.FormatJSON,
		Temperature:    0.4,
	})
	if err != nil {
		return nil, err
	}

	return s.validator.ParseDashboard(text, c)
}

// synthesizeTextual aggregates prose from the content sources, segments
// it by heading-like lines, and extracts bullet lists. No AI call.
func (s *Synthesizer) synthesizeTextual(ctx context.Context, query string, bundle *core.ContextBundle, c *core.Classification) (*core.DashboardOutput, []string, error) {
	var decisions []string

	if output := s.lookupCanned(query); output != nil {
		decisions = append(decisions, "synthesis via canned topic")
		s.finish(output, query, bundle, c)
		return output, decisions, nil
	}

	var prose []string
	for _, chunk := range bundle.Chunks {
		prose = append(prose, chunk.Text)
	}
	for _, src := range s.sources {
		result, err := src.Lookup(ctx, query)
		if err != nil {
			log.Printf("[SYNTH] content source failed, skipping: %v", err)
			continue
		}
		for _, chunk := range result.Chunks {
			prose = append(prose, chunk.Text)
		}
	}
	merged := strings.TrimSpace(strings.Join(prose, "\n\n"))

	sections := segmentSections(merged)
	if len(sections) == 0 {
		sections = []section{{heading: "Overview", body: excerpt(merged, 400)}}
		decisions = append(decisions, "no structure detected; overview fallback")
	} else {
		decisions = append(decisions, fmt.Sprintf("textual synthesis produced %d sections", len(sections)))
	}

	output := &core.DashboardOutput{
		Kind:    c.Kind,
		Title:   capitalizeQuery(query),
		Summary: summarize(merged),
	}
	for _, sec := range sections {
		point := core.DataPoint{"label": sec.heading, "value": sec.body}
		if len(sec.bullets) > 0 {
			point["bullets"] = sec.bullets
		}
		output.Data = append(output.Data, point)
	}

	s.finish(output, query, bundle, c)
	return output, decisions, nil
}

// lookupCanned scans the topic table in order; every keyword of an entry
// must appear in the lowercased query.
func (s *Synthesizer) lookupCanned(query string) *core.DashboardOutput {
	lower := strings.ToLower(query)
	for _, topic := range s.canned {
		matched := len(topic.Keywords) > 0
		for _, kw := range topic.Keywords {
			if !strings.Contains(lower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return topic.Build(query)
		}
	}
	return nil
}

// finish applies the invariants every draft must satisfy before leaving
// the stage: a title, the title cap, non-empty sublink contexts, bundle
// citations, and the image prompt when the query asked for one.
func (s *Synthesizer) finish(output *core.DashboardOutput, query string, bundle *core.ContextBundle, c *core.Classification) {
	if strings.TrimSpace(output.Title) == "" {
		output.Title = capitalizeQuery(query)
	}
	output.ClampTitle()

	for i := range output.Sublinks {
		output.Sublinks[i].EnsureContext(output.Kind, output.Title)
	}

	if bundle != nil && len(output.Citations) == 0 {
		output.Citations = append(output.Citations, bundle.Citations...)
	}

	if c.RequiresImage && output.ImagePrompt == "" {
		output.ImagePrompt = "Illustration for: " + query
	}
}

// mockDashboard is the per-kind fallback dataset used when both the AI
// path and the canned table come up empty.
func mockDashboard(kind core.VisualizationKind, query string) *core.DashboardOutput {
	output := &core.DashboardOutput{
		Kind:    kind,
		Title:   capitalizeQuery(query),
		Summary: "Live synthesis was unavailable; this dataset is a generated placeholder.",
	}

	switch kind {
	case core.KindPieChart:
		output.Data = points("Segment A", 34, "Segment B", 27, "Segment C", 18, "Segment D", 12, "Segment E", 9)
	case core.KindLineChart:
		output.Data = points("Jan", 12, "Feb", 19, "Mar", 23, "Apr", 31, "May", 28, "Jun", 36)
	case core.KindTable:
		output.Data = []core.DataPoint{
			{"label": "Row 1", "value": 120, "detail": "placeholder"},
			{"label": "Row 2", "value": 87, "detail": "placeholder"},
			{"label": "Row 3", "value": 64, "detail": "placeholder"},
		}
	default:
		output.Data = points("Category A", 42, "Category B", 37, "Category C", 29, "Category D", 21, "Category E", 14)
	}

	output.Sublinks = []core.Sublink{
		{
			Label:   "View details",
			Route:   "/dashboard/details",
			Context: map[string]string{"source": "fallback", "kind": string(kind)},
		},
		{
			Label:   "Refine query",
			Route:   "/dashboard/refine",
			Context: map[string]string{"source": "fallback", "query": excerpt(query, 80)},
		},
	}
	return output
}

func points(pairs ...any) []core.DataPoint {
	var data []core.DataPoint
	for i := 0; i+1 < len(pairs); i += 2 {
		data = append(data, core.DataPoint{"label": pairs[i], "value": pairs[i+1]})
	}
	return data
}

// DefaultCannedTopics is the built-in demo table. Hosts replace or extend
// it through NewSynthesizer.
var DefaultCannedTopics = []CannedTopic{
	{
		Keywords: []string{"market share", "smartphone"},
		Build: func(query string) *core.DashboardOutput {
			return &core.DashboardOutput{
				Kind:  core.KindPieChart,
				Title: "Global Smartphone Market Share",
				Data: points(
					"Apple", 28.4,
					"Samsung", 23.1,
					"Xiaomi", 12.7,
					"Oppo", 8.9,
					"Vivo", 7.4,
					"Others", 19.5,
				),
				Summary: "Apple and Samsung together hold just over half of global smartphone shipments, " +
					"with Chinese brands splitting most of the remainder.",
				Sublinks: []core.Sublink{
					{
						Label:   "Brand trends over time",
						Route:   "/dashboard/smartphone-trends",
						Context: map[string]string{"topic": "smartphone market", "kind": "line_chart"},
					},
					{
						Label:   "Regional breakdown",
						Route:   "/dashboard/smartphone-regions",
						Context: map[string]string{"topic": "smartphone market", "kind": "table"},
					},
				},
			}
		},
	},
}

// section is one segmented block of aggregated prose.
type section struct {
	heading string
	body    string
	bullets []string
}

// segmentSections splits merged prose on heading-like lines: markdown
// headings or short lines ending in a colon. Returns nil when no heading
// structure is present so the caller can apply the Overview fallback.
func segmentSections(text string) []section {
	if text == "" {
		return nil
	}

	var sections []*section
	var current *section

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if heading, ok := headingText(trimmed); ok {
			current = &section{heading: heading}
			sections = append(sections, current)
			continue
		}
		if current == nil {
			// Prose before any heading; without structure it belongs to
			// the Overview fallback, not a section of its own.
			continue
		}

		if bullet, ok := bulletText(trimmed); ok {
			current.bullets = append(current.bullets, bullet)
			continue
		}

		if current.body != "" {
			current.body += " "
		}
		current.body += trimmed
	}

	if len(sections) == 0 {
		return nil
	}
	out := make([]section, len(sections))
	for i, s := range sections {
		out[i] = *s
	}
	return out
}

func headingText(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return strings.TrimSpace(strings.TrimLeft(line, "# ")), true
	}
	if strings.HasSuffix(line, ":") && len(line) < 60 && !strings.Contains(line, ". ") {
		return strings.TrimSuffix(line, ":"), true
	}
	return "", false
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}

// summarize returns the first paragraph, or the first 200 characters when
// the text has no paragraph break that early.
func summarize(text string) string {
	if text == "" {
		return ""
	}
	paragraph := text
	if idx := strings.Index(text, "\n\n"); idx > 0 {
		paragraph = text[:idx]
	}
	paragraph = strings.TrimSpace(paragraph)
	if len(paragraph) > 200 {
		return excerpt(paragraph, 200)
	}
	return paragraph
}

// capitalizeQuery turns the raw query into a presentable title.
func capitalizeQuery(query string) string {
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), "?"))
	if query == "" {
		return "Dashboard"
	}
	runes := []rune(query)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
