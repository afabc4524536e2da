package core

import "unicode/utf8"

const (
	// MinTitleLength is the shortest acceptable dashboard title.
	MinTitleLength = 5
	// MaxTitleLength is the hard cap every title is clamped to.
	MaxTitleLength = 120
)

// DataPoint is one open record in a dashboard dataset. By convention it
// carries "label" and "value" keys, but generators may attach more.
type DataPoint = map[string]any

// Sublink is a drill-down link attached to a dashboard. Its Context map
// must never be empty; EnsureContext backfills minimal provenance when a
// generator omitted it.
type Sublink struct {
	Label   string            `json:"label"`
	Route   string            `json:"route"`
	Context map[string]string `json:"context"`
}

// EnsureContext guarantees a non-empty context map, synthesizing minimal
// provenance from the owning dashboard when needed.
func (s *Sublink) EnsureContext(kind VisualizationKind, title string) {
	if len(s.Context) > 0 {
		return
	}
	s.Context = map[string]string{
		"origin": title,
		"kind":   string(kind),
	}
}

// DashboardOutput is the single artifact the presentation layer consumes.
type DashboardOutput struct {
	Kind        VisualizationKind `json:"visualization_kind"`
	Title       string            `json:"title"`
	Data        []DataPoint       `json:"data"`
	Config      map[string]any    `json:"config,omitempty"`
	Sublinks    []Sublink         `json:"sublinks,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Citations   []Citation        `json:"citations,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	ImagePrompt string            `json:"image_prompt,omitempty"`
}

// ClampTitle enforces the title cap, truncating on a rune boundary with a
// trailing ellipsis.
func (d *DashboardOutput) ClampTitle() {
	if len(d.Title) <= MaxTitleLength {
		return
	}
	cut := MaxTitleLength - 3
	for cut > 0 && !utf8.RuneStart(d.Title[cut]) {
		cut--
	}
	d.Title = d.Title[:cut] + "..."
}

// ValidationResult reports the structural health of a dashboard output.
// Corrected, when non-nil, is a repaired copy the orchestrator should
// prefer; the validated input is never mutated.
type ValidationResult struct {
	IsValid     bool
	Errors      []string
	Warnings    []string
	Suggestions []string
	Corrected   *DashboardOutput
}
