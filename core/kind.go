package core

// VisualizationKind is the closed set of output shapes a dashboard may declare.
type VisualizationKind string

const (
	KindPieChart    VisualizationKind = "pie_chart"
	KindBarChart    VisualizationKind = "bar_chart"
	KindLineChart   VisualizationKind = "line_chart"
	KindTable       VisualizationKind = "table"
	KindText        VisualizationKind = "text"
	KindTimeline    VisualizationKind = "timeline"
	KindComparison  VisualizationKind = "comparison"
	KindInfographic VisualizationKind = "infographic"
)

// Kinds lists every valid visualization kind.
var Kinds = []VisualizationKind{
	KindPieChart,
	KindBarChart,
	KindLineChart,
	KindTable,
	KindText,
	KindTimeline,
	KindComparison,
	KindInfographic,
}

// ValidKind reports whether k is a member of the closed kind set.
func ValidKind(k VisualizationKind) bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsTextual reports whether the kind is rendered as narrative sections
// rather than a chart dataset.
func (k VisualizationKind) IsTextual() bool {
	switch k {
	case KindText, KindComparison, KindTimeline, KindInfographic:
		return true
	}
	return false
}

// Complexity grades how much output a query demands.
type Complexity string

const (
	ComplexitySimple     Complexity = "simple"
	ComplexityMultiChart Complexity = "multi_chart"
	ComplexityDashboard  Complexity = "dashboard"
)

// ValidComplexity reports whether c is a known complexity grade.
func ValidComplexity(c Complexity) bool {
	switch c {
	case ComplexitySimple, ComplexityMultiChart, ComplexityDashboard:
		return true
	}
	return false
}
