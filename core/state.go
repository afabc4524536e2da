package core

import "time"

// Phase names one state of the pipeline state machine.
type Phase string

const (
	PhaseClassification Phase = "classification"
	PhaseRetrieval      Phase = "retrieval"
	PhaseSynthesis      Phase = "synthesis"
	PhaseValidation     Phase = "validation"
	PhaseCompleted      Phase = "completed"
	PhaseError          Phase = "error"
)

// ExecutionState is the per-run working set. It is owned by exactly one
// run, mutated phase by phase, and discarded after the caller reads the
// terminal result. Nothing in it is shared across runs.
type ExecutionState struct {
	Phase          Phase
	Query          Query
	Classification *Classification
	Context        *ContextBundle
	Output         *DashboardOutput
	Validation     *ValidationResult
	Err            error
	Metadata       RunMetadata
}

// RunMetadata accumulates observability data across phases.
type RunMetadata struct {
	StartTime time.Time
	Durations map[Phase]int64 // per-phase wall time, milliseconds
	Decisions []string
}

// NewExecutionState starts a run in the classification phase.
func NewExecutionState(query, userID string) *ExecutionState {
	return &ExecutionState{
		Phase: PhaseClassification,
		Query: Query{Text: query, UserID: userID},
		Metadata: RunMetadata{
			StartTime: time.Now(),
			Durations: make(map[Phase]int64),
		},
	}
}

// Decide records a phase-level decision for observability.
func (s *ExecutionState) Decide(decision string) {
	s.Metadata.Decisions = append(s.Metadata.Decisions, decision)
}

// Summary snapshots timings and decisions for the monitoring entry point.
func (s *ExecutionState) Summary() *RunSummary {
	durations := make(map[Phase]int64, len(s.Metadata.Durations))
	for k, v := range s.Metadata.Durations {
		durations[k] = v
	}
	decisions := make([]string, len(s.Metadata.Decisions))
	copy(decisions, s.Metadata.Decisions)
	return &RunSummary{
		Phase:     s.Phase,
		StartTime: s.Metadata.StartTime,
		TotalMs:   time.Since(s.Metadata.StartTime).Milliseconds(),
		PhaseMs:   durations,
		Decisions: decisions,
	}
}

// RunSummary is the caller-visible observability record: phase timings
// plus the decisions each phase logged.
type RunSummary struct {
	Phase     Phase
	StartTime time.Time
	TotalMs   int64
	PhaseMs   map[Phase]int64
	Decisions []string
}
