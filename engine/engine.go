// Package engine drives the dashboard pipeline: classification, retrieval,
// synthesis and validation run in a fixed order, ending in the completed or
// error state.
//
// Stages never retry. An external-call failure immediately triggers the
// stage's documented fallback.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rishicds/orinai-sub000/core"
	"github.com/rishicds/orinai-sub000/knowledge"
	"github.com/rishicds/orinai-sub000/llm"
	"github.com/rishicds/orinai-sub000/memory"
)

// Engine is the pipeline orchestrator. One Engine serves many concurrent
// runs; each run owns its own ExecutionState and the phases within a run
// are strictly sequential.
type Engine struct {
	client   llm.Client
	memory   *memory.Manager
	external knowledge.Source
	sources  []knowledge.Source
	canned   []CannedTopic
	retrCfg  *RetrieverConfig

	classifier  *Classifier
	retriever   *Retriever
	synthesizer *Synthesizer
	validator   *Validator
}

// Option configures the engine.
type Option func(*Engine)

// WithLLM sets the chat-completion backend for the AI paths. Without it
// every stage runs on its deterministic fallback.
func WithLLM(client llm.Client) Option {
	return func(e *Engine) {
		e.client = client
	}
}

// WithMemory sets the user-memory manager.
func WithMemory(m *memory.Manager) Option {
	return func(e *Engine) {
		e.memory = m
	}
}

// WithKnowledge sets the external-knowledge source consulted by retrieval.
func WithKnowledge(source knowledge.Source) Option {
	return func(e *Engine) {
		e.external = source
	}
}

// WithContentSources sets the prose backends aggregated for textual kinds.
func WithContentSources(sources ...knowledge.Source) Option {
	return func(e *Engine) {
		e.sources = sources
	}
}

// WithCannedTopics replaces the built-in canned-topic table.
func WithCannedTopics(topics []CannedTopic) Option {
	return func(e *Engine) {
		e.canned = topics
	}
}

// WithRetrieverConfig overrides the retrieval tuning.
func WithRetrieverConfig(cfg *RetrieverConfig) Option {
	return func(e *Engine) {
		e.retrCfg = cfg
	}
}

// New assembles an engine. All collaborators are optional: a bare
// New() still produces valid dashboards through the fallback chain.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.external == nil {
		e.external = knowledge.NewStatic()
	}
	if e.sources == nil {
		e.sources = []knowledge.Source{e.external}
	}

	e.validator = NewValidator()
	e.classifier = NewClassifier(e.client)
	e.retriever = NewRetriever(e.memory, e.external, e.retrCfg)
	e.synthesizer = NewSynthesizer(e.client, e.sources, e.canned, e.validator)
	return e
}

// Run executes the pipeline and returns the validated dashboard output.
// It fails only on PipelineFatal conditions; memory and validation
// problems never surface here.
func (e *Engine) Run(ctx context.Context, query, userID string) (*core.DashboardOutput, error) {
	output, _, err := e.run(ctx, query, userID)
	return output, err
}

// RunWithMonitoring executes the pipeline and additionally returns the
// run summary: per-phase timings and the decisions each phase recorded.
func (e *Engine) RunWithMonitoring(ctx context.Context, query, userID string) (*core.DashboardOutput, *core.RunSummary, error) {
	return e.run(ctx, query, userID)
}

func (e *Engine) run(ctx context.Context, query, userID string) (*core.DashboardOutput, *core.RunSummary, error) {
	state := core.NewExecutionState(query, userID)
	log.Printf("[ENGINE] run started (user=%s, query=%q)", userID, excerpt(query, 60))

	// === CLASSIFICATION ===
	start := time.Now()
	classification, provider, err := e.classifier.Classify(ctx, query)
	state.Metadata.Durations[core.PhaseClassification] = time.Since(start).Milliseconds()
	if err != nil {
		return e.fail(state, core.PhaseClassification, err)
	}
	state.Classification = classification
	state.Decide("classification via " + provider)
	state.Decide(fmt.Sprintf("kind=%s complexity=%s memory=%t external=%t",
		classification.Kind, classification.Complexity,
		classification.RequiresMemory, classification.RequiresExternal))

	// === RETRIEVAL ===
	state.Phase = core.PhaseRetrieval
	if !classification.RequiresMemory && !classification.RequiresExternal {
		state.Context = &core.ContextBundle{}
		state.Metadata.Durations[core.PhaseRetrieval] = 0
		state.Decide("retrieval skipped: classification requires no context")
	} else {
		start = time.Now()
		bundle, decisions, err := e.retriever.Retrieve(ctx, query, userID, classification)
		state.Metadata.Durations[core.PhaseRetrieval] = time.Since(start).Milliseconds()
		if err != nil {
			return e.fail(state, core.PhaseRetrieval, err)
		}
		state.Context = bundle
		for _, d := range decisions {
			state.Decide(d)
		}
	}

	// === SYNTHESIS ===
	state.Phase = core.PhaseSynthesis
	start = time.Now()
	output, decisions, err := e.synthesizer.Synthesize(ctx, query, state.Context, classification)
	state.Metadata.Durations[core.PhaseSynthesis] = time.Since(start).Milliseconds()
	if err != nil {
		return e.fail(state, core.PhaseSynthesis, err)
	}
	state.Output = output
	for _, d := range decisions {
		state.Decide(d)
	}

	// === VALIDATION (advisory, never fatal) ===
	state.Phase = core.PhaseValidation
	start = time.Now()
	e.validate(state)
	state.Metadata.Durations[core.PhaseValidation] = time.Since(start).Milliseconds()

	state.Phase = core.PhaseCompleted
	log.Printf("[ENGINE] run completed in %dms", time.Since(state.Metadata.StartTime).Milliseconds())
	return state.Output, state.Summary(), nil
}

// validate runs the validation stage and absorbs any failure inside it.
// The pipeline still completes with the last synthesized output when
// validation misbehaves.
func (e *Engine) validate(state *core.ExecutionState) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ENGINE] validation panicked, absorbed: %v", r)
			state.Decide("validation failed internally; output passed through unvalidated")
		}
	}()

	result := e.validator.Validate(state.Output, state.Classification)
	state.Validation = result

	if result.Corrected != nil {
		state.Output = result.Corrected
		state.Decide("validation auto-correction applied")
	}
	if !result.IsValid {
		state.Decide(fmt.Sprintf("validation reported %d errors (advisory)", len(result.Errors)))
	}
	for _, w := range result.Warnings {
		log.Printf("[ENGINE] validation warning: %s", w)
	}
}

// fail transitions the run to the error state and wraps the cause with
// the metadata accumulated so far.
func (e *Engine) fail(state *core.ExecutionState, phase core.Phase, err error) (*core.DashboardOutput, *core.RunSummary, error) {
	state.Phase = core.PhaseError
	state.Err = err
	summary := state.Summary()
	log.Printf("[ENGINE] run failed in %s phase: %v", phase, err)
	return nil, summary, &core.PipelineError{Phase: phase, Summary: summary, Err: err}
}

// RecordInteraction persists one conversational exchange to user memory.
// It is fire-and-forget: failures are logged locally and never surfaced,
// because the user-visible response has already been returned.
func (e *Engine) RecordInteraction(ctx context.Context, userID, userText, assistantText, sessionID, topicLabel string) {
	if e.memory == nil || !e.memory.Available() {
		return
	}
	if err := e.memory.RecordConversation(ctx, userID, userText, assistantText, sessionID, topicLabel); err != nil {
		log.Printf("[ENGINE] record interaction failed (ignored): %v", err)
	}
}
