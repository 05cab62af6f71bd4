// Package agentic implements the agentic question-answering loop: a query is
// optionally decomposed into sub-queries, retrieval is fanned out and merged,
// a grounded answer is drafted, and a reflection stage issues follow-up
// retrievals until the answer is judged complete or the iteration budget is
// exhausted.
package agentic

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/pkg/telemetry"
	"github.com/sweetpotato0/docqa/rag/document"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator sequences planning, retrieval, synthesis, and reflection into
// a bounded refinement loop. It is a synchronous pipeline per query; separate
// queries may run concurrently as long as the Retriever and Generator are
// safe for concurrent use. All per-query state lives on the stack of Query.
type Orchestrator struct {
	cfg         *Config
	planner     *planner
	aggregator  *aggregator
	synthesizer *synthesizer
	reflector   *reflector
	retriever   Retriever
	logger      *slog.Logger
	tracer      trace.Tracer
}

// New creates an orchestrator over the given model and retrieval backends.
func New(gen llm.Generator, retriever Retriever, opts ...Option) (*Orchestrator, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}

	cfg := applyOptions(nil, opts)
	logger := logging.WithComponent("agentic").With("pipeline", cfg.Name)

	return &Orchestrator{
		cfg:         cfg,
		planner:     newPlanner(gen, cfg, logger),
		aggregator:  newAggregator(retriever, logger),
		synthesizer: newSynthesizer(gen, cfg, logger),
		reflector:   newReflector(gen, cfg, logger),
		retriever:   retriever,
		logger:      logger,
		tracer:      otel.Tracer("docqa/agentic"),
	}, nil
}

// Query runs the full loop for one question and returns the assembled result.
// Only two failures are fatal: a cancelled context and a primary-query
// retrieval fault. Everything else is absorbed into degraded result data.
func (o *Orchestrator) Query(ctx context.Context, query string) (result *Result, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	ctx, span := o.tracer.Start(ctx, "agentic.query")
	defer func() { telemetry.End(span, err) }()

	k := o.cfg.FanOut
	o.progress("planning query", "query", trimForLog(query, 120))

	// PLANNING: never fails, worst case is a non-decomposed plan.
	plan := o.planner.Plan(ctx, query)
	queries := []string{query}
	if plan.NeedsDecomposition && len(plan.SubQueries) > 0 {
		queries = plan.SubQueries
		o.progress("query decomposed", "sub_queries", len(queries))
	}

	// RETRIEVING: the primary retrieval is the one stage allowed to abort
	// the query, since nothing can be answered without it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	merged, err := o.aggregator.Aggregate(ctx, queries, k)
	if err != nil {
		return nil, fmt.Errorf("primary retrieval: %w", err)
	}
	state := newQueryState(2 * k)
	state.merge(merged)
	o.progress("passages retrieved", "count", len(state.passages))

	// GENERATING: iteration 0.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer := o.synthesizer.Synthesize(ctx, query, state.passages, 0)
	iterations := []IterationRecord{{
		Iteration:     0,
		DocsRetrieved: len(state.passages),
		Answer:        answer,
	}}

	// REFLECTING loop: bounded by MaxIterations regardless of what the
	// reflector asks for.
	for iteration := 1; iteration < o.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		o.progress("reflecting on answer", "iteration", iteration)
		assessment := o.reflector.Assess(ctx, query, answer, state.passages)
		if !assessment.NeedsRefinement {
			o.progress("answer judged complete", "confidence", assessment.Confidence)
			break
		}
		refinement := strings.TrimSpace(assessment.RefinementQuery)
		if refinement == "" {
			// Inconsistent signal: refinement requested without a query.
			o.progress("refinement requested without a query, stopping")
			break
		}

		// RETRIEVING (refinement): half the primary fan-out. A failed
		// refinement search is absorbed; keeping the status-quo answer
		// beats aborting the query this late.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.progress("refining search", "query", trimForLog(refinement, 120))
		extra, err := o.retriever.Search(ctx, refinement, k/2)
		if err != nil {
			o.logger.Warn("refinement search failed, continuing with current context", "error", err)
			extra = nil
		}
		added := state.merge(extra)

		// GENERATING (refinement): regenerate over the updated context.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answer = o.synthesizer.Synthesize(ctx, query, state.passages, iteration)
		iterations = append(iterations, IterationRecord{
			Iteration:       iteration,
			DocsRetrieved:   len(state.passages),
			RefinementQuery: refinement,
			Answer:          answer,
		})
		o.progress("answer refined", "iteration", iteration, "new_passages", added)
	}

	span.SetAttributes(
		attribute.Int("docqa.iterations", len(iterations)),
		attribute.Int("docqa.passages", len(state.passages)),
		attribute.Bool("docqa.decomposed", plan.NeedsDecomposition),
	)

	return &Result{
		Answer:        answer,
		Sources:       state.sourceList(),
		Passages:      state.passages,
		Iterations:    iterations,
		Plan:          plan,
		TotalDocsUsed: len(state.passages),
	}, nil
}

// progress logs intermediate steps. Verbose only moves them between debug and
// info; it never changes behaviour.
func (o *Orchestrator) progress(msg string, args ...any) {
	if o.cfg.Verbose {
		o.logger.Info(msg, args...)
	} else {
		o.logger.Debug(msg, args...)
	}
}

// queryState is the running aggregated context of a single query: unique
// passages in insertion order plus the set of source ids seen. It is owned
// exclusively by one Query call.
type queryState struct {
	passages []document.Passage
	seen     map[string]struct{}
	sources  map[string]struct{}
	limit    int
}

func newQueryState(limit int) *queryState {
	return &queryState{
		seen:    make(map[string]struct{}),
		sources: make(map[string]struct{}),
		limit:   limit,
	}
}

// merge appends passages whose text has not been seen yet, first occurrence
// wins, stopping at the context cap. It reports how many were added.
func (s *queryState) merge(passages []document.Passage) int {
	added := 0
	for _, passage := range passages {
		if s.limit > 0 && len(s.passages) >= s.limit {
			break
		}
		if _, ok := s.seen[passage.Text]; ok {
			continue
		}
		s.seen[passage.Text] = struct{}{}
		if passage.Source != "" {
			s.sources[passage.Source] = struct{}{}
		}
		s.passages = append(s.passages, passage)
		added++
	}
	return added
}

func (s *queryState) sourceList() []string {
	out := make([]string, 0, len(s.sources))
	for source := range s.sources {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

func trimForLog(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
