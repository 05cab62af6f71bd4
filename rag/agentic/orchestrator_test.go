package agentic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sweetpotato0/docqa/rag/document"
)

func passages(items ...document.Passage) []document.Passage {
	return items
}

func TestQuerySingleIteration(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse:     `{"needs_decomposition": false, "reasoning": "single intent", "sub_queries": []}`,
		synthResponses:   []string{"grounded answer"},
		reflectResponses: []string{completeAssessment},
	}
	ret := &stubRetriever{
		fallback: passages(
			passage("alpha text", "a.txt", 0, 0.9),
			passage("beta text", "b.txt", 0, 0.8),
			passage("gamma text", "c.txt", 1, 0.7),
		),
	}

	orch, err := New(gen, ret, WithFanOut(3), WithMaxIterations(3))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "what is alpha?")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}

	if result.Answer != "grounded answer" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
	if len(result.Iterations) != 1 {
		t.Fatalf("expected 1 iteration, got %d", len(result.Iterations))
	}
	if result.Iterations[0].Iteration != 0 {
		t.Fatalf("expected iteration 0 first, got %d", result.Iterations[0].Iteration)
	}
	if result.TotalDocsUsed != 3 {
		t.Fatalf("expected 3 docs used, got %d", result.TotalDocsUsed)
	}
	if len(result.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %v", result.Sources)
	}
	if result.Plan.NeedsDecomposition {
		t.Fatalf("expected non-decomposed plan")
	}
	calls := ret.searchCalls()
	if len(calls) != 1 || calls[0].query != "what is alpha?" || calls[0].k != 3 {
		t.Fatalf("unexpected search calls %v", calls)
	}
}

func TestQueryDecompositionMergesAndDeduplicates(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse:     `{"needs_decomposition": true, "reasoning": "comparative", "sub_queries": ["first part", "second part"]}`,
		reflectResponses: []string{completeAssessment},
	}
	shared := passage("shared text", "shared.txt", 0, 0.5)
	ret := &stubRetriever{
		byQuery: map[string][]document.Passage{
			"first part": passages(
				passage("one", "a.txt", 0, 0.9),
				passage("two", "a.txt", 1, 0.8),
				shared,
			),
			"second part": passages(
				passage("three", "b.txt", 0, 0.9),
				shared,
				passage("four", "b.txt", 2, 0.6),
			),
		},
	}

	orch, err := New(gen, ret, WithFanOut(3))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "compare first and second")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}

	if len(result.Passages) != 5 {
		t.Fatalf("expected 5 unique passages, got %d", len(result.Passages))
	}
	// issue order, then rank order; duplicate keeps its first position
	order := []string{"one", "two", "shared text", "three", "four"}
	for i, want := range order {
		if result.Passages[i].Text != want {
			t.Fatalf("position %d: want %q, got %q", i, want, result.Passages[i].Text)
		}
	}
	calls := ret.searchCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(calls))
	}
}

func TestQueryIterationBudget(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse: `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
		reflectResponses: []string{
			refineAssessment("more detail one"),
			refineAssessment("more detail two"),
			refineAssessment("never reached"),
		},
	}
	ret := &stubRetriever{
		byQuery: map[string][]document.Passage{
			"budget question": passages(passage("base", "base.txt", 0, 0.9)),
			"more detail one": passages(passage("extra one", "x.txt", 0, 0.5)),
			"more detail two": passages(passage("extra two", "y.txt", 0, 0.5)),
		},
	}

	orch, err := New(gen, ret, WithFanOut(4), WithMaxIterations(3))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "budget question")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}

	if len(result.Iterations) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(result.Iterations))
	}
	for i, record := range result.Iterations {
		if record.Iteration != i {
			t.Fatalf("iteration %d has number %d", i, record.Iteration)
		}
	}
	if result.Iterations[1].RefinementQuery != "more detail one" {
		t.Fatalf("unexpected refinement query %q", result.Iterations[1].RefinementQuery)
	}
	if gen.reflectCalls != 2 {
		t.Fatalf("expected 2 reflections, got %d", gen.reflectCalls)
	}

	// refinement searches run at half the primary fan-out
	calls := ret.searchCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 searches, got %d", len(calls))
	}
	if calls[0].k != 4 || calls[1].k != 2 || calls[2].k != 2 {
		t.Fatalf("unexpected fan-outs: %v", calls)
	}

	// sources from refinement passes are accounted for
	want := map[string]bool{"base.txt": true, "x.txt": true, "y.txt": true}
	if len(result.Sources) != len(want) {
		t.Fatalf("unexpected sources %v", result.Sources)
	}
	for _, source := range result.Sources {
		if !want[source] {
			t.Fatalf("unexpected source %q", source)
		}
	}
}

func TestQueryEmptyRetrievalStillAnswers(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse:     `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
		synthResponses:   []string{"The documents do not contain this information."},
		reflectResponses: []string{completeAssessment},
	}
	ret := &stubRetriever{}

	orch, err := New(gen, ret)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "unknown topic")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if result.Answer == "" {
		t.Fatalf("expected non-empty answer")
	}
	if len(result.Sources) != 0 {
		t.Fatalf("expected no sources, got %v", result.Sources)
	}
	if result.TotalDocsUsed != 0 {
		t.Fatalf("expected 0 docs used, got %d", result.TotalDocsUsed)
	}
}

func TestQueryPlannerFailureFallsBackToOriginalQuery(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planErr:          errors.New("model unavailable"),
		reflectResponses: []string{completeAssessment},
	}
	ret := &stubRetriever{
		fallback: passages(passage("text", "doc.txt", 0, 0.9)),
	}

	orch, err := New(gen, ret)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "original question")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if result.Plan.NeedsDecomposition {
		t.Fatalf("expected fallback plan without decomposition")
	}
	if len(result.Plan.SubQueries) != 0 {
		t.Fatalf("expected empty sub-queries, got %v", result.Plan.SubQueries)
	}
	if !strings.Contains(result.Plan.Reasoning, "Planning failed") {
		t.Fatalf("expected failure reasoning, got %q", result.Plan.Reasoning)
	}
	calls := ret.searchCalls()
	if len(calls) != 1 || calls[0].query != "original question" {
		t.Fatalf("expected single search with original query, got %v", calls)
	}
}

func TestQueryEmptyRefinementQueryStopsLoop(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse: `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
		reflectResponses: []string{
			`{"is_complete": false, "confidence": "low", "missing_aspects": ["x"], "needs_refinement": true, "refinement_query": ""}`,
		},
	}
	ret := &stubRetriever{
		fallback: passages(passage("text", "doc.txt", 0, 0.9)),
	}

	orch, err := New(gen, ret, WithMaxIterations(5))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "question")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(result.Iterations) != 1 {
		t.Fatalf("expected loop to stop after iteration 0, got %d records", len(result.Iterations))
	}
	if len(ret.searchCalls()) != 1 {
		t.Fatalf("expected no refinement search")
	}
}

func TestQueryRefinementSearchFailureIsAbsorbed(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse: `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
		reflectResponses: []string{
			refineAssessment("deeper detail"),
			completeAssessment,
		},
	}
	ret := &failAfterFirstRetriever{
		first: passages(passage("text", "doc.txt", 0, 0.9)),
	}

	orch, err := New(gen, ret, WithMaxIterations(3))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := orch.Query(ctx, "question")
	if err != nil {
		t.Fatalf("expected refinement failure to be absorbed, got %v", err)
	}
	if len(result.Iterations) != 2 {
		t.Fatalf("expected 2 iterations, got %d", len(result.Iterations))
	}
	if result.TotalDocsUsed != 1 {
		t.Fatalf("expected context unchanged, got %d docs", result.TotalDocsUsed)
	}
}

func TestQueryPrimaryRetrievalFailureIsFatal(t *testing.T) {
	ctx := context.Background()

	gen := &stubGenerator{
		planResponse: `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
	}
	ret := &stubRetriever{err: errors.New("index offline")}

	orch, err := New(gen, ret)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := orch.Query(ctx, "question"); err == nil {
		t.Fatalf("expected fatal error for primary retrieval failure")
	}
}

func TestQueryRejectsEmptyQuery(t *testing.T) {
	orch, err := New(&stubGenerator{}, &stubRetriever{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := orch.Query(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestQueryCancelledContext(t *testing.T) {
	gen := &stubGenerator{
		planResponse: `{"needs_decomposition": false, "reasoning": "", "sub_queries": []}`,
	}
	orch, err := New(gen, &stubRetriever{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Query(ctx, "question"); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

// failAfterFirstRetriever serves one successful search, then fails.
type failAfterFirstRetriever struct {
	first  []document.Passage
	called bool
}

func (r *failAfterFirstRetriever) Search(ctx context.Context, query string, k int) ([]document.Passage, error) {
	if !r.called {
		r.called = true
		return r.first, nil
	}
	return nil, errors.New("search backend down")
}
