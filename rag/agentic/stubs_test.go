package agentic

import (
	"context"
	"strings"
	"sync"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/rag/document"
)

// stubGenerator scripts responses per call site. Calls are classified by the
// prompt templates the stages use.
type stubGenerator struct {
	planResponse string
	planErr      error

	synthResponses []string
	synthErr       error

	reflectResponses []string
	reflectErr       error

	mu           sync.Mutex
	planCalls    int
	synthCalls   int
	reflectCalls int
}

func (g *stubGenerator) Complete(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case req.JSONMode && strings.HasPrefix(req.User, "Analyze this query"):
		g.planCalls++
		if g.planErr != nil {
			return "", g.planErr
		}
		return g.planResponse, nil
	case req.JSONMode && strings.HasPrefix(req.User, "Evaluate if this answer"):
		call := g.reflectCalls
		g.reflectCalls++
		if g.reflectErr != nil {
			return "", g.reflectErr
		}
		if call < len(g.reflectResponses) {
			return g.reflectResponses[call], nil
		}
		return `{"is_complete": true, "confidence": "high", "missing_aspects": [], "needs_refinement": false, "refinement_query": ""}`, nil
	default:
		call := g.synthCalls
		g.synthCalls++
		if g.synthErr != nil {
			return "", g.synthErr
		}
		if call < len(g.synthResponses) {
			return g.synthResponses[call], nil
		}
		return "stub answer", nil
	}
}

type searchCall struct {
	query string
	k     int
}

// stubRetriever serves canned passages per query and records every call.
type stubRetriever struct {
	byQuery  map[string][]document.Passage
	fallback []document.Passage
	err      error

	mu    sync.Mutex
	calls []searchCall
}

func (r *stubRetriever) Search(ctx context.Context, query string, k int) ([]document.Passage, error) {
	r.mu.Lock()
	r.calls = append(r.calls, searchCall{query: query, k: k})
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	if passages, ok := r.byQuery[query]; ok {
		if k > 0 && k < len(passages) {
			passages = passages[:k]
		}
		return passages, nil
	}
	passages := r.fallback
	if k > 0 && k < len(passages) {
		passages = passages[:k]
	}
	return passages, nil
}

func (r *stubRetriever) searchCalls() []searchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]searchCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func passage(text, source string, index int, score float32) document.Passage {
	return document.Passage{Text: text, Source: source, ChunkIndex: index, Score: score}
}

const completeAssessment = `{"is_complete": true, "confidence": "high", "missing_aspects": [], "needs_refinement": false, "refinement_query": ""}`

func refineAssessment(query string) string {
	return `{"is_complete": false, "confidence": "low", "missing_aspects": ["details"], "needs_refinement": true, "refinement_query": "` + query + `"}`
}
