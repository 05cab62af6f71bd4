package agentic

import (
	"context"

	"github.com/sweetpotato0/docqa/rag/document"
)

// Retriever is the retrieval contract the orchestrator consumes. Results are
// ordered best match first; an empty result is a normal outcome, not an
// error. rag/retriever provides the vector-backed implementation.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]document.Passage, error)
}

// Plan is the planner's decomposition decision. When NeedsDecomposition is
// false the orchestrator searches the original query regardless of what
// SubQueries contains.
type Plan struct {
	NeedsDecomposition bool     `json:"needs_decomposition"`
	Reasoning          string   `json:"reasoning"`
	SubQueries         []string `json:"sub_queries"`
}

// Confidence grades how sure the reflector is about its completeness verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Assessment is the reflector's verdict on a draft answer. An empty
// RefinementQuery is treated as "no actionable refinement" even when
// NeedsRefinement is set.
type Assessment struct {
	IsComplete      bool       `json:"is_complete"`
	Confidence      Confidence `json:"confidence"`
	MissingAspects  []string   `json:"missing_aspects"`
	NeedsRefinement bool       `json:"needs_refinement"`
	RefinementQuery string     `json:"refinement_query"`
}

// IterationRecord captures one pass of the generate/reflect loop.
type IterationRecord struct {
	Iteration       int    `json:"iteration"`
	DocsRetrieved   int    `json:"docs_retrieved_count"`
	RefinementQuery string `json:"refinement_query,omitempty"`
	Answer          string `json:"answer"`
}

// Result is the terminal artifact of a query. Every field is populated even
// when individual stages degraded: a failed synthesis still yields an
// error-describing Answer, an empty index yields empty Sources.
type Result struct {
	Answer        string             `json:"answer"`
	Sources       []string           `json:"sources"`
	Passages      []document.Passage `json:"retrieved_passages"`
	Iterations    []IterationRecord  `json:"iterations"`
	Plan          Plan               `json:"plan"`
	TotalDocsUsed int                `json:"total_docs_used"`
}
