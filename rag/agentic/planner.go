package agentic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/docqa/llm"
)

const planTemplate = `Analyze this query and determine if it needs to be broken down into sub-queries for better retrieval.

Query: %s

Respond in JSON format:
{
    "needs_decomposition": true/false,
    "reasoning": "brief explanation",
    "sub_queries": ["sub-query 1", "sub-query 2", ...] or []
}

If the query is simple and straightforward, set needs_decomposition to false and sub_queries to an empty array.
If the query is complex (e.g., comparing multiple concepts, multi-part questions), break it down.`

type planner struct {
	gen         llm.Generator
	prompt      string
	temperature float64
	logger      *slog.Logger
}

func newPlanner(gen llm.Generator, cfg *Config, logger *slog.Logger) *planner {
	return &planner{
		gen:         gen,
		prompt:      cfg.PlannerPrompt,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Plan decides whether the query should be decomposed into sub-queries. It
// never fails: any generation or parse error degrades to a non-decomposed
// plan so query processing is never blocked on planning.
func (p *planner) Plan(ctx context.Context, query string) Plan {
	raw, err := p.gen.Complete(ctx, llm.Request{
		System:      p.prompt,
		User:        fmt.Sprintf(planTemplate, query),
		Temperature: p.temperature,
		JSONMode:    true,
	})
	if err != nil {
		p.logger.Warn("planning failed, treating query as single-intent", "error", err)
		return fallbackPlan(err)
	}

	plan, err := decodeJSON[Plan](raw)
	if err != nil {
		p.logger.Warn("planner output invalid, treating query as single-intent", "error", err)
		return fallbackPlan(err)
	}

	if !plan.NeedsDecomposition {
		plan.SubQueries = nil
	}
	return *plan
}

func fallbackPlan(err error) Plan {
	return Plan{
		NeedsDecomposition: false,
		Reasoning:          fmt.Sprintf("Planning failed: %v", err),
		SubQueries:         nil,
	}
}
