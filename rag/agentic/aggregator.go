package agentic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/docqa/rag/document"
	"golang.org/x/sync/errgroup"
)

// aggregator fans retrieval out across one or more queries and merges the
// results into a single deduplicated context.
type aggregator struct {
	retriever Retriever
	logger    *slog.Logger
}

func newAggregator(retriever Retriever, logger *slog.Logger) *aggregator {
	return &aggregator{retriever: retriever, logger: logger}
}

// Aggregate searches every query at fan-out k and merges the results.
// Sub-query searches run concurrently; the merge re-establishes the
// deterministic ordering: queries in issue order, then passages in returned
// rank order. Passages are deduplicated globally by exact text, keeping the
// first occurrence, and the merged list is truncated to 2k entries.
func (a *aggregator) Aggregate(ctx context.Context, queries []string, k int) ([]document.Passage, error) {
	results := make([][]document.Passage, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			passages, err := a.retriever.Search(gctx, query, k)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}
			results[i] = passages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := dedup(results, 2*k)
	a.logger.Debug("retrieval aggregated", "queries", len(queries), "fan_out", k, "merged", len(merged))
	return merged, nil
}

// dedup flattens batches in order, drops passages whose exact text was
// already seen, and truncates to limit entries. A non-positive limit means
// no cap.
func dedup(batches [][]document.Passage, limit int) []document.Passage {
	seen := make(map[string]struct{})
	var merged []document.Passage
	for _, batch := range batches {
		for _, passage := range batch {
			if _, ok := seen[passage.Text]; ok {
				continue
			}
			seen[passage.Text] = struct{}{}
			merged = append(merged, passage)
			if limit > 0 && len(merged) >= limit {
				return merged
			}
		}
	}
	return merged
}
