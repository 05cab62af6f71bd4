// Package retriever provides the vector-backed retrieval implementation:
// documents are chunked, embedded, and stored; searches embed the query and
// return the best-matching passages in relevance order.
package retriever

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/rag/chunking"
	"github.com/sweetpotato0/docqa/rag/document"
	"github.com/sweetpotato0/docqa/vector"
)

// Retriever coordinates chunking, embedding, and similarity search.
type Retriever struct {
	store    vector.VectorStore
	embedder vector.Embedder
	chunker  chunking.Chunker
	logger   *slog.Logger
}

// New creates a retriever. A nil chunker defaults to the word-window chunker.
func New(store vector.VectorStore, emb vector.Embedder, chunker chunking.Chunker) *Retriever {
	if chunker == nil {
		chunker = chunking.NewWordChunker()
	}
	return &Retriever{
		store:    store,
		embedder: emb,
		chunker:  chunker,
		logger:   logging.WithComponent("retriever"),
	}
}

// IndexDocuments ingests documents: chunk -> embed -> store.
func (r *Retriever) IndexDocuments(ctx context.Context, docs ...document.Document) error {
	if r.store == nil || r.embedder == nil {
		return fmt.Errorf("retriever not fully configured")
	}

	for _, doc := range docs {
		chunks, err := r.chunker.Chunk(ctx, doc)
		if err != nil {
			return fmt.Errorf("chunk document %s: %w", doc.Source, err)
		}
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		vectors, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.Source, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embed document %s: expected %d vectors, got %d", doc.Source, len(chunks), len(vectors))
		}

		for i, chunk := range chunks {
			embedding := &vector.Embedding{
				ID:     fmt.Sprintf("%s#%d", chunk.Source, chunk.Index),
				Vector: vectors[i],
				Text:   chunk.Text,
				Metadata: map[string]any{
					"source":      chunk.Source,
					"chunk_index": chunk.Index,
				},
			}
			if err := r.store.AddEmbedding(ctx, embedding); err != nil {
				return fmt.Errorf("store chunk %s: %w", embedding.ID, err)
			}
		}
		r.logger.Debug("document indexed", "source", doc.Source, "chunks", len(chunks))
	}
	return nil
}

// Search embeds the query and returns the k most similar passages, best match
// first. An empty index yields an empty result, not an error.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]document.Passage, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.store.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	passages := make([]document.Passage, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, document.Passage{
			Text:       hit.Embedding.Text,
			Source:     metaString(hit.Embedding.Metadata, "source"),
			ChunkIndex: metaInt(hit.Embedding.Metadata, "chunk_index"),
			Score:      hit.Score,
		})
	}
	return passages, nil
}

// Count returns the number of indexed chunks.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// Clear removes every indexed chunk.
func (r *Retriever) Clear(ctx context.Context) error {
	return r.store.Clear(ctx)
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
