// Package inmemory provides a mutex-guarded in-process vector store, suited
// to tests and single-process deployments where the index does not need to
// survive a restart.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sweetpotato0/docqa/vector"
)

// InMemoryVectorStore implements vector.VectorStore using in-memory storage.
type InMemoryVectorStore struct {
	embeddings map[string]*vector.Embedding
	order      []string
	mu         sync.RWMutex
}

// NewInMemoryVectorStore creates a new in-memory vector store.
func NewInMemoryVectorStore() *InMemoryVectorStore {
	return &InMemoryVectorStore{
		embeddings: make(map[string]*vector.Embedding),
	}
}

// AddEmbedding adds a new embedding to the store.
func (s *InMemoryVectorStore) AddEmbedding(ctx context.Context, embedding *vector.Embedding) error {
	if embedding == nil {
		return fmt.Errorf("embedding cannot be nil")
	}
	if embedding.ID == "" {
		return fmt.Errorf("embedding ID cannot be empty")
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.embeddings[embedding.ID]; !exists {
		s.order = append(s.order, embedding.ID)
	}
	s.embeddings[embedding.ID] = embedding
	return nil
}

// Search finds the topK embeddings most similar to the query vector by cosine
// similarity, best first. A non-positive topK yields an empty result.
func (s *InMemoryVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.ScoredEmbedding, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*vector.ScoredEmbedding, 0, len(s.embeddings))
	// iterate in insertion order so equal scores rank deterministically
	for _, id := range s.order {
		emb := s.embeddings[id]
		if len(emb.Vector) != len(queryVector) {
			continue
		}
		results = append(results, &vector.ScoredEmbedding{
			Embedding: emb,
			Score:     vector.CosineSimilarity(queryVector, emb.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Clear removes all embeddings.
func (s *InMemoryVectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings = make(map[string]*vector.Embedding)
	s.order = nil
	return nil
}

// Count returns the number of embeddings.
func (s *InMemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.embeddings), nil
}
