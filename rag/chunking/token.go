package chunking

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sweetpotato0/docqa/rag/document"
)

// TokenChunker windows documents by model tokens instead of words, which keeps
// chunk sizes aligned with embedding-model limits regardless of language.
type TokenChunker struct {
	enc     *tiktoken.Tiktoken
	size    int
	overlap int
}

// NewTokenChunker creates a token-window chunker using the encoding of the
// named model ("gpt-4o-mini", "text-embedding-3-small", ...) or a raw
// encoding name ("cl100k_base").
func NewTokenChunker(model string, opts ...Option) (*TokenChunker, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// try by encoding name
		enc, err = tiktoken.GetEncoding(model)
		if err != nil {
			return nil, fmt.Errorf("resolve encoding for %q: %w", model, err)
		}
	}

	cfg := &Options{
		ChunkSize: 500,
		Overlap:   50,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 2
	}
	return &TokenChunker{
		enc:     enc,
		size:    cfg.ChunkSize,
		overlap: cfg.Overlap,
	}, nil
}

// Chunk implements Chunker.
func (c *TokenChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	ids := c.enc.Encode(doc.Content, nil, nil)
	if len(ids) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	if step <= 0 {
		step = c.size
	}

	var chunks []document.Chunk
	for i := 0; i < len(ids); i += step {
		end := i + c.size
		if end > len(ids) {
			end = len(ids)
		}
		text := c.enc.Decode(ids[i:end])
		if text == "" {
			continue
		}
		chunks = append(chunks, document.Chunk{
			Text:   text,
			Source: doc.Source,
			Index:  len(chunks),
		})
		if end == len(ids) {
			break
		}
	}
	return chunks, nil
}
