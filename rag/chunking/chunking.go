package chunking

import (
	"context"
	"strings"

	"github.com/sweetpotato0/docqa/rag/document"
)

// Chunker splits documents into chunks that can be embedded and indexed.
type Chunker interface {
	Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error)
}

// Options configure the word-window chunker.
type Options struct {
	ChunkSize int // window size in words
	Overlap   int // words shared between consecutive windows
}

// Option customizes the word chunker.
type Option func(*Options)

// WithChunkSize overrides the default window size (words).
func WithChunkSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithOverlap configures overlap (words) between consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(o *Options) {
		if overlap >= 0 {
			o.Overlap = overlap
		}
	}
}

// WordChunker splits documents into fixed-size overlapping word windows.
type WordChunker struct {
	size    int
	overlap int
}

// NewWordChunker constructs a chunker with defaults suited to prose documents.
func NewWordChunker(opts ...Option) *WordChunker {
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
	return &WordChunker{
		size:    cfg.ChunkSize,
		overlap: cfg.Overlap,
	}
}

// Chunk splits the document into bounded pieces, each tagged with its source
// and ordinal position.
func (c *WordChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	if step <= 0 {
		step = c.size
	}

	var chunks []document.Chunk
	for i := 0; i < len(words); i += step {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[i:end], " ")
		if text == "" {
			continue
		}
		chunks = append(chunks, document.Chunk{
			Text:   text,
			Source: doc.Source,
			Index:  len(chunks),
		})
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
