package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/sweetpotato0/docqa/rag/document"
)

// newTokenChunkerOrSkip skips when the encoding files cannot be fetched,
// tiktoken downloads them on first use.
func newTokenChunkerOrSkip(t *testing.T, opts ...Option) *TokenChunker {
	t.Helper()
	c, err := NewTokenChunker("cl100k_base", opts...)
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	return c
}

func TestTokenChunkerSplitsLongDocument(t *testing.T) {
	c := newTokenChunkerOrSkip(t, WithChunkSize(20), WithOverlap(4))

	content := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)
	chunks, err := c.Chunk(context.Background(), document.Document{Source: "fox.txt", Content: content})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.Source != "fox.txt" {
			t.Fatalf("chunk %d lost its source", i)
		}
		if chunk.Text == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestTokenChunkerEmptyDocument(t *testing.T) {
	c := newTokenChunkerOrSkip(t)

	chunks, err := c.Chunk(context.Background(), document.Document{Source: "s", Content: ""})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestTokenChunkerUnknownModel(t *testing.T) {
	if _, err := NewTokenChunker("no-such-model-or-encoding"); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}
