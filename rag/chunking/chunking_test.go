package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/sweetpotato0/docqa/rag/document"
)

func wordDoc(n int) document.Document {
	words := make([]string, n)
	for i := range words {
		words[i] = "w"
	}
	return document.Document{Source: "doc.txt", Content: strings.Join(words, " ")}
}

func TestWordChunkerSplitsWithOverlap(t *testing.T) {
	c := NewWordChunker(WithChunkSize(10), WithOverlap(2))

	chunks, err := c.Chunk(context.Background(), wordDoc(25))
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	// step is 8: windows start at 0, 8, 16
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.Source != "doc.txt" {
			t.Fatalf("chunk %d lost its source: %q", i, chunk.Source)
		}
	}
	if got := len(strings.Fields(chunks[0].Text)); got != 10 {
		t.Fatalf("first chunk should hold 10 words, got %d", got)
	}
	if got := len(strings.Fields(chunks[2].Text)); got != 9 {
		t.Fatalf("last chunk should hold the remainder, got %d words", got)
	}
}

func TestWordChunkerShortDocumentSingleChunk(t *testing.T) {
	c := NewWordChunker()

	chunks, err := c.Chunk(context.Background(), document.Document{Source: "s", Content: "just a few words"})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "just a few words" {
		t.Fatalf("unexpected chunk text %q", chunks[0].Text)
	}
}

func TestWordChunkerEmptyDocument(t *testing.T) {
	c := NewWordChunker()

	chunks, err := c.Chunk(context.Background(), document.Document{Source: "s", Content: " \n\t "})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestWordChunkerRejectsDegenerateOverlap(t *testing.T) {
	// overlap >= size would never advance; the constructor must repair it
	c := NewWordChunker(WithChunkSize(4), WithOverlap(10))

	chunks, err := c.Chunk(context.Background(), wordDoc(12))
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected progress through the document, got %d chunks", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if chunks[0].Text == last.Text && len(chunks) > 1 {
		t.Fatalf("chunker did not advance")
	}
}
