package agentic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/rag/document"
)

type synthesizer struct {
	gen         llm.Generator
	prompt      string
	temperature float64
	logger      *slog.Logger
}

func newSynthesizer(gen llm.Generator, cfg *Config, logger *slog.Logger) *synthesizer {
	return &synthesizer{
		gen:         gen,
		prompt:      cfg.SynthesisPrompt,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Synthesize produces an answer grounded in the supplied passages. Iteration
// zero frames the task as answering from scratch; later iterations frame it
// as synthesizing everything gathered so far. A generation failure degrades
// to an error-describing answer string instead of an error: the system
// favours a visible degraded answer over a failed query.
func (s *synthesizer) Synthesize(ctx context.Context, query string, passages []document.Passage, iteration int) string {
	contextText := formatPassages(passages)

	var user string
	if iteration > 0 {
		user = fmt.Sprintf(`You are refining your answer based on additional context. Use the following documents to provide a comprehensive answer.

Previous iteration: %d
Context from documents:
%s

Question: %s

Provide a complete answer that synthesizes all the information:`, iteration, contextText, query)
	} else {
		user = fmt.Sprintf(`Use the following documents to answer the question. If the answer is not in the documents, say so.

Context from documents:
%s

Question: %s

Answer:`, contextText, query)
	}

	raw, err := s.gen.Complete(ctx, llm.Request{
		System:      s.prompt,
		User:        user,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Error("answer generation failed", "iteration", iteration, "error", err)
		return fmt.Sprintf("Error generating answer: %v", err)
	}
	return strings.TrimSpace(raw)
}

func formatPassages(passages []document.Passage) string {
	if len(passages) == 0 {
		return "(no documents were retrieved)"
	}
	blocks := make([]string, len(passages))
	for i, passage := range passages {
		blocks[i] = fmt.Sprintf("Context %d (from %s):\n%s", i+1, passage.Source, passage.Text)
	}
	return strings.Join(blocks, "\n\n")
}
