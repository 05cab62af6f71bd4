package agentic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/rag/document"
)

const (
	previewPassages    = 3
	previewPassageSize = 200
)

const reflectTemplate = `Evaluate if this answer fully addresses the query. Consider:
1. Does it answer all parts of the question?
2. Are there gaps or missing information?
3. Would additional searches help?

Query: %s

Answer: %s

Retrieved context preview:
%s

Respond in JSON format:
{
    "is_complete": true/false,
    "confidence": "high/medium/low",
    "missing_aspects": ["aspect 1", "aspect 2", ...] or [],
    "needs_refinement": true/false,
    "refinement_query": "follow-up query if needs_refinement is true" or ""
}`

type reflector struct {
	gen         llm.Generator
	prompt      string
	temperature float64
	logger      *slog.Logger
}

func newReflector(gen llm.Generator, cfg *Config, logger *slog.Logger) *reflector {
	return &reflector{
		gen:         gen,
		prompt:      cfg.ReflectionPrompt,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Assess judges whether the answer covers the query and proposes a follow-up
// query when gaps remain. Any generation or parse failure degrades to a
// "complete, no refinement" verdict: when the reflection mechanism itself is
// unreliable the loop must terminate rather than spin.
func (r *reflector) Assess(ctx context.Context, query, answer string, passages []document.Passage) Assessment {
	raw, err := r.gen.Complete(ctx, llm.Request{
		System:      r.prompt,
		User:        fmt.Sprintf(reflectTemplate, query, answer, contextPreview(passages)),
		Temperature: r.temperature,
		JSONMode:    true,
	})
	if err != nil {
		r.logger.Warn("reflection failed, accepting current answer", "error", err)
		return fallbackAssessment()
	}

	assessment, err := decodeJSON[Assessment](raw)
	if err != nil {
		r.logger.Warn("reflection output invalid, accepting current answer", "error", err)
		return fallbackAssessment()
	}

	if assessment.Confidence == "" {
		assessment.Confidence = ConfidenceMedium
	}
	return *assessment
}

func fallbackAssessment() Assessment {
	return Assessment{
		IsComplete:      true,
		Confidence:      ConfidenceMedium,
		MissingAspects:  nil,
		NeedsRefinement: false,
		RefinementQuery: "",
	}
}

// contextPreview bounds how much retrieved text reaches the reflection
// prompt: the first few passages, each truncated.
func contextPreview(passages []document.Passage) string {
	n := len(passages)
	if n > previewPassages {
		n = previewPassages
	}
	lines := make([]string, 0, n)
	for _, passage := range passages[:n] {
		text := passage.Text
		if len(text) > previewPassageSize {
			text = text[:previewPassageSize]
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}
