// Package openai provides a vector.Embedder backed by the OpenAI
// embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// modelDimensions maps the embedding models this project deploys with to
// their native vector widths.
var modelDimensions = map[openaisdk.EmbeddingModel]int{
	openaisdk.EmbeddingModelTextEmbedding3Small: 1536,
	openaisdk.EmbeddingModelTextEmbedding3Large: 3072,
	openaisdk.EmbeddingModelTextEmbeddingAda002: 1536,
}

const fallbackDimension = 1536

// Config holds OpenAI embedder configuration
type Config struct {
	APIKey    string
	BaseURL   string
	Model     openaisdk.EmbeddingModel
	Dimension int // derived from Model when zero
}

// DefaultConfig returns the embedding setup the pipeline ships with.
func DefaultConfig() *Config {
	return &Config{
		Model: openaisdk.EmbeddingModelTextEmbedding3Small,
	}
}

// OpenAIEmbedder implements vector.Embedder by using openai.
type OpenAIEmbedder struct {
	client    openaisdk.Client
	model     openaisdk.EmbeddingModel
	dimension int
}

// New create OpenAIEmbedder.
func New(config *Config) *OpenAIEmbedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Model == "" {
		config.Model = openaisdk.EmbeddingModelTextEmbedding3Small
	}
	dimension := config.Dimension
	if dimension <= 0 {
		var ok bool
		if dimension, ok = modelDimensions[config.Model]; !ok {
			dimension = fallbackDimension
		}
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if strings.TrimSpace(config.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIEmbedder{
		client:    openaisdk.NewClient(opts...),
		model:     config.Model,
		dimension: dimension,
	}
}

// Dimension return number of embedding dimensions
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed converts text to a vector embedding
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}
	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch converts multiple texts to embeddings
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedBatch(ctx, texts)
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Model: e.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, emb := range resp.Data {
		out[i] = resizeVector(emb.Embedding, e.dimension)
	}
	return out, nil
}

// resizeVector fits the API's float64 vector into the configured width,
// truncating or zero-padding so every stored vector has the same dimension.
func resizeVector(input []float64, width int) []float32 {
	vec := make([]float32, width)
	for i := 0; i < len(input) && i < width; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}
