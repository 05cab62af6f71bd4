// Package gemini provides an llm.Generator backed by the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sweetpotato0/docqa/llm"
	"google.golang.org/api/option"
)

// Config holds Gemini generator configuration
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     "gemini-1.5-flash",
		MaxTokens: 2048,
	}
}

// Generator implements llm.Generator using the official SDK.
type Generator struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini generator.
func New(ctx context.Context, config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &Generator{
		config: config,
		client: client,
	}, nil
}

// Complete implements llm.Generator.
func (g *Generator) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := g.client.GenerativeModel(g.config.Model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if g.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(g.config.MaxTokens)
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content returned from Gemini")
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (g *Generator) Close() error {
	return g.client.Close()
}
