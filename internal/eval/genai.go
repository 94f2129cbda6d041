package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIConfig configures the Gemini backend.
type GenAIConfig struct {
	// APIKey is required for the Gemini API and ignored by Vertex AI.
	APIKey string

	// VertexAI selects the Vertex AI backend, configured from the usual
	// GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION variables.
	VertexAI bool
}

// GenAIBackend answers through google.golang.org/genai.
type GenAIBackend struct {
	client *genai.Client
}

// NewGenAIBackend creates the client.
func NewGenAIBackend(ctx context.Context, cfg GenAIConfig) (*GenAIBackend, error) {
	clientConfig := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.VertexAI {
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		if cfg.APIKey == "" {
			return nil, errors.New("GOOGLE_API_KEY is required for the Gemini API backend")
		}
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	return &GenAIBackend{client: client}, nil
}

// Complete implements Backend.
func (b *GenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.ImageMIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := b.client.Models.GenerateContent(ctx, req.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
