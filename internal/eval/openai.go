package eval

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	httputil "github.com/jmylchreest/emojiart/internal/util/http"
)

// DefaultOpenAIBaseURL is the public OpenAI API.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OpenAIBackend answers through a /chat/completions endpoint.
type OpenAIBackend struct {
	url  string
	opts httputil.FetchOptions
}

// NewOpenAIBackend returns a backend for cfg. An empty BaseURL uses the
// public API.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	opts := httputil.FetchOptions{Timeout: cfg.Timeout}
	if cfg.APIKey != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	return &OpenAIBackend{url: base + "/chat/completions", opts: opts}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	content := []contentPart{{Type: "text", Text: req.Prompt}}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.Image)},
		})
	}

	body := chatRequest{
		Model:    req.Model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	}

	var resp chatResponse
	if err := httputil.PostJSON(ctx, b.url, body, &resp, b.opts); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
