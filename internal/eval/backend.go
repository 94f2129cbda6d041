package eval

import (
	"context"
	"fmt"
	"strings"
)

// Request is one question for a model.
type Request struct {
	Model  string
	Prompt string

	// Image is attached when non-empty.
	Image     []byte
	ImageMIME string
}

// Backend sends a Request to a model and returns its text reply.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// BackendKind names a supported backend.
type BackendKind string

const (
	BackendAuto   BackendKind = "auto"
	BackendGenAI  BackendKind = "genai"
	BackendOpenAI BackendKind = "openai"
)

// ResolveBackend picks the backend for model. Auto selects genai for
// Gemini models and openai for everything else.
func ResolveBackend(kind BackendKind, model string) (BackendKind, error) {
	switch kind {
	case "", BackendAuto:
		if strings.HasPrefix(strings.ToLower(model), "gemini") {
			return BackendGenAI, nil
		}
		return BackendOpenAI, nil
	case BackendGenAI, BackendOpenAI:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown backend %q (use auto, genai or openai)", kind)
	}
}
