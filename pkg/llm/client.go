// Package llm calls upstream language models for structured JSON replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/invopop/jsonschema"

	"github.com/pario-ai/namegen/pkg/config"
	"github.com/pario-ai/namegen/pkg/models"
)

// Client sends one prompt pair to an upstream model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// Request is a single structured completion request.
type Request struct {
	SystemPrompt    string
	UserPrompt      string
	SchemaName      string
	Schema          any
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
}

// Response is the raw model reply. Usage is nil when the provider did not
// report token counts.
type Response struct {
	Text  string
	Usage *models.Usage
	Model string
}

// ErrEmptyResponse is returned when the provider answered without content.
var ErrEmptyResponse = errors.New("empty model response")

// New creates the client selected by cfg.Type.
func New(ctx context.Context, cfg config.ProviderConfig) (Client, error) {
	switch cfg.Type {
	case "", "openai":
		return NewOpenAI(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// GenerateSchema reflects a strict JSON schema for T.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// IsTimeout reports whether err came from a deadline rather than the provider.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func usage(in, out int64) *models.Usage {
	if in == 0 && out == 0 {
		return nil
	}
	return &models.Usage{InputTokens: int(in), OutputTokens: int(out)}
}
