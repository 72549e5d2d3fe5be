package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pario-ai/namegen/pkg/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a GeminiClient.
func NewGemini(ctx context.Context, cfg config.ProviderConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.URL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.URL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Complete implements Client. The schema is conveyed by the prompt; Gemini is
// only told to answer in JSON.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(float32(req.Temperature)),
		TopP:              genai.Ptr(float32(req.TopP)),
	}
	if req.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxOutputTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini generate: %w", ErrEmptyResponse)
	}

	out := &Response{Text: text, Model: c.model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if m := resp.UsageMetadata; m != nil {
		out.Usage = usage(int64(m.PromptTokenCount), int64(m.CandidatesTokenCount))
	}
	return out, nil
}
