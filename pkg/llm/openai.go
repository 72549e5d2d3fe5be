package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pario-ai/namegen/pkg/config"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient talks to the OpenAI chat completions API or a compatible gateway.
type OpenAIClient struct {
	openai openai.Client
	model  string
}

// NewOpenAI creates an OpenAIClient. extra options are appended after the
// configured key and base URL.
func NewOpenAI(cfg config.ProviderConfig, extra ...option.RequestOption) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.URL != "" {
		opts = append(opts, option.WithBaseURL(cfg.URL))
	}
	opts = append(opts, extra...)

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		openai: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	} else {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai chat: %w", ErrEmptyResponse)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &Response{
		Text:  resp.Choices[0].Message.Content,
		Usage: usage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Model: model,
	}, nil
}
