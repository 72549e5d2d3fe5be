package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/namegen/pkg/config"
	"github.com/pario-ai/namegen/pkg/models"
)

type schemaProbe struct {
	Names []struct {
		Name string `json:"name"`
	} `json:"names"`
}

func testRequest() Request {
	return Request{
		SystemPrompt:    "system",
		UserPrompt:      "user",
		SchemaName:      "names",
		Schema:          GenerateSchema[schemaProbe](),
		MaxOutputTokens: 1000,
		Temperature:     0.8,
		TopP:            0.9,
	}
}

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini-2024",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"names\":[]}"}}],
			"usage":{"prompt_tokens":120,"completion_tokens":340,"total_tokens":460}}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.ProviderConfig{APIKey: "sk-test", URL: srv.URL + "/v1/"})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"names":[]}`, resp.Text)
	assert.Equal(t, &models.Usage{InputTokens: 120, OutputTokens: 340}, resp.Usage)
	assert.Equal(t, "gpt-4o-mini-2024", resp.Model)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.8, body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, body["top_p"], 1e-9)
	assert.EqualValues(t, 1000, body["max_tokens"])
	format, _ := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	messages, _ := body["messages"].([]any)
	assert.Len(t, messages, 2)
}

func TestOpenAINoUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{}"}}]}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.ProviderConfig{APIKey: "k", URL: srv.URL})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Usage)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.ProviderConfig{APIKey: "k", URL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.ProviderConfig{APIKey: "k", URL: srv.URL}, option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.ProviderConfig{})
	assert.Error(t, err)
}

func TestGeminiComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "models/gemini-test:generateContent")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"names\":[]}"}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":50,"candidatesTokenCount":70,"totalTokenCount":120}}`)
	}))
	defer srv.Close()

	c, err := NewGemini(context.Background(), config.ProviderConfig{APIKey: "g-test", URL: srv.URL, Model: "gemini-test"})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"names":[]}`, resp.Text)
	assert.Equal(t, &models.Usage{InputTokens: 50, OutputTokens: 70}, resp.Usage)
	assert.Equal(t, "gemini-test", resp.Model)

	gc, _ := body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", gc["responseMimeType"])
	assert.EqualValues(t, 1000, gc["maxOutputTokens"])
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(context.Background(), config.ProviderConfig{Type: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
	assert.Equal(t, defaultOpenAIModel, c.Model())

	_, err = New(context.Background(), config.ProviderConfig{Type: "bedrock", APIKey: "k"})
	assert.Error(t, err)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("openai chat: %w", context.DeadlineExceeded)))
	assert.False(t, IsTimeout(errors.New("rate limited")))
	assert.False(t, IsTimeout(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	assert.True(t, IsTimeout(ctx.Err()))
}

func TestGenerateSchemaStrict(t *testing.T) {
	data, err := json.Marshal(GenerateSchema[schemaProbe]())
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"additionalProperties":false`)
	assert.NotContains(t, s, `"$ref"`)
}
