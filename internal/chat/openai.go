package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures the OpenAI-compatible backend. BaseURL may
// point at any compatible gateway (OpenRouter included).
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// HTTPClient overrides the transport, e.g. for SOCKS egress.
	HTTPClient *http.Client
}

// OpenAIBackend implements Backend over the OpenAI chat completions
// API, blocking and streamed.
type OpenAIBackend struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIBackend fails when the API key is missing: without it the
// fallback controller cannot function, and that must surface at process
// start, not at first use.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat backend API key not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("chat model not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(cfg.Model),
	}, nil
}

func (b *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: b.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *OpenAIBackend) CompleteStream(ctx context.Context, system, user string, onChunk func(string)) (string, error) {
	stream := b.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: b.model,
	})

	var full string
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		onChunk(delta)
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("chat stream: %w", err)
	}
	return full, nil
}
