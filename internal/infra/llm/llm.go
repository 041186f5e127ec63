// Package llm selects the chat completion backend for a model configuration.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/gemini"
)

// Provider names a chat completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ModelConfig carries the credentials and model for one call. It is passed explicitly into
// every operation that talks to a model.
type ModelConfig struct {
	Provider    Provider
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
}

// Configured reports whether credentials are present.
func (c ModelConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ChatClient is implemented by every backend.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Factory builds a client for the given configuration.
type Factory func(ctx context.Context, cfg ModelConfig) (ChatClient, error)

// NewFactory returns a Factory whose HTTP clients use the given timeout.
func NewFactory(timeout time.Duration) Factory {
	return func(ctx context.Context, cfg ModelConfig) (ChatClient, error) {
		switch ParseProvider(string(cfg.Provider)) {
		case ProviderGemini:
			return gemini.NewClient(ctx, cfg.APIKey)
		default:
			return chatgpt.NewClient(cfg.APIKey, cfg.BaseURL, timeout)
		}
	}
}

// ModelLister enumerates the models available for a configuration.
type ModelLister func(ctx context.Context, cfg ModelConfig) ([]chatgpt.Model, error)

// NewModelLister returns a ModelLister whose HTTP clients use the given timeout.
func NewModelLister(timeout time.Duration) ModelLister {
	return func(ctx context.Context, cfg ModelConfig) ([]chatgpt.Model, error) {
		switch ParseProvider(string(cfg.Provider)) {
		case ProviderGemini:
			client, err := gemini.NewClient(ctx, cfg.APIKey)
			if err != nil {
				return nil, err
			}
			return client.ListModels(ctx)
		default:
			client, err := chatgpt.NewClient(cfg.APIKey, cfg.BaseURL, timeout)
			if err != nil {
				return nil, err
			}
			return client.ListModels(ctx)
		}
	}
}

// ParseProvider maps free text onto a known provider, defaulting to OpenAI-compatible.
func ParseProvider(value string) Provider {
	if strings.EqualFold(strings.TrimSpace(value), string(ProviderGemini)) {
		return ProviderGemini
	}
	return ProviderOpenAI
}
