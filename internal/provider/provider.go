// Package provider implements delegation to a host-managed LLM provider,
// used instead of the direct search client when use_builtin_provider is set.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Message is a single chat turn in OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single Send call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider sends a chat completion request and returns the assistant text.
// Transport policy (retries, backoff) is the provider's own; callers don't
// layer retries on top of it.
type Provider interface {
	Send(ctx context.Context, messages []Message, opts Options) (string, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider string `json:"provider"` // openai, xai, openrouter, deepseek
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url,omitempty"` // For custom endpoints
}

// New creates a provider based on config.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, "openai"), nil
	case "xai", "grok":
		base := cfg.BaseURL
		if base == "" {
			base = "https://api.x.ai/v1"
		}
		return newOpenAIProvider(cfg.APIKey, cfg.Model, base, "xai"), nil
	case "openrouter":
		base := cfg.BaseURL
		if base == "" {
			base = "https://openrouter.ai/api/v1"
		}
		return newOpenAIProvider(cfg.APIKey, cfg.Model, base, "openrouter"), nil
	case "deepseek":
		base := cfg.BaseURL
		if base == "" {
			base = "https://api.deepseek.com/v1"
		}
		return newOpenAIProvider(cfg.APIKey, cfg.Model, base, "deepseek"), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
