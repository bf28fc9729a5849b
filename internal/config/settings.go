package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grokscout/grokscout/internal/grok"
)

// Settings is the full configuration surface, persisted as JSON and
// overridable through the environment.
type Settings struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`

	TimeoutSeconds float64 `json:"timeout_seconds"`
	EnableThinking bool    `json:"enable_thinking"`
	ThinkingBudget int     `json:"thinking_budget"`

	ShowSources bool `json:"show_sources"`
	MaxSources  int  `json:"max_sources"`

	ExtraBody    map[string]any    `json:"extra_body,omitempty"`
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`

	ReuseSession         bool    `json:"reuse_session"`
	MaxRetries           int     `json:"max_retries"`
	RetryDelaySeconds    float64 `json:"retry_delay"`
	RetryableStatusCodes []int   `json:"retryable_status_codes,omitempty"`

	UseBuiltinProvider bool   `json:"use_builtin_provider"`
	Provider           string `json:"provider"`
	CustomSystemPrompt string `json:"custom_system_prompt,omitempty"`

	EnableSkill bool `json:"enable_skill"`

	TelegramToken  string  `json:"telegram_token,omitempty"`
	AllowedUserIDs []int64 `json:"allowed_user_ids,omitempty"`
	DiscordToken   string  `json:"discord_token,omitempty"`
	DiscordGuildID string  `json:"discord_guild_id,omitempty"`
}

// defaultSettings mirrors the documented defaults. API credentials are never
// defaulted; the user provides them.
func defaultSettings() Settings {
	return Settings{
		Model:             "grok-4-fast",
		TimeoutSeconds:    60,
		EnableThinking:    true,
		ThinkingBudget:    32000,
		MaxSources:        5,
		ReuseSession:      true,
		MaxRetries:        3,
		RetryDelaySeconds: 1,
		Provider:          "xai",
	}
}

// SearchConfig converts the settings into a grok client configuration.
func (s Settings) SearchConfig() grok.Config {
	timeout := s.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	return grok.Config{
		BaseURL:              s.BaseURL,
		APIKey:               s.APIKey,
		Model:                s.Model,
		Timeout:              time.Duration(timeout * float64(time.Second)),
		EnableThinking:       s.EnableThinking,
		ThinkingBudget:       s.ThinkingBudget,
		SystemPrompt:         s.CustomSystemPrompt,
		ExtraBody:            s.ExtraBody,
		ExtraHeaders:         s.ExtraHeaders,
		ReuseSession:         s.ReuseSession,
		MaxRetries:           s.MaxRetries,
		RetryDelay:           time.Duration(s.RetryDelaySeconds * float64(time.Second)),
		RetryableStatusCodes: s.RetryableStatusCodes,
	}
}

// applyEnv layers environment overrides onto the file-backed settings.
// Invalid numeric or JSON values are reported, not silently dropped.
func applyEnv(s *Settings) error {
	if v := os.Getenv("GROK_BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv("GROK_API_KEY"); v != "" {
		s.APIKey = v
	}
	if v := os.Getenv("GROK_MODEL"); v != "" {
		s.Model = v
	}
	if v := os.Getenv("GROK_TIMEOUT_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GROK_TIMEOUT_SECONDS %q: %w", v, err)
		}
		s.TimeoutSeconds = f
	}
	if v := os.Getenv("GROK_ENABLE_THINKING"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			s.EnableThinking = true
		case "false", "0", "no":
			s.EnableThinking = false
		default:
			return fmt.Errorf("invalid GROK_ENABLE_THINKING %q", v)
		}
	}
	if v := os.Getenv("GROK_THINKING_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GROK_THINKING_BUDGET %q: %w", v, err)
		}
		s.ThinkingBudget = n
	}
	if v := os.Getenv("GROK_EXTRA_BODY_JSON"); v != "" {
		body, err := ParseJSONObject(v)
		if err != nil {
			return fmt.Errorf("invalid GROK_EXTRA_BODY_JSON: %w", err)
		}
		// Merge into a fresh map; s.ExtraBody is shared with the store.
		merged := make(map[string]any, len(s.ExtraBody)+len(body))
		for k, val := range s.ExtraBody {
			merged[k] = val
		}
		for k, val := range body {
			merged[k] = val
		}
		s.ExtraBody = merged
	}
	if v := os.Getenv("GROK_EXTRA_HEADERS_JSON"); v != "" {
		hdrs, err := ParseJSONObject(v)
		if err != nil {
			return fmt.Errorf("invalid GROK_EXTRA_HEADERS_JSON: %w", err)
		}
		merged := make(map[string]string, len(s.ExtraHeaders)+len(hdrs))
		for k, val := range s.ExtraHeaders {
			merged[k] = val
		}
		for k, val := range hdrs {
			merged[k] = fmt.Sprint(val)
		}
		s.ExtraHeaders = merged
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		s.TelegramToken = v
	}
	if v := os.Getenv("ALLOWED_USER_IDS"); v != "" {
		ids, err := parseUserIDs(v)
		if err != nil {
			return err
		}
		s.AllowedUserIDs = ids
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		s.DiscordToken = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		s.DiscordGuildID = v
	}
	return nil
}

// ParseJSONObject parses a JSON-object string, the format used for
// extra_body / extra_headers overrides. Empty input is an empty object.
func ParseJSONObject(value string) (map[string]any, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	return obj, nil
}

// parseUserIDs parses a comma-separated ID list.
func parseUserIDs(value string) ([]int64, error) {
	var ids []int64
	for _, idStr := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", idStr, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
