package grok

import (
	"strings"
)

// defaultSystemPrompt steers the model toward a machine-parseable answer.
// Plain text is demanded because chat surfaces render the content verbatim.
const defaultSystemPrompt = "You are a web research assistant. Use live web search/browsing when answering. " +
	"Return ONLY a single JSON object with keys: " +
	"content (string), sources (array of objects with url/title/snippet when possible). " +
	"Keep content concise and evidence-backed. " +
	"IMPORTANT: Do NOT use Markdown formatting in the content field - use plain text only."

// SystemPrompt returns the effective search prompt, falling back to the
// built-in one when no custom prompt is configured.
func SystemPrompt(custom string) string {
	if custom != "" {
		return custom
	}
	return defaultSystemPrompt
}

// Protected keys can never be overridden by extra_body / extra_headers
// overlays. This is a security property: a hostile overlay must not be able
// to swap the model, inject messages, flip streaming, or replace credentials.
var (
	protectedBodyKeys   = map[string]bool{"model": true, "messages": true, "stream": true}
	protectedHeaderKeys = map[string]bool{"authorization": true, "content-type": true}
)

var apiKeyPlaceholders = map[string]bool{
	"YOUR_API_KEY": true,
	"API_KEY":      true,
	"CHANGE_ME":    true,
	"REPLACE_ME":   true,
}

var baseURLPlaceholders = map[string]bool{
	"HTTPS://YOUR-GROK-ENDPOINT.EXAMPLE": true,
	"YOUR_BASE_URL":                      true,
	"BASE_URL":                           true,
	"CHANGE_ME":                          true,
	"REPLACE_ME":                         true,
}

// NormalizeAPIKey trims the key and treats well-known placeholders as unset.
func NormalizeAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || apiKeyPlaceholders[strings.ToUpper(key)] {
		return ""
	}
	return key
}

// NormalizeBaseURL trims whitespace, trailing slashes and a trailing /v1
// (the endpoint path appends /v1/chat/completions itself), and treats
// well-known placeholders as unset.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" || baseURLPlaceholders[strings.ToUpper(baseURL)] {
		return ""
	}
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	return baseURL
}

// buildBody assembles the chat-completions payload. The model field is only
// present when configured, letting gateway endpoints fall back to their own
// default model.
func (c *Client) buildBody(query string) map[string]any {
	body := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": SystemPrompt(c.cfg.SystemPrompt)},
			{"role": "user", "content": query},
		},
		"temperature": 0.2,
		"stream":      false,
	}
	if c.cfg.Model != "" {
		body["model"] = c.cfg.Model
	}

	if c.cfg.EnableThinking {
		body["reasoning_effort"] = "high"
		if c.cfg.ThinkingBudget > 0 {
			body["reasoning_budget_tokens"] = c.cfg.ThinkingBudget
		}
	}

	for k, v := range c.cfg.ExtraBody {
		if protectedBodyKeys[k] {
			continue
		}
		body[k] = v
	}
	return body
}

// buildHeaders assembles request headers with the same protection rule as
// buildBody, matched case-insensitively since header names are.
func (c *Client) buildHeaders(apiKey string) map[string]string {
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
	}
	for k, v := range c.cfg.ExtraHeaders {
		if protectedHeaderKeys[strings.ToLower(k)] {
			continue
		}
		headers[k] = v
	}
	return headers
}
