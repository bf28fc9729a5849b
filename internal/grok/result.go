package grok

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Source is a single citation returned alongside the synthesized answer.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Usage holds token accounting for one search call. Estimated is set when
// the endpoint returned no usage block and the counters were computed locally.
type Usage struct {
	PromptTokens     int  `json:"prompt_tokens"`
	CompletionTokens int  `json:"completion_tokens"`
	TotalTokens      int  `json:"total_tokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

// Result is the outcome of a single search call. API-level failures are
// reported through OK/ErrorCode/Detail rather than a Go error, so callers
// always receive a definite success/failure value.
type Result struct {
	OK        bool     `json:"ok"`
	Query     string   `json:"query,omitempty"`
	Content   string   `json:"content"`
	Sources   []Source `json:"sources"`
	Raw       string   `json:"raw,omitempty"`
	Model     string   `json:"model,omitempty"`
	Usage     Usage    `json:"usage"`
	ErrorCode string   `json:"error,omitempty"`
	Detail    string   `json:"detail,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Retries   int      `json:"retries"`
}

var urlPattern = regexp.MustCompile(`https?://[^\s)\]}>"']+`)

// extractURLs mines http(s) URLs out of free-form text, preserving order,
// dropping duplicates and trailing punctuation.
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?'\"")
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// coerceJSONObject parses text as a JSON object if it looks like one.
// Returns nil for anything else, including JSON arrays and scalars.
func coerceJSONObject(text string) map[string]any {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}
	return obj
}

// extractAnswer splits the assistant message into answer content and sources.
// The search prompt asks the model for a JSON object {content, sources};
// when the model complied those fields win. Otherwise the whole message is
// the content and sources come from the response's top-level citations if
// any, else from URLs mined out of the text.
func extractAnswer(message string, citations []string) (content string, sources []Source, raw string) {
	obj := coerceJSONObject(message)
	if obj == nil {
		content = message
		raw = message
	} else {
		content, _ = obj["content"].(string)
		if list, ok := obj["sources"].([]any); ok {
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				u, _ := m["url"].(string)
				if u == "" {
					continue
				}
				title, _ := m["title"].(string)
				snippet, _ := m["snippet"].(string)
				sources = append(sources, Source{URL: u, Title: title, Snippet: snippet})
			}
		}
	}

	if len(sources) == 0 {
		for _, u := range citations {
			if u != "" {
				sources = append(sources, Source{URL: u})
			}
		}
	}
	if len(sources) == 0 {
		for _, u := range extractURLs(content) {
			sources = append(sources, Source{URL: u})
		}
	}
	return content, sources, raw
}

// ParseAnswer is the exported form of extractAnswer for callers that get
// the assistant message through another transport, such as a host-managed
// provider.
func ParseAnswer(message string) (content string, sources []Source) {
	content, sources, _ = extractAnswer(message, nil)
	return content, sources
}

// truncateRaw caps raw response bodies stored on failure results.
func truncateRaw(s string) string {
	const max = 2000
	if len(s) > max {
		return s[:max]
	}
	return s
}
