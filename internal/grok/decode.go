package grok

import (
	"bufio"
	"encoding/json"
	"strings"
)

// completion is the decoded shape of a chat-completions response, whether it
// arrived as a single JSON object or was merged from an SSE stream.
type completion struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage     *Usage          `json:"usage"`
	Citations []string        `json:"citations,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// errorMessage unpacks the API error field, which providers return either as
// an object with a message or as a bare string.
func (c *completion) errorMessage() string {
	if len(c.Error) == 0 || string(c.Error) == "null" {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(c.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(c.Error, &s); err == nil {
		return s
	}
	return string(c.Error)
}

// streamChunk is one SSE event payload.
type streamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage     *Usage          `json:"usage"`
	Citations []string        `json:"citations,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// isSSE reports whether a response body should be parsed as an event stream.
// Some gateways stream without setting the content type, so the body prefix
// is checked as a fallback.
func isSSE(contentType, body string) bool {
	if strings.Contains(contentType, "text/event-stream") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(body), "data:")
}

// parseSSE merges a complete SSE body into one completion: delta contents are
// concatenated in arrival order, the first model name and the last usage
// block win. Malformed or empty events are skipped, not fatal. Returns nil
// when no event decoded at all.
func parseSSE(raw string) *completion {
	var content strings.Builder
	var model string
	var usage *Usage
	var citations []string
	decoded := false

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		decoded = true

		if model == "" {
			model = chunk.Model
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if len(chunk.Citations) > 0 {
			citations = chunk.Citations
		}
		if len(chunk.Choices) > 0 {
			content.WriteString(chunk.Choices[0].Delta.Content)
		}
	}

	if !decoded {
		return nil
	}

	comp := &completion{Model: model, Usage: usage, Citations: citations}
	comp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	comp.Choices[0].Message.Content = content.String()
	return comp
}
