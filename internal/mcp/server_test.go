package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/grokscout/grokscout/internal/config"
	"github.com/grokscout/grokscout/internal/search"
)

func newTestServer(t *testing.T, mutate func(*config.Settings)) *Server {
	t.Helper()
	store, err := config.NewStoreAt(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if mutate != nil {
		if err := store.Update(mutate); err != nil {
			t.Fatal(err)
		}
	}
	return NewServer(store, search.NewRunner(store))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "grok_web_search"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestHandleWebSearch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"content":"Answer.","sources":[{"url":"https://a.example","snippet":"detail"}]}`}},
			},
		})
	}))
	defer api.Close()

	s := newTestServer(t, func(cfg *config.Settings) {
		cfg.BaseURL = api.URL
		cfg.APIKey = "xai-test"
		cfg.ShowSources = true
	})

	res, err := s.handleWebSearch(context.Background(), callRequest(map[string]any{"query": "foo"}))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Answer.") {
		t.Errorf("text missing answer: %q", text)
	}
	if !strings.Contains(text, "https://a.example") {
		t.Errorf("text missing reference: %q", text)
	}
}

func TestHandleWebSearchMissingQuery(t *testing.T) {
	s := newTestServer(t, nil)

	res, err := s.handleWebSearch(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing query")
	}
}

func TestHandleWebSearchFailureIsToolError(t *testing.T) {
	// No base_url / api_key configured
	s := newTestServer(t, nil)

	res, err := s.handleWebSearch(context.Background(), callRequest(map[string]any{"query": "foo"}))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing config")
	}
	if text := resultText(t, res); !strings.Contains(text, "Search failed") {
		t.Errorf("text = %q, want Search failed detail", text)
	}
}

func TestHandleWebSearchDisabledWithSkill(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Settings) {
		cfg.EnableSkill = true
		cfg.BaseURL = "https://api.x.ai"
		cfg.APIKey = "xai-test"
	})

	res, err := s.handleWebSearch(context.Background(), callRequest(map[string]any{"query": "foo"}))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error while skill is enabled")
	}
	if text := resultText(t, res); !strings.Contains(text, "skill") {
		t.Errorf("text = %q, want skill notice", text)
	}
}

func TestHandleReadConfigRedactsCredentials(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Settings) {
		cfg.APIKey = "xai-supersecretvalue"
		cfg.ExtraHeaders = map[string]string{"X-Proxy-Auth": "secret-token"}
	})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "grokscout://config"
	contents, err := s.handleReadConfig(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadConfig failed: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if strings.Contains(text, "supersecretvalue") {
		t.Error("api key leaked into config resource")
	}
	if strings.Contains(text, "secret-token") {
		t.Error("extra header value leaked into config resource")
	}
	if !strings.Contains(text, "X-Proxy-Auth") {
		t.Error("extra header name should remain visible")
	}

	// Redaction must not leak back into the stored settings
	if stored := s.store.Get(); stored.ExtraHeaders["X-Proxy-Auth"] != "secret-token" {
		t.Error("stored extra headers were mutated by redaction")
	}
}
