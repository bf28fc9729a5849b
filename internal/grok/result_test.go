package grok

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	text := "See https://a.example/doc. Also (https://b.example/page) and https://a.example/doc again, " +
		"plus [https://c.example/x?q=1]."
	want := []string{"https://a.example/doc", "https://b.example/page", "https://c.example/x?q=1"}
	if got := extractURLs(text); !reflect.DeepEqual(got, want) {
		t.Errorf("extractURLs() = %v, want %v", got, want)
	}
}

func TestCoerceJSONObject(t *testing.T) {
	if obj := coerceJSONObject(`  {"content":"hi"}  `); obj == nil || obj["content"] != "hi" {
		t.Errorf("expected parsed object, got %v", obj)
	}
	for _, in := range []string{"", "plain text", `["array"]`, `{"broken":`, `42`} {
		if obj := coerceJSONObject(in); obj != nil {
			t.Errorf("coerceJSONObject(%q) = %v, want nil", in, obj)
		}
	}
}

func TestExtractAnswerStructured(t *testing.T) {
	msg := `{"content":"Go 1.24 is out.","sources":[` +
		`{"url":"https://go.dev/blog","title":"Go Blog","snippet":"release notes"},` +
		`{"title":"no url, skipped"},` +
		`{"url":"https://go.dev/doc"}]}`

	content, sources, raw := extractAnswer(msg, nil)
	if content != "Go 1.24 is out." {
		t.Errorf("content = %q", content)
	}
	if raw != "" {
		t.Errorf("raw should be empty for structured answers, got %q", raw)
	}
	want := []Source{
		{URL: "https://go.dev/blog", Title: "Go Blog", Snippet: "release notes"},
		{URL: "https://go.dev/doc"},
	}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
}

func TestExtractAnswerPlainText(t *testing.T) {
	msg := "The answer lives at https://docs.example/a and https://docs.example/b."
	content, sources, raw := extractAnswer(msg, nil)
	if content != msg || raw != msg {
		t.Errorf("plain answer should pass through, content=%q raw=%q", content, raw)
	}
	if len(sources) != 2 || sources[0].URL != "https://docs.example/a" {
		t.Errorf("sources = %v", sources)
	}
}

func TestExtractAnswerCitationsPriority(t *testing.T) {
	// Citations fill in when the message itself carries no sources.
	content, sources, _ := extractAnswer("Bar is X.", []string{"https://a.example"})
	if content != "Bar is X." {
		t.Errorf("content = %q", content)
	}
	if len(sources) != 1 || sources[0].URL != "https://a.example" {
		t.Errorf("sources = %v", sources)
	}

	// Structured sources outrank citations.
	msg := `{"content":"x","sources":[{"url":"https://primary.example"}]}`
	_, sources, _ = extractAnswer(msg, []string{"https://secondary.example"})
	if len(sources) != 1 || sources[0].URL != "https://primary.example" {
		t.Errorf("structured sources should win over citations: %v", sources)
	}
}
