package discord

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseGrokCommand(t *testing.T) {
	tests := []struct {
		text      string
		wantQuery string
		wantOK    bool
	}{
		{"!grok latest Go release", "latest Go release", true},
		{"/grok latest Go release", "latest Go release", true},
		{"!grok", "", true},
		{"  /grok  spaced  ", "spaced", true},
		{"!grokfoo", "", false},
		{"hello there", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			query, ok := parseGrokCommand(tt.text)
			if ok != tt.wantOK || query != tt.wantQuery {
				t.Errorf("parseGrokCommand(%q) = (%q, %v), want (%q, %v)",
					tt.text, query, ok, tt.wantQuery, tt.wantOK)
			}
		})
	}
}

func TestSplitMessageShortText(t *testing.T) {
	parts := splitMessage("short answer", 2000)
	if len(parts) != 1 || parts[0] != "short answer" {
		t.Errorf("parts = %v", parts)
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("a", 1500) + "\n" + strings.Repeat("b", 1500)
	parts := splitMessage(text, 2000)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[0] != strings.Repeat("a", 1500) || parts[1] != strings.Repeat("b", 1500) {
		t.Error("split did not land on the newline boundary")
	}
}

func TestSplitMessageKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("界", 2100)
	parts := splitMessage(text, 2000)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	for i, part := range parts {
		if !utf8.ValidString(part) {
			t.Errorf("part %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(part); n > 2000 {
			t.Errorf("part %d has %d characters, want <= 2000", i, n)
		}
	}
	if strings.Join(parts, "") != text {
		t.Error("split lost content")
	}
}
