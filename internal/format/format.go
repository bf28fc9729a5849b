package format

import (
	"fmt"
	"strings"

	"github.com/grokscout/grokscout/internal/grok"
)

// Options control how a search result is rendered for a chat surface.
type Options struct {
	ShowSources bool
	MaxSources  int  // 0 = unlimited
	PlainText   bool // strip Markdown markers from the answer text
}

// capSources applies the MaxSources limit, keeping original order.
func capSources(sources []grok.Source, max int) []grok.Source {
	if max > 0 && len(sources) > max {
		return sources[:max]
	}
	return sources
}

// Display renders a result as a human-readable chat message: the answer,
// an optional numbered source list and an elapsed-time footer. The answer
// text itself is never truncated.
func Display(res *grok.Result, opts Options) string {
	if !res.OK {
		detail := res.Detail
		if detail == "" {
			detail = "unknown error"
		}
		return "Search failed: " + detail
	}

	content := res.Content
	if opts.PlainText {
		content = StripMarkdown(content)
	}

	lines := []string{content}

	if opts.ShowSources && len(res.Sources) > 0 {
		lines = append(lines, "\nSources:")
		for i, src := range capSources(res.Sources, opts.MaxSources) {
			if src.Title != "" {
				lines = append(lines, fmt.Sprintf("  %d. %s\n     %s", i+1, src.Title, src.URL))
			} else {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+1, src.URL))
			}
		}
	}

	lines = append(lines, fmt.Sprintf("\n(took %dms)", res.ElapsedMS))
	return strings.Join(lines, "\n")
}

// ForLLM renders a result as plain text for tool output. Snippets are
// included so the calling model can judge source relevance; on failure the
// raw body is appended for diagnosis.
func ForLLM(res *grok.Result, opts Options) string {
	if !res.OK {
		detail := res.Detail
		if detail == "" {
			detail = "unknown error"
		}
		out := "Search failed: " + detail
		if res.Raw != "" {
			out += "\n" + res.Raw
		}
		return out
	}

	content := res.Content
	if opts.PlainText {
		content = StripMarkdown(content)
	}

	lines := []string{"Search results:\n" + content}

	if opts.ShowSources && len(res.Sources) > 0 {
		lines = append(lines, "\nReferences:")
		for i, src := range capSources(res.Sources, opts.MaxSources) {
			if src.Title != "" {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+1, src.Title))
				lines = append(lines, "     "+src.URL)
			} else {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+1, src.URL))
			}
			if src.Snippet != "" {
				lines = append(lines, "     "+src.Snippet)
			}
		}
	}

	return strings.Join(lines, "\n")
}
