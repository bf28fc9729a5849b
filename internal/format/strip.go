package format

import (
	"regexp"
	"strings"
)

var (
	codeBlockRegex = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	inlineRegex    = regexp.MustCompile("`([^`]+)`")
	headerRegex    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRegex      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRegex    = regexp.MustCompile(`\*([^*]+)\*`)
	underItalic    = regexp.MustCompile(`\b_([^_]+)_\b`)
	strikeRegex    = regexp.MustCompile(`~~([^~]+)~~`)
	linkRegex      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	bulletRegex    = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
)

// StripMarkdown removes Markdown formatting markers, leaving readable plain
// text for channels that render messages verbatim. Link URLs are kept next
// to their text since citations matter here.
func StripMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = codeBlockRegex.ReplaceAllString(text, "$1")
	text = inlineRegex.ReplaceAllString(text, "$1")
	text = headerRegex.ReplaceAllString(text, "")
	text = boldRegex.ReplaceAllString(text, "$1")
	text = italicRegex.ReplaceAllString(text, "$1")
	text = underItalic.ReplaceAllString(text, "$1")
	text = strikeRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1 ($2)")
	text = bulletRegex.ReplaceAllString(text, "${1}- ")

	return strings.TrimSpace(text)
}
