package provider

import (
	"context"
	"log"
	"time"

	"github.com/grokscout/grokscout/internal/grok"
)

// SearchWith routes a search query through a host-managed provider instead
// of the direct search client. The provider's own transport policy applies;
// failures come back as failed Results, never as Go errors, matching the
// direct path.
func SearchWith(ctx context.Context, p Provider, query, systemPrompt string) *grok.Result {
	start := time.Now()
	res := &grok.Result{Query: query, Sources: []grok.Source{}}

	messages := []Message{
		{Role: "system", Content: grok.SystemPrompt(systemPrompt)},
		{Role: "user", Content: query},
	}

	answer, err := p.Send(ctx, messages, Options{Temperature: 0.2})
	res.ElapsedMS = time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("[provider] %s search failed: %v", p.Name(), err)
		res.ErrorCode = grok.ErrRequestFailed
		res.Detail = err.Error()
		return res
	}
	if answer == "" {
		res.ErrorCode = grok.ErrEmptyResponse
		res.Detail = "provider returned an empty answer"
		return res
	}

	res.OK = true
	content, sources := grok.ParseAnswer(answer)
	res.Content = content
	if sources != nil {
		res.Sources = sources
	}
	res.Model = p.Name()
	return res
}
