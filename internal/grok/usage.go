package grok

import "github.com/pkoukk/tiktoken-go"

// estimateUsage computes token counters locally for endpoints that omit the
// usage block. cl100k_base is close enough for accounting purposes across
// the OpenAI-compatible model family. Returns zero usage when the encoding
// is unavailable.
func estimateUsage(prompt, answer string) Usage {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return Usage{}
	}
	in := len(enc.Encode(prompt, nil, nil))
	out := len(enc.Encode(answer, nil, nil))
	return Usage{
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
		Estimated:        true,
	}
}
