package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config holds everything one search call needs. Zero values fall back to
// sane defaults at call time (60s timeout, 1s retry delay, the standard
// retryable status set); MaxRetries is taken literally, 0 means no retries.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	EnableThinking bool
	ThinkingBudget int
	SystemPrompt   string

	ExtraBody    map[string]any
	ExtraHeaders map[string]string

	ReuseSession         bool
	MaxRetries           int
	RetryDelay           time.Duration
	RetryableStatusCodes []int
}

const (
	defaultTimeout    = 60 * time.Second
	defaultRetryDelay = 1 * time.Second
)

var defaultRetryableStatuses = []int{429, 500, 502, 503, 504}

// Client performs searches against an OpenAI-compatible Grok endpoint.
// When ReuseSession is set, one connection-pooled http.Client is shared
// across calls; it is safe for concurrent use and carries no application
// state beyond connection lifetime.
type Client struct {
	cfg     Config
	session *http.Client
}

// New creates a client for the given configuration.
func New(cfg Config) *Client {
	c := &Client{cfg: cfg}
	if cfg.ReuseSession {
		c.session = newHTTPClient(c.timeout())
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

func (c *Client) timeout() time.Duration {
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return defaultTimeout
}

func (c *Client) retryDelay() time.Duration {
	if c.cfg.RetryDelay > 0 {
		return c.cfg.RetryDelay
	}
	return defaultRetryDelay
}

func (c *Client) statusRetryable(status int) bool {
	codes := c.cfg.RetryableStatusCodes
	if codes == nil {
		codes = defaultRetryableStatuses
	}
	for _, code := range codes {
		if code == status {
			return true
		}
	}
	return false
}

func (c *Client) httpClient() *http.Client {
	if c.session != nil {
		return c.session
	}
	return newHTTPClient(c.timeout())
}

// attemptOutcome is the result of one HTTP round trip.
type attemptOutcome struct {
	comp      *completion
	code      string
	detail    string
	raw       string
	retryable bool
}

// Search runs one web search through the endpoint. It never returns a Go
// error: configuration, transport, HTTP, decode and empty-response failures
// all come back as a Result with OK=false, a short ErrorCode and a
// human-readable Detail.
func (c *Client) Search(ctx context.Context, query string) *Result {
	started := time.Now()
	reqID := uuid.NewString()[:8]

	res := &Result{Query: query, Sources: []Source{}}
	fail := func(code, detail, raw string) *Result {
		res.OK = false
		res.ErrorCode = code
		res.Detail = detail
		res.Raw = truncateRaw(raw)
		res.ElapsedMS = time.Since(started).Milliseconds()
		return res
	}

	baseURL := NormalizeBaseURL(c.cfg.BaseURL)
	if baseURL == "" {
		return fail(ErrMissingConfig, "base_url is not configured, set the Grok API endpoint in settings", "")
	}
	apiKey := NormalizeAPIKey(c.cfg.APIKey)
	if apiKey == "" {
		return fail(ErrMissingConfig, "api_key is not configured, set the API key in settings", "")
	}

	endpoint := baseURL + "/v1/chat/completions"
	payload, err := json.Marshal(c.buildBody(query))
	if err != nil {
		return fail(ErrRequestFailed, "marshal request: "+err.Error(), "")
	}
	headers := c.buildHeaders(apiKey)

	var comp *completion
	for attempt := 0; ; attempt++ {
		out := c.attempt(ctx, endpoint, headers, payload)
		if out.comp != nil {
			comp = out.comp
			break
		}
		if out.retryable && attempt < c.cfg.MaxRetries && ctx.Err() == nil {
			res.Retries = attempt + 1
			delay := c.retryDelay() * time.Duration(attempt+1)
			log.Printf("[grok] %s: %s, retrying in %v (attempt %d/%d)", reqID, out.detail, delay, attempt+1, c.cfg.MaxRetries)
			select {
			case <-ctx.Done():
				return fail(ErrRequestFailed, "request canceled: "+ctx.Err().Error(), "")
			case <-time.After(delay):
			}
			continue
		}
		return fail(out.code, out.detail, out.raw)
	}

	if msg := comp.errorMessage(); msg != "" {
		rawData, _ := json.Marshal(comp)
		return fail(ErrAPIError, "API returned an error: "+msg, string(rawData))
	}

	var message string
	if len(comp.Choices) > 0 {
		message = comp.Choices[0].Message.Content
	}
	if message == "" {
		rawData, _ := json.Marshal(comp)
		return fail(ErrEmptyResponse, "API returned an empty response, try again later", string(rawData))
	}

	content, sources, raw := extractAnswer(message, comp.Citations)
	res.OK = true
	res.Content = content
	if sources != nil {
		res.Sources = sources
	}
	res.Raw = raw
	res.Model = c.cfg.Model
	if comp.Model != "" {
		res.Model = comp.Model
	}
	if comp.Usage != nil {
		res.Usage = *comp.Usage
	} else {
		res.Usage = estimateUsage(query, message)
	}
	res.ElapsedMS = time.Since(started).Milliseconds()
	return res
}

// attempt performs one HTTP round trip and classifies the outcome.
// Transport failures and statuses in the retryable set are marked retryable;
// decode failures never are.
func (c *Client) attempt(ctx context.Context, endpoint string, headers map[string]string, payload []byte) attemptOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return attemptOutcome{code: ErrRequestFailed, detail: "build request: " + err.Error()}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		// Network flake or timeout; the caller decides whether another
		// attempt fits in the retry budget.
		return attemptOutcome{
			code:      ErrRequestFailed,
			detail:    "request failed: " + err.Error(),
			retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptOutcome{code: ErrRequestFailed, detail: "read response: " + err.Error(), retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return attemptOutcome{
			code:      httpErrorCode(resp.StatusCode),
			detail:    httpErrorDetail(resp.StatusCode),
			raw:       string(body),
			retryable: c.statusRetryable(resp.StatusCode),
		}
	}

	text := string(body)
	if isSSE(resp.Header.Get("Content-Type"), text) {
		comp := parseSSE(text)
		if comp == nil {
			return attemptOutcome{code: ErrDecode, detail: "failed to parse SSE stream", raw: text}
		}
		return attemptOutcome{comp: comp}
	}

	var comp completion
	if err := json.Unmarshal(body, &comp); err != nil {
		return attemptOutcome{code: ErrDecode, detail: "API returned non-JSON data: " + err.Error(), raw: text}
	}
	return attemptOutcome{comp: &comp}
}
