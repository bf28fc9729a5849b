package grok

import "fmt"

// Short error codes surfaced on failed Results. Programmatic callers switch
// on these; humans read the Detail string next to them.
const (
	ErrMissingConfig = "missing_config"
	ErrRequestFailed = "request_failed"
	ErrAPIError      = "api_error"
	ErrDecode        = "decode_error"
	ErrEmptyResponse = "empty_response"
)

// httpErrorCode builds the code for a non-2xx response, e.g. "http_401".
func httpErrorCode(status int) string {
	return fmt.Sprintf("http_%d", status)
}

// statusHints maps common failure statuses to actionable advice. The hint is
// appended to the Detail string, never used for control flow.
var statusHints = map[int]string{
	400: "malformed request, check the extra_body configuration",
	401: "authentication failed, check the api_key",
	403: "access denied, check API permissions",
	404: "endpoint not found, check the base_url configuration",
	429: "rate limited, try again later",
	500: "server internal error",
	502: "bad gateway, the API may be temporarily unavailable",
	503: "service unavailable, try again later",
}

// httpErrorDetail renders "HTTP <status> - <hint>" for a failed response.
func httpErrorDetail(status int) string {
	detail := fmt.Sprintf("HTTP %d", status)
	if hint, ok := statusHints[status]; ok {
		detail += " - " + hint
	}
	return detail
}
