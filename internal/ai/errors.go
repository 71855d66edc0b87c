package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies a rejected generation request.
type ErrorKind string

const (
	KindOther         ErrorKind = "other"
	KindAuth          ErrorKind = "auth"
	KindRateLimit     ErrorKind = "rate_limit"
	KindQuota         ErrorKind = "quota"
	KindModelNotFound ErrorKind = "model_not_found"
	KindBadRequest    ErrorKind = "bad_request"
	KindServer        ErrorKind = "server"
	KindUnreachable   ErrorKind = "unreachable"
	KindEmpty         ErrorKind = "empty_response"
	KindCanceled      ErrorKind = "canceled"
)

// APIError is a non-success answer from a generation service.
type APIError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Code       string // provider code or status, e.g. "PERMISSION_DENIED"
	Message    string
	RequestID  string
	RetryAfter time.Duration // rate limits only, zero when not advertised
}

func (e *APIError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: status=%d", e.Provider, e.Kind, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&sb, " code=%s", e.Code)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&sb, " request_id=%s", e.RequestID)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&sb, " retry_after=%ds", int(e.RetryAfter.Seconds()))
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, " message=%s", e.Message)
	}
	return sb.String()
}

// UnreachableError indicates the service endpoint could not be reached.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// classifyStatus picks the kind for an HTTP status. Quota problems are
// recognised from the code and message since providers disagree on status.
func classifyStatus(status int, code, msg string) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimit
	case status == 404:
		if strings.EqualFold(code, "model_not_found") || containsAllFold(msg, "model", "not", "found") {
			return KindModelNotFound
		}
		return KindOther
	case status == 400:
		return KindBadRequest
	case strings.EqualFold(code, "quota_exceeded") || containsAnyFold(msg, "quota", "billing", "limit exceeded"):
		return KindQuota
	case status >= 500 && status <= 599:
		return KindServer
	}
	return KindOther
}

// KindOf reports the kind of the last failure recorded in err's chain.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	var unreach *UnreachableError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Kind
	case errors.As(err, &unreach):
		return KindUnreachable
	case errors.Is(err, ErrEmptyResponse):
		return KindEmpty
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindOther
}

// Hint returns a one-line suggestion for the user, or "" when there is
// nothing more useful to say than the error itself.
func Hint(err error) string {
	if errors.Is(err, ErrNoUsableCredentials) {
		return "no credentials configured: set GEMINI_KEY_1 or run 'quizloom config set credential.<label> <key>'"
	}
	var apiErr *APIError
	errors.As(err, &apiErr)
	switch KindOf(err) {
	case KindAuth:
		return "a credential was rejected: check the keys in config or GEMINI_KEY_n"
	case KindRateLimit:
		if apiErr != nil && apiErr.RetryAfter > 0 {
			return fmt.Sprintf("rate limited, try again in ~%ds or add another credential", int(apiErr.RetryAfter.Seconds()))
		}
		return "rate limited by the service, retry later or add another credential"
	case KindQuota:
		return "quota or billing issue, check the service account"
	case KindModelNotFound:
		return "model not found, verify the model name"
	case KindBadRequest:
		return "request rejected, try fewer or smaller references"
	case KindServer:
		return "the service appears unavailable, retry later"
	case KindUnreachable:
		return "endpoint unreachable, check the network and base URL"
	case KindEmpty:
		return "the model returned no text, retry or choose another model"
	case KindCanceled:
		return "the request timed out or was cancelled, raise --timeout-sec or http_timeout_sec"
	}
	return ""
}

func containsAllFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if !containsFold(s, sub) {
			return false
		}
	}
	return true
}

func containsAnyFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	if s == "" || sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
