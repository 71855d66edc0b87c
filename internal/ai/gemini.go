package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/genai"
)

// Gemini is a Backend for the Gemini API. A client is built per request
// because every credential carries its own key.
type Gemini struct {
	baseURL    string
	httpClient *http.Client
}

// NewGemini returns a Gemini backend. baseURL overrides the API endpoint and
// may be empty.
func NewGemini(baseURL string, httpTimeout time.Duration) *Gemini {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &Gemini{baseURL: baseURL, httpClient: &http.Client{Timeout: httpTimeout}}
}

func (g *Gemini) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", g.wrapError(ctx, err)
	}
	return result.Text(), nil
}

func (g *Gemini) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generate content: %w", fromGenaiError(apiErr))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("generate content: %w", fromGenaiError(*apiErrPtr))
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		host := urlErr.URL
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			host = u.Host
		}
		return &UnreachableError{Host: host, Err: err}
	}
	return fmt.Errorf("generate content: %w", err)
}

// fromGenaiError classifies a Gemini API error. A google.rpc.RetryInfo
// detail supplies the retry delay of a rate limit.
func fromGenaiError(e genai.APIError) *APIError {
	out := &APIError{
		Provider:   ProviderGemini,
		StatusCode: e.Code,
		Code:       e.Status,
		Message:    e.Message,
	}
	out.Kind = classifyStatus(e.Code, e.Status, e.Message)
	if out.Kind != KindRateLimit {
		return out
	}
	for _, d := range e.Details {
		if t, _ := d["@type"].(string); t != "type.googleapis.com/google.rpc.RetryInfo" {
			continue
		}
		if v, ok := d["retryDelay"].(string); ok {
			if delay, err := time.ParseDuration(v); err == nil {
				out.RetryAfter = delay
			}
		}
	}
	return out
}
