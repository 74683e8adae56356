package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and functions for engine consumers.
type BrowserClient = stealth.BrowserClient

var DefaultRetryConfig = stealth.DefaultRetryConfig

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
func IsRetryableStatus(code int) bool  { return stealth.IsRetryableStatus(code) }

func RetryHTTP(ctx context.Context, rc stealth.RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}

// maxPageBytes caps how much of a watch page is read.
const maxPageBytes = 6 * 1024 * 1024

// FetchPage GETs an HTML page with browser-like headers and no credentials.
// Uses the TLS-fingerprinting browser client when configured.
func FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	headers := ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"

	if cfg.BrowserClient != nil {
		data, _, status, err := cfg.BrowserClient.Do(http.MethodGet, pageURL, headers, nil)
		if err != nil {
			return nil, fmt.Errorf("browser fetch: %w", err)
		}
		if status != http.StatusOK {
			return nil, &APIError{StatusCode: status, Message: http.StatusText(status)}
		}
		return data, nil
	}

	body, _, err := GetBody(ctx, pageURL, headers, maxPageBytes)
	return body, err
}

// GetBody performs a retried GET through the shared HTTP client and returns the
// body bounded by limit. Any Accept-Encoding in headers is dropped so the
// transport negotiates gzip and decodes it. Non-200 responses become *APIError,
// with the provider message extracted when the body is a Google-style error
// envelope.
func GetBody(ctx context.Context, rawURL string, headers map[string]string, limit int64) ([]byte, int, error) {
	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			// net/http only decompresses when it set Accept-Encoding itself.
			if strings.EqualFold(k, "accept-encoding") {
				continue
			}
			req.Header.Set(k, v)
		}
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, newAPIError(resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}
