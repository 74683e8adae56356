package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Gemini generateContent client. The request/response shapes are the native
// REST ones: the structured-output path needs candidates[0].content verbatim,
// which OpenAI-compatible wrappers do not expose.

const maxLLMResponseBytes = 2 * 1024 * 1024

type genPart struct {
	Text string `json:"text"`
}

type genContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []genPart `json:"parts"`
}

type genConfig struct {
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

type generateContentRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig *genConfig   `json:"generationConfig,omitempty"`
}

// GenerateRequest is a single-prompt generateContent call.
type GenerateRequest struct {
	Model       string
	Prompt      string
	JSONOutput  bool     // sets generationConfig.responseMimeType=application/json
	Temperature *float64 // nil = provider default
}

// GenerateResponse holds the decoded candidates of a generateContent reply.
type GenerateResponse struct {
	Candidates []struct {
		Content json.RawMessage `json:"content"`
	} `json:"candidates"`
}

// Text returns candidates[0].content.parts[0].text, or "" when the first
// candidate carries no text part.
func (r *GenerateResponse) Text() string {
	raw := r.Content()
	if len(raw) == 0 {
		return ""
	}
	var c genContent
	if err := json.Unmarshal(raw, &c); err != nil || len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[0].Text
}

// Content returns the raw first-candidate content, or nil.
func (r *GenerateResponse) Content() json.RawMessage {
	if r == nil || len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content
}

// Generate POSTs one prompt to {base}/models/{model}:generateContent.
// Non-2xx replies become *APIError carrying the provider's error.message.
func Generate(ctx context.Context, apiKey string, gr GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrGeminiKeyNotSet
	}
	metrics.LLMCalls.Add(1)

	payload := generateContentRequest{
		Contents: []genContent{{Role: "user", Parts: []genPart{{Text: gr.Prompt}}}},
	}
	if gr.JSONOutput || gr.Temperature != nil {
		payload.GenerationConfig = &genConfig{Temperature: gr.Temperature}
		if gr.JSONOutput {
			payload.GenerationConfig.ResponseMimeType = "application/json"
		}
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", cfg.GeminiAPIBase, modelPath(gr.Model), url.QueryEscape(apiKey))

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLLMResponseBytes))
	if err != nil {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("gemini: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("gemini: %w", newAPIError(resp.StatusCode, body))
	}

	var out GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("gemini: %w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

func modelPath(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = cfg.GeminiFastModel
	}
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
