package engine

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, status int, reply string, seen func(r *http.Request, body []byte)) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			seen(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	Init(Config{GeminiAPIBase: srv.URL + "/v1beta/"})
	t.Cleanup(func() { Init(Config{}) })
}

func TestGenerate_RequestShape(t *testing.T) {
	var path, key string
	var payload generateContentRequest
	geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]}}]}`,
		func(r *http.Request, body []byte) {
			path = r.URL.Path
			key = r.URL.Query().Get("key")
			require.NoError(t, json.Unmarshal(body, &payload))
		})

	resp, err := Generate(t.Context(), "k-123", GenerateRequest{Model: "gemini-2.0-flash", Prompt: "hi", JSONOutput: true})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Text())

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", path)
	assert.Equal(t, "k-123", key)
	require.Len(t, payload.Contents, 1)
	assert.Equal(t, "hi", payload.Contents[0].Parts[0].Text)
	require.NotNil(t, payload.GenerationConfig)
	assert.Equal(t, "application/json", payload.GenerationConfig.ResponseMimeType)
}

func TestGenerate_NoConfigWithoutJSON(t *testing.T) {
	var raw string
	geminiServer(t, http.StatusOK, `{"candidates":[]}`, func(_ *http.Request, body []byte) { raw = string(body) })

	resp, err := Generate(t.Context(), "k", GenerateRequest{Model: "models/gemini-2.5-pro", Prompt: "x"})
	require.NoError(t, err)
	assert.NotContains(t, raw, "generationConfig")
	assert.Empty(t, resp.Text())
	assert.Nil(t, resp.Content())
}

func TestGenerate_APIError(t *testing.T) {
	geminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := Generate(t.Context(), "bad", GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "HTTP 400: API key not valid")
	assert.False(t, errors.Is(err, ErrMalformedResponse))
}

func TestGenerate_MalformedBody(t *testing.T) {
	geminiServer(t, http.StatusOK, `not json`, nil)

	resp, err := Generate(t.Context(), "k", GenerateRequest{Prompt: "x"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_NoKey(t *testing.T) {
	_, err := Generate(t.Context(), "  ", GenerateRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrGeminiKeyNotSet)
}

func TestGenerateResponse_StructuredContent(t *testing.T) {
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"candidates":[{"content":{"verdict":"True"}}]}`), &resp))
	assert.Empty(t, resp.Text())
	assert.True(t, strings.Contains(string(resp.Content()), `"verdict"`))
}

func TestAPIError_PlainBody(t *testing.T) {
	err := newAPIError(http.StatusForbidden, []byte("  forbidden  "))
	assert.Equal(t, "HTTP 403: forbidden", err.Error())
	assert.Equal(t, "HTTP 500", (&APIError{StatusCode: 500}).Error())
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}
