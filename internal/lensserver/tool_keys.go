package lensserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// SetKeysInput is the input for set_api_keys.
type SetKeysInput struct {
	YouTubeAPIKey string `json:"youtube_api_key,omitempty" jsonschema:"YouTube Data API v3 key"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty" jsonschema:"Gemini API key"`
}

// KeyStatus reports which keys are present. Values are never returned.
type KeyStatus struct {
	YouTubeAPIKey bool   `json:"youtube_api_key"`
	GeminiAPIKey  bool   `json:"gemini_api_key"`
	Message       string `json:"message,omitempty"`
}

func registerKeys(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_api_keys",
		Description: "Store the YouTube and/or Gemini API key in the local key store. Omitted keys are left unchanged.",
	}, t.setKeys)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "api_key_status",
		Description: "Report whether the YouTube and Gemini API keys are set. Never returns the key values.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.keyStatus)
}

func (t *tools) setKeys(ctx context.Context, _ *mcp.CallToolRequest, input SetKeysInput) (*mcp.CallToolResult, *KeyStatus, error) {
	in := engine.Credentials{YouTubeAPIKey: input.YouTubeAPIKey, GeminiAPIKey: input.GeminiAPIKey}
	if !in.HasYouTube() && !in.HasGemini() {
		return nil, nil, errors.New("at least one of youtube_api_key or gemini_api_key is required")
	}
	if err := t.keys.SetAll(ctx, in); err != nil {
		return nil, nil, err
	}
	st, err := t.status(ctx)
	if err != nil {
		return nil, nil, err
	}
	st.Message = "API keys saved."
	return nil, st, nil
}

func (t *tools) keyStatus(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, *KeyStatus, error) {
	st, err := t.status(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, st, nil
}

func (t *tools) status(ctx context.Context) (*KeyStatus, error) {
	c, err := t.keys.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &KeyStatus{YouTubeAPIKey: c.HasYouTube(), GeminiAPIKey: c.HasGemini()}, nil
}
