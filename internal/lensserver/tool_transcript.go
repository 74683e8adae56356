package lensserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/router"
)

// TranscriptInput is the input for get_transcript.
type TranscriptInput struct {
	URL       string   `json:"url,omitempty" jsonschema:"YouTube watch page URL"`
	VideoID   string   `json:"video_id,omitempty" jsonschema:"Video id, used instead of url"`
	Languages []string `json:"languages,omitempty" jsonschema:"Caption language preference, most preferred first (default: en, ta)"`
}

func registerTranscript(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Fetch the caption transcript of a YouTube video. Scrapes the watch page for caption tracks and returns the full text; when that fails, falls back to the Data API and lists the caption languages that exist. Requires a YouTube API key only for the fallback.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.getTranscript)
}

func (t *tools) getTranscript(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, OperationOutput, error) {
	req, err := videoRequest(router.ActionGetTranscript, input.URL, input.VideoID)
	if err != nil {
		return nil, OperationOutput{}, err
	}
	req.Languages = input.Languages
	return nil, t.dispatch(ctx, req), nil
}
