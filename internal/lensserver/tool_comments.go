package lensserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/router"
)

// CommentsInput is the input for analyze_comments.
type CommentsInput struct {
	URL        string `json:"url,omitempty" jsonschema:"YouTube watch page URL"`
	VideoID    string `json:"video_id,omitempty" jsonschema:"Video id, used instead of url"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum comments to fetch (default: 50)"`
}

func registerComments(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_comments",
		Description: "Sample top-level comments of a YouTube video and classify each as positive, negative or neutral with Gemini. Returns counts and a labeled sample. Requires both YouTube and Gemini API keys.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.analyzeComments)
}

func (t *tools) analyzeComments(ctx context.Context, _ *mcp.CallToolRequest, input CommentsInput) (*mcp.CallToolResult, OperationOutput, error) {
	req, err := videoRequest(router.ActionAnalyzeComments, input.URL, input.VideoID)
	if err != nil {
		return nil, OperationOutput{}, err
	}
	req.MaxResults = input.MaxResults
	return nil, t.dispatch(ctx, req), nil
}
