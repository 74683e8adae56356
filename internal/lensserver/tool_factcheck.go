package lensserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/router"
)

// FactCheckInput is the input for fact_check.
type FactCheckInput struct {
	Text string `json:"text" jsonschema:"Statement to check, at most 500 characters"`
}

func registerFactCheck(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fact_check",
		Description: "Fact-check a short statement (max 500 characters) with Gemini. Returns verdict (True, False, Partially True, Misleading, Unverifiable, Opinion or Unknown), confidence 0-1 or null, explanation and sources. Requires a Gemini API key.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.factCheck)
}

// factCheck leaves length and blank checks to the router so they surface as events.
func (t *tools) factCheck(ctx context.Context, _ *mcp.CallToolRequest, input FactCheckInput) (*mcp.CallToolResult, OperationOutput, error) {
	return nil, t.dispatch(ctx, router.Request{Action: router.ActionFactCheckSelection, Text: input.Text}), nil
}
