// Package lensserver exposes the router actions and key management as MCP tools.
package lensserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
	"github.com/anatolykoptev/go_ytlens/internal/router"
)

// KeyStore is the credential storage the key tools write to.
type KeyStore interface {
	Get(ctx context.Context) (engine.Credentials, error)
	SetAll(ctx context.Context, c engine.Credentials) error
}

// OperationOutput is what every action tool returns: the terminal event plus
// the status messages emitted before it.
type OperationOutput struct {
	Event  router.Event `json:"event"`
	Status []string     `json:"status"`
}

type tools struct {
	router *router.Router
	keys   KeyStore
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 5

// RegisterTools registers get_transcript, analyze_comments, fact_check,
// set_api_keys and api_key_status on server.
func RegisterTools(server *mcp.Server, rt *router.Router, keys KeyStore) {
	t := &tools{router: rt, keys: keys}
	registerTranscript(server, t)
	registerComments(server, t)
	registerFactCheck(server, t)
	registerKeys(server, t)
}

// dispatch runs req and collects its events.
func (t *tools) dispatch(ctx context.Context, req router.Request) OperationOutput {
	rec := &router.Recorder{}
	ev := t.router.Dispatch(ctx, req, rec)
	return OperationOutput{Event: ev, Status: rec.StatusMessages()}
}

// videoRequest builds a request from the url/video_id pair tools accept.
func videoRequest(action router.Action, url, videoID string) (router.Request, error) {
	url, videoID = strings.TrimSpace(url), strings.TrimSpace(videoID)
	if url == "" && videoID == "" {
		return router.Request{}, fmt.Errorf("url or video_id is required")
	}
	return router.Request{Action: action, PageURL: url, VideoID: videoID}, nil
}
