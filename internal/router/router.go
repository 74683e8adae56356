// Package router dispatches action requests to the transcript, comment and
// fact-check components and reports progress as events.
//
// One operation runs at a time. Every Dispatch emits at least one
// updateStatus event followed by exactly one terminal event, except for
// rejected requests (busy, unknown action) which get the terminal event only.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
	"github.com/anatolykoptev/go_ytlens/internal/engine/analysis"
	"github.com/anatolykoptev/go_ytlens/internal/engine/sources"
	"github.com/anatolykoptev/go_ytlens/internal/toolutil"
)

// MaxSelectionRunes caps fact-check input.
const MaxSelectionRunes = 500

var (
	ErrBusy          = errors.New("another operation is in progress")
	ErrTextTooLong   = fmt.Errorf("selected text is too long (max %d characters)", MaxSelectionRunes)
	ErrEmptyText     = errors.New("no text selected")
	ErrUnknownAction = errors.New("unknown action")
)

// Request is one action invocation. VideoID, when set, takes precedence
// over PageURL.
type Request struct {
	Action     Action   `json:"action"`
	PageURL    string   `json:"page_url,omitempty"`
	VideoID    string   `json:"video_id,omitempty"`
	Text       string   `json:"text,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// KeySource supplies the current credentials.
type KeySource interface {
	Get(ctx context.Context) (engine.Credentials, error)
}

// State is a router snapshot. Action is empty when idle.
type State struct {
	Busy   bool   `json:"busy"`
	Action Action `json:"action,omitempty"`
}

// Router serializes operations. The zero value is not usable; call New.
type Router struct {
	keys KeySource

	transcript func(ctx context.Context, creds engine.Credentials, videoID string, langs []string) (sources.TranscriptResult, error)
	comments   func(ctx context.Context, creds engine.Credentials, videoID string, maxResults int, status analysis.StatusFunc) (analysis.CommentAnalysis, error)
	factCheck  func(ctx context.Context, creds engine.Credentials, text string) (analysis.FactCheckResult, error)

	mu     sync.Mutex
	active Action
}

// New builds a router reading credentials from keys.
func New(keys KeySource) *Router {
	return &Router{
		keys:       keys,
		transcript: sources.FetchTranscript,
		comments:   analysis.NewCommentAnalyzer().Analyze,
		factCheck:  analysis.FactCheck,
	}
}

// State reports whether an operation is in flight.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{Busy: r.active != "", Action: r.active}
}

func (r *Router) acquire(a Action) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != "" {
		return r.active, false
	}
	r.active = a
	return a, true
}

func (r *Router) release() {
	r.mu.Lock()
	r.active = ""
	r.mu.Unlock()
}

// Dispatch runs req to completion, emitting its events to sink, and returns
// the terminal event. A nil sink discards events.
func (r *Router) Dispatch(ctx context.Context, req Request, sink EventSink) (ev Event) {
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	term := terminalType(req.Action)
	if term == EventUpdateStatus {
		ev = errorEvent(term, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action))
		sink.Emit(ev)
		return ev
	}
	if current, ok := r.acquire(req.Action); !ok {
		engine.IncrRouterRejected()
		slog.Warn("router: rejected while busy",
			slog.String("action", string(req.Action)), slog.String("active", string(current)))
		ev = errorEvent(term, ErrBusy)
		sink.Emit(ev)
		return ev
	}
	defer r.release()

	defer func() {
		if p := recover(); p != nil {
			slog.Error("router: operation panicked", slog.String("action", string(req.Action)), slog.Any("panic", p))
			ev = errorEvent(term, fmt.Errorf("internal error: %v", p))
			sink.Emit(ev)
		}
	}()

	var status analysis.StatusFunc = func(msg string) {
		sink.Emit(Event{Type: EventUpdateStatus, Payload: Payload{Message: msg, IsProcessing: true}})
	}

	_ = engine.TrackOperation(ctx, string(req.Action), func(ctx context.Context) error {
		switch req.Action {
		case ActionGetTranscript:
			ev = r.getTranscript(ctx, req, status)
		case ActionAnalyzeComments:
			ev = r.analyzeComments(ctx, req, status)
		default:
			ev = r.factCheckSelection(ctx, req, status)
		}
		return nil
	})
	sink.Emit(ev)
	return ev
}

func (r *Router) getTranscript(ctx context.Context, req Request, status analysis.StatusFunc) Event {
	status("Fetching transcript...")
	term := EventDisplayTranscript

	videoID, err := resolve(req)
	if err != nil {
		return errorEvent(term, err)
	}
	creds, err := r.credentials(ctx)
	if err != nil {
		return errorEvent(term, err)
	}
	res, err := r.transcript(ctx, creds, videoID, req.Languages)
	if err != nil {
		return errorEvent(term, err)
	}
	msg := "Transcript loaded (" + res.Language + ")."
	if res.Kind == sources.TranscriptMetadata {
		msg = res.Summary()
	}
	return Event{Type: term, Payload: Payload{Data: res, Message: msg}}
}

func (r *Router) analyzeComments(ctx context.Context, req Request, status analysis.StatusFunc) Event {
	status("Analyzing comments...")
	term := EventDisplayCommentAnalysis

	videoID, err := resolve(req)
	if err != nil {
		return errorEvent(term, err)
	}
	creds, err := r.credentials(ctx)
	if err != nil {
		return errorEvent(term, err)
	}
	res, err := r.comments(ctx, creds, videoID, req.MaxResults, status)
	if err != nil {
		return errorEvent(term, err)
	}
	msg := fmt.Sprintf("Analyzed %d of %d comments.", res.TotalAnalyzed, res.TotalFetched)
	if res.TotalFetched == 0 {
		msg = "No comments found."
	}
	return Event{Type: term, Payload: Payload{Data: res, Message: msg}}
}

func (r *Router) factCheckSelection(ctx context.Context, req Request, status analysis.StatusFunc) Event {
	status("Fact-checking selection...")
	term := EventDisplayFactCheck

	switch n := toolutil.RuneLen(req.Text); {
	case n == 0:
		return errorEvent(term, ErrEmptyText)
	case n > MaxSelectionRunes:
		return errorEvent(term, ErrTextTooLong)
	}
	creds, err := r.credentials(ctx)
	if err != nil {
		return errorEvent(term, err)
	}
	res, err := r.factCheck(ctx, creds, strings.TrimSpace(req.Text))
	if err != nil {
		ev := errorEvent(term, err)
		ev.Payload.Data = res
		return ev
	}
	return Event{Type: term, Payload: Payload{Data: res, Message: "Verdict: " + res.Verdict}}
}

// credentials refreshes the key snapshot for one operation.
func (r *Router) credentials(ctx context.Context) (engine.Credentials, error) {
	if r.keys == nil {
		return engine.Credentials{}, nil
	}
	creds, err := r.keys.Get(ctx)
	if err != nil {
		return engine.Credentials{}, fmt.Errorf("read keys: %w", err)
	}
	return creds, nil
}

func resolve(req Request) (string, error) {
	if id := strings.TrimSpace(req.VideoID); id != "" {
		return id, nil
	}
	return sources.ResolveVideoID(req.PageURL)
}

func errorEvent(t EventType, err error) Event {
	return Event{Type: t, Payload: Payload{Error: err.Error(), Message: err.Error(), IsError: true}}
}
