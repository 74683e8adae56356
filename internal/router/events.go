package router

import "sync"

// Action names a request.
type Action string

const (
	ActionGetTranscript      Action = "getTranscript"
	ActionAnalyzeComments    Action = "analyzeComments"
	ActionFactCheckSelection Action = "factCheckSelection"
)

// EventType names a response.
type EventType string

const (
	EventUpdateStatus           EventType = "updateStatus"
	EventDisplayTranscript      EventType = "displayTranscript"
	EventDisplayCommentAnalysis EventType = "displayCommentAnalysis"
	EventDisplayFactCheck       EventType = "displayFactCheck"
)

// terminalType maps an action to the event type that ends it.
func terminalType(a Action) EventType {
	switch a {
	case ActionGetTranscript:
		return EventDisplayTranscript
	case ActionAnalyzeComments:
		return EventDisplayCommentAnalysis
	case ActionFactCheckSelection:
		return EventDisplayFactCheck
	}
	return EventUpdateStatus
}

// Payload is shared by every event type; all fields are optional.
type Payload struct {
	Data         any    `json:"data,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	IsError      bool   `json:"isError,omitempty"`
	IsProcessing bool   `json:"isProcessing,omitempty"`
}

// Event is one message from the router to a caller.
type Event struct {
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

// EventSink receives the events of a single operation.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Recorder is an EventSink that keeps every event in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// StatusMessages returns the messages of the recorded updateStatus events.
func (r *Recorder) StatusMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		if e.Type == EventUpdateStatus {
			out = append(out, e.Payload.Message)
		}
	}
	return out
}
