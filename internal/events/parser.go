// Package events parses interaction events from JSON input and maps them to
// theme sound lookup chains.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// EventKind classifies an interaction event for sound mapping
type EventKind int

const (
	Click EventKind = iota
	PointerEnter
	PointerLeave
	Focus
	Success
	Error
	Notify
	Unknown
)

func (k EventKind) String() string {
	switch k {
	case Click:
		return "click"
	case PointerEnter:
		return "pointerenter"
	case PointerLeave:
		return "pointerleave"
	case Focus:
		return "focus"
	case Success:
		return "success"
	case Error:
		return "error"
	case Notify:
		return "notify"
	default:
		slog.Warn("EventKind.String() received unknown kind", "kind", int(k))
		return "unknown"
	}
}

// InteractionEvent represents a parsed interaction event
type InteractionEvent struct {
	Event   string `json:"event"`             // interaction name ("click", "pointerenter", ...)
	Element string `json:"element,omitempty"` // element identifier the interaction hit
	Hint    string `json:"hint,omitempty"`    // optional sound hint overriding defaults
	Session string `json:"session,omitempty"` // session identifier for tracking
}

// Parser parses interaction JSON into structured events
type Parser struct{}

// NewParser creates a new interaction event parser
func NewParser() *Parser {
	slog.Debug("creating new event parser")
	return &Parser{}
}

// Parse parses one JSON event. The event field is required; everything else
// is optional.
func (p *Parser) Parse(data []byte) (*InteractionEvent, error) {
	if len(data) == 0 {
		err := fmt.Errorf("empty JSON data")
		slog.Error("parse failed: empty data", "error", err)
		return nil, err
	}

	slog.Debug("parsing event JSON", "size_bytes", len(data))

	var event InteractionEvent
	err := json.Unmarshal(data, &event)
	if err != nil {
		preview := string(data)
		if len(preview) > 100 {
			preview = preview[:100]
		}
		slog.Error("failed to unmarshal event JSON", "error", err, "data_preview", preview)
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	if event.Event == "" {
		err := fmt.Errorf("missing required field: event")
		slog.Error("validation failed", "error", err)
		return nil, err
	}

	slog.Info("interaction event parsed",
		"event", event.Event,
		"element", event.Element,
		"hint", event.Hint)

	return &event, nil
}

// Kind maps the event name onto an EventKind
func (e *InteractionEvent) Kind() EventKind {
	switch strings.ToLower(e.Event) {
	case "click", "tap", "press":
		return Click
	case "pointerenter", "hover", "mouseenter":
		return PointerEnter
	case "pointerleave", "mouseleave":
		return PointerLeave
	case "focus":
		return Focus
	case "success":
		return Success
	case "error", "failure":
		return Error
	case "notify", "notification":
		return Notify
	default:
		return Unknown
	}
}
