// Package feedback wires sound playback into UI-style event handlers. A
// Wrapper owns the loaders for its interaction sounds and returns handlers
// that trigger the sound and then delegate to whatever handler was already
// installed.
package feedback

import "log/slog"

// Event describes a single user interaction
type Event struct {
	Kind    string // interaction kind: "click", "pointerenter", ...
	Element string // element identifier the interaction hit
	Hint    string // optional sound hint overriding the default for Kind
}

// Handler consumes an interaction event
type Handler func(Event)

// Triggerer starts playback without blocking. Both trigger paths in this
// package are fire-and-forget.
type Triggerer interface {
	Trigger()
}

// Compose merges an injected handler with an existing one. The injected
// handler runs first, then the existing one; either side may be nil and the
// other still runs. Compose never suppresses the existing handler.
func Compose(injected, existing Handler) Handler {
	if injected == nil && existing == nil {
		return nil
	}
	if injected == nil {
		return existing
	}
	if existing == nil {
		return injected
	}
	return func(ev Event) {
		injected(ev)
		existing(ev)
	}
}

// Wrapper binds interaction kinds to sound triggers
type Wrapper struct {
	click Triggerer
	hover Triggerer
}

// NewWrapper creates a wrapper around a click sound and a hover sound.
// Either may be nil when that interaction carries no sound.
func NewWrapper(click, hover Triggerer) *Wrapper {
	slog.Debug("creating feedback wrapper",
		"has_click", click != nil,
		"has_hover", hover != nil)
	return &Wrapper{click: click, hover: hover}
}

// OnClick returns a handler that plays the click sound and then runs the
// existing handler
func (w *Wrapper) OnClick(existing Handler) Handler {
	return Compose(w.trigger(w.click, "click"), existing)
}

// OnPointerEnter returns a handler that plays the hover sound and then runs
// the existing handler
func (w *Wrapper) OnPointerEnter(existing Handler) Handler {
	return Compose(w.trigger(w.hover, "pointerenter"), existing)
}

func (w *Wrapper) trigger(t Triggerer, kind string) Handler {
	if t == nil {
		return nil
	}
	return func(ev Event) {
		slog.Debug("feedback trigger",
			"kind", kind,
			"element", ev.Element,
			"hint", ev.Hint)
		t.Trigger()
	}
}
