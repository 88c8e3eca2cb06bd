package tracking

import (
	"log/slog"

	"chime.click/internal/events"
)

// PathCheckedHook is called when a sound path is checked for existence
// sequence is 1-based to match fallback level numbering
type PathCheckedHook func(path string, exists bool, sequence int, event *events.InteractionEvent)

// PathResolver resolves a relative sound path to an existing resource
type PathResolver interface {
	ResolveSound(relativePath string) (string, error)
}

// SoundChecker walks a fallback chain through a resolver and notifies hooks
// about every lookup, found or not
type SoundChecker struct {
	resolver PathResolver
	hooks    []PathCheckedHook
}

// SoundCheckerOption is a functional option for configuring SoundChecker
type SoundCheckerOption func(*SoundChecker)

// NewSoundChecker creates a new SoundChecker over the given resolver
func NewSoundChecker(resolver PathResolver, opts ...SoundCheckerOption) *SoundChecker {
	sc := &SoundChecker{
		resolver: resolver,
		hooks:    make([]PathCheckedHook, 0),
	}

	for _, opt := range opts {
		opt(sc)
	}

	return sc
}

// WithHook adds a hook to be called when paths are checked
func WithHook(hook PathCheckedHook) SoundCheckerOption {
	return func(sc *SoundChecker) {
		sc.hooks = append(sc.hooks, hook)
	}
}

// Resolve walks the fallback chain in order, calling all hooks with 1-based
// sequence numbering, and returns the first resource that resolves. The
// second return is false when nothing in the chain exists.
func (sc *SoundChecker) Resolve(event *events.InteractionEvent, paths []string) (string, bool) {
	selected := ""
	found := false

	for i, path := range paths {
		resource, err := sc.resolver.ResolveSound(path)
		exists := err == nil

		reported := path
		if exists {
			reported = resource
		}

		sequence := i + 1
		for _, hook := range sc.hooks {
			hook(reported, exists, sequence, event)
		}

		if exists && !found {
			selected = resource
			found = true
		}
	}

	slog.Debug("fallback chain checked",
		"paths", len(paths),
		"found", found,
		"selected", selected)

	return selected, found
}

// SlogHook provides structured logging of path checks for debugging
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a new SlogHook with the given logger
// If logger is nil, uses the default logger
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{logger: logger}
}

// GetHook returns the PathCheckedHook function for integration with SoundChecker
func (s *SlogHook) GetHook() PathCheckedHook {
	return func(path string, exists bool, sequence int, event *events.InteractionEvent) {
		s.logger.Debug("path check",
			"path", path,
			"exists", exists,
			"sequence", sequence,
			"event", event.Event,
			"element", event.Element,
		)
	}
}

// NopHook provides a no-operation hook for disabled modes
type NopHook struct{}

// NewNopHook creates a new NopHook that does nothing
func NewNopHook() *NopHook {
	return &NopHook{}
}

// GetHook returns a PathCheckedHook that does nothing
func (n *NopHook) GetHook() PathCheckedHook {
	return func(path string, exists bool, sequence int, event *events.InteractionEvent) {
	}
}
