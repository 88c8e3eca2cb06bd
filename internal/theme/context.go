package theme

import (
	"log/slog"
	"strings"
	"sync"
)

// Context holds the process-wide sound theme state: which theme is active
// and whether sound feedback is muted. All methods are safe for concurrent
// use; players read mute state on every trigger.
type Context struct {
	mu       sync.RWMutex
	muted    bool
	themeKey string
	resolver Resolver
}

// NewContext creates a theme context with the given initial theme key and
// resolver. A nil resolver is valid until SetResolver is called; Sounds
// returns nothing in that window.
func NewContext(themeKey string, resolver Resolver) *Context {
	slog.Debug("creating theme context", "theme", themeKey)
	return &Context{themeKey: themeKey, resolver: resolver}
}

// Muted reports whether sound feedback is globally muted
func (c *Context) Muted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.muted
}

// SetMuted updates the global mute flag
func (c *Context) SetMuted(muted bool) {
	c.mu.Lock()
	changed := c.muted != muted
	c.muted = muted
	c.mu.Unlock()

	if changed {
		slog.Info("mute state changed", "muted", muted)
	}
}

// ThemeKey returns the active theme key
func (c *Context) ThemeKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.themeKey
}

// SetThemeKey switches the active theme. The resolver must be swapped
// separately; callers that switch themes use SetResolver in the same
// breath.
func (c *Context) SetThemeKey(key string) {
	c.mu.Lock()
	c.themeKey = key
	c.mu.Unlock()
	slog.Info("theme changed", "theme", key)
}

// SetResolver replaces the active resolver
func (c *Context) SetResolver(resolver Resolver) {
	c.mu.Lock()
	c.resolver = resolver
	c.mu.Unlock()
}

// Sounds resolves an event name against the active theme, probing common
// audio extensions. It returns the resource identifiers that exist, in
// preference order, or an empty slice when nothing resolves.
func (c *Context) Sounds(event string) []string {
	c.mu.RLock()
	resolver := c.resolver
	c.mu.RUnlock()

	if resolver == nil || event == "" {
		return nil
	}

	paths := candidatePaths(event)
	resources := make([]string, 0, 1)
	for _, p := range paths {
		resource, err := resolver.ResolveSound(p)
		if err != nil {
			continue
		}
		resources = append(resources, resource)
	}

	slog.Debug("event sounds resolved",
		"event", event,
		"theme", c.themeKey,
		"resources", len(resources))
	return resources
}

// soundExtensions lists probe extensions in preference order
var soundExtensions = []string{".wav", ".mp3", ".aiff", ".aif"}

// candidatePaths expands an event name into relative sound paths. An event
// name that already carries an extension is probed as-is.
func candidatePaths(event string) []string {
	lower := strings.ToLower(event)
	for _, ext := range soundExtensions {
		if strings.HasSuffix(lower, ext) {
			return []string{event}
		}
	}

	paths := make([]string, 0, len(soundExtensions))
	for _, ext := range soundExtensions {
		paths = append(paths, event+ext)
	}
	return paths
}
