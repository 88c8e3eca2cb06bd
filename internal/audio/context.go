package audio

import (
	"log/slog"

	"github.com/gen2brain/malgo"
)

// Context wraps malgo.AllocatedContext with lifecycle management. A shared
// Context lives for the lifetime of its owning backend; a one-shot Context
// lives for a single playback session.
type Context struct {
	ctx *malgo.AllocatedContext
}

// NewContext initializes a new audio device context
func NewContext() (*Context, error) {
	slog.Debug("initializing audio context")

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize audio context", "error", err)
		return nil, err
	}

	slog.Debug("audio context initialized")
	return &Context{ctx: ctx}, nil
}

// Close releases the device context. Safe to call more than once; only the
// first call does work.
func (c *Context) Close() error {
	if c.ctx == nil {
		slog.Debug("audio context already closed")
		return nil
	}

	// malgo requires both Uninit and Free
	if err := c.ctx.Uninit(); err != nil {
		slog.Error("failed to uninitialize audio context", "error", err)
		return err
	}
	c.ctx.Free()
	c.ctx = nil

	slog.Debug("audio context closed")
	return nil
}

// Raw returns the underlying malgo context for device operations
func (c *Context) Raw() *malgo.AllocatedContext {
	return c.ctx
}

// IsValid reports whether the context is still open
func (c *Context) IsValid() bool {
	return c != nil && c.ctx != nil
}
