package audio

import (
	"context"
	"errors"
)

// Common errors for Backend implementations
var (
	ErrBackendNotAvailable = errors.New("audio backend not available")
	ErrBackendClosed       = errors.New("audio backend is closed")
	ErrNothingToPlay       = errors.New("no buffer to play")
)

// Backend is a handle to the platform's audio output. One playback session
// routes a decoded buffer through a gain stage and a stereo pan stage to the
// output destination.
//
// Lifecycle is owned by the caller: a shared backend is created once, reused
// for every session, and closed when its owner is disposed; a one-shot
// backend is created per session and closed as soon as that session's
// playback ends.
type Backend interface {
	// Start prepares the backend for playback
	Start() error

	// Stop interrupts any ongoing playback
	Stop() error

	// Close releases the output device. Play must not be called afterwards.
	Close() error

	// IsPlaying reports whether a playback session is currently running
	IsPlaying() bool

	// Play renders one buffer through a volume gain and stereo pan position
	// and blocks until playback completes or ctx is cancelled.
	Play(ctx context.Context, buf *Buffer, volume, pan float64) error
}
