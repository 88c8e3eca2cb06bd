package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// MalgoBackend plays decoded buffers through a miniaudio device. The device
// context is created on first use and held until Close, so the same backend
// instance can serve many playback sessions.
type MalgoBackend struct {
	deviceCtx *Context
	playing   bool
	closed    bool
	mutex     sync.Mutex
}

// NewMalgoBackend creates a new malgo-based output backend
func NewMalgoBackend() *MalgoBackend {
	slog.Debug("creating malgo backend")
	return &MalgoBackend{}
}

// Start prepares the backend. The device context itself is created lazily on
// first Play so constructing a backend never touches audio hardware.
func (mb *MalgoBackend) Start() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	if mb.closed {
		return ErrBackendClosed
	}
	slog.Debug("malgo backend started")
	return nil
}

// Stop marks any ongoing playback as stopped
func (mb *MalgoBackend) Stop() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	if mb.closed {
		return ErrBackendClosed
	}
	mb.playing = false
	slog.Debug("malgo backend stopped")
	return nil
}

// IsPlaying reports whether a playback session is currently running
func (mb *MalgoBackend) IsPlaying() bool {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	return mb.playing
}

// Close releases the device context. Disposal must be sequenced after all
// in-flight sessions using this backend are complete or abandoned.
func (mb *MalgoBackend) Close() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	if mb.closed {
		slog.Debug("malgo backend already closed")
		return nil
	}
	mb.closed = true

	if mb.deviceCtx != nil {
		if err := mb.deviceCtx.Close(); err != nil {
			slog.Error("error closing device context", "error", err)
			return err
		}
		mb.deviceCtx = nil
	}

	slog.Debug("malgo backend closed")
	return nil
}

// Play renders one buffer through the gain/pan stages and a fresh playback
// device, blocking until the buffer has been consumed or ctx is cancelled.
func (mb *MalgoBackend) Play(ctx context.Context, buf *Buffer, volume, pan float64) error {
	if buf == nil || len(buf.Samples) == 0 {
		return ErrNothingToPlay
	}

	mb.mutex.Lock()
	if mb.closed {
		mb.mutex.Unlock()
		return ErrBackendClosed
	}
	if mb.deviceCtx == nil {
		deviceCtx, err := NewContext()
		if err != nil {
			mb.mutex.Unlock()
			return fmt.Errorf("failed to initialize device context: %w", err)
		}
		mb.deviceCtx = deviceCtx
	}
	deviceCtx := mb.deviceCtx
	mb.playing = true
	mb.mutex.Unlock()

	defer func() {
		mb.mutex.Lock()
		mb.playing = false
		mb.mutex.Unlock()
	}()

	rendered := Render(buf, volume, pan)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = rendered.Format
	deviceConfig.Playback.Channels = rendered.Channels
	deviceConfig.SampleRate = rendered.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	slog.Debug("configuring playback device",
		"format", rendered.Format,
		"channels", rendered.Channels,
		"sample_rate", rendered.SampleRate,
		"frames", rendered.FrameCount())

	bytesPerFrame := int(rendered.Channels) * BytesPerSample(rendered.Format)
	totalFrames := uint32(rendered.FrameCount())

	var frameOffset uint32
	done := make(chan struct{})
	var doneOnce sync.Once

	onSamples := func(pOutput, _ []byte, frameCount uint32) {
		startByte := int(frameOffset) * bytesPerFrame
		if startByte >= len(rendered.Samples) {
			// Buffer exhausted: emit silence until the device is stopped
			for i := range pOutput {
				pOutput[i] = 0
			}
			doneOnce.Do(func() { close(done) })
			return
		}

		available := len(rendered.Samples) - startByte
		want := int(frameCount) * bytesPerFrame
		n := want
		if n > available {
			n = available
		}

		copy(pOutput[:n], rendered.Samples[startByte:startByte+n])
		// The rest of the device buffer must be zeroed or the output crackles
		for i := n; i < len(pOutput); i++ {
			pOutput[i] = 0
		}

		frameOffset += frameCount
		if frameOffset >= totalFrames {
			doneOnce.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(deviceCtx.Raw().Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		slog.Error("failed to initialize playback device", "error", err)
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		slog.Error("failed to start playback device", "error", err)
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	slog.Debug("playback session started", "duration_ms", rendered.Duration().Milliseconds())

	// Safety timer in case the device callback stalls
	timer := time.NewTimer(rendered.Duration() + 500*time.Millisecond)
	defer timer.Stop()

	select {
	case <-done:
		slog.Debug("playback session drained")
	case <-timer.C:
		slog.Debug("playback duration elapsed before drain signal")
	case <-ctx.Done():
		slog.Debug("playback session cancelled", "error", ctx.Err())
	}

	device.Stop()
	device.Uninit()

	slog.Debug("playback session finished", "frames_played", frameOffset)
	return nil
}
