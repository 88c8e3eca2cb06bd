package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto permits exactly one context per process, so every OtoBackend instance
// shares it. The context adopts the shape of the first buffer played.
var (
	otoInitOnce   sync.Once
	otoSharedCtx  *oto.Context
	otoInitErr    error
	otoSampleRate int
	otoChannels   int
)

// OtoBackend plays decoded buffers through the pure-Go oto output layer.
// Because the underlying context is process-wide, Close only marks this
// instance unusable; the device stays available for other instances.
type OtoBackend struct {
	playing bool
	closed  bool
	mutex   sync.Mutex
}

// NewOtoBackend creates a new oto-based output backend
func NewOtoBackend() *OtoBackend {
	slog.Debug("creating oto backend")
	return &OtoBackend{}
}

// Start prepares the backend
func (ob *OtoBackend) Start() error {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()
	if ob.closed {
		return ErrBackendClosed
	}
	slog.Debug("oto backend started")
	return nil
}

// Stop marks any ongoing playback as stopped
func (ob *OtoBackend) Stop() error {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()
	if ob.closed {
		return ErrBackendClosed
	}
	ob.playing = false
	slog.Debug("oto backend stopped")
	return nil
}

// IsPlaying reports whether a playback session is currently running
func (ob *OtoBackend) IsPlaying() bool {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()
	return ob.playing
}

// Close marks the backend closed. The process-wide oto context cannot be
// torn down, so this only prevents further Play calls on this instance.
func (ob *OtoBackend) Close() error {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()
	ob.closed = true
	ob.playing = false
	slog.Debug("oto backend closed")
	return nil
}

func acquireOtoContext(sampleRate, channels int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		slog.Debug("initializing process-wide oto context",
			"sample_rate", sampleRate,
			"channels", channels)

		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoInitErr = err
			return
		}
		<-ready
		otoSharedCtx = ctx
		otoSampleRate = sampleRate
		otoChannels = channels
	})

	if otoInitErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, otoInitErr)
	}
	return otoSharedCtx, nil
}

// Play renders one buffer through the gain/pan stages and blocks until the
// oto player drains it or ctx is cancelled.
func (ob *OtoBackend) Play(ctx context.Context, buf *Buffer, volume, pan float64) error {
	if buf == nil || len(buf.Samples) == 0 {
		return ErrNothingToPlay
	}

	ob.mutex.Lock()
	if ob.closed {
		ob.mutex.Unlock()
		return ErrBackendClosed
	}
	ob.playing = true
	ob.mutex.Unlock()

	defer func() {
		ob.mutex.Lock()
		ob.playing = false
		ob.mutex.Unlock()
	}()

	rendered := ToS16(Render(buf, volume, pan))

	otoCtx, err := acquireOtoContext(int(rendered.SampleRate), int(rendered.Channels))
	if err != nil {
		slog.Error("oto context unavailable", "error", err)
		return err
	}

	// The oto context shape is fixed after first use; adapt later buffers
	pcm := rendered.Samples
	if int(rendered.SampleRate) != otoSampleRate {
		pcm = resampleS16(pcm, int(rendered.Channels), int(rendered.SampleRate), otoSampleRate)
	}
	if int(rendered.Channels) != otoChannels {
		pcm = remapChannelsS16(pcm, int(rendered.Channels), otoChannels)
	}

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	slog.Debug("oto playback session started",
		"bytes", len(pcm),
		"sample_rate", otoSampleRate,
		"channels", otoChannels)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			slog.Debug("oto playback cancelled", "error", ctx.Err())
			return player.Close()
		case <-ticker.C:
		}
	}

	slog.Debug("oto playback session finished")
	return player.Close()
}
