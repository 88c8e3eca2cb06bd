package audio

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// BeepBackend plays decoded buffers through the beep speaker. Unlike the
// other backends it builds the gain/pan graph from beep's effect streamers
// instead of rendering PCM up front.
type BeepBackend struct {
	speakerRate beep.SampleRate
	playing     bool
	closed      bool
	mutex       sync.Mutex
}

// NewBeepBackend creates a new beep-based output backend
func NewBeepBackend() *BeepBackend {
	slog.Debug("creating beep backend")
	return &BeepBackend{}
}

// Start prepares the backend. Speaker initialization happens lazily at the
// first Play, once the output sample rate is known.
func (bb *BeepBackend) Start() error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()
	if bb.closed {
		return ErrBackendClosed
	}
	slog.Debug("beep backend started")
	return nil
}

// Stop interrupts any ongoing playback
func (bb *BeepBackend) Stop() error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()
	if bb.closed {
		return ErrBackendClosed
	}
	if bb.speakerRate != 0 {
		speaker.Clear()
	}
	bb.playing = false
	slog.Debug("beep backend stopped")
	return nil
}

// IsPlaying reports whether a playback session is currently running
func (bb *BeepBackend) IsPlaying() bool {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()
	return bb.playing
}

// Close releases the speaker
func (bb *BeepBackend) Close() error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()
	if bb.closed {
		slog.Debug("beep backend already closed")
		return nil
	}
	bb.closed = true
	if bb.speakerRate != 0 {
		speaker.Clear()
	}
	slog.Debug("beep backend closed")
	return nil
}

// Play routes one buffer through beep's volume and pan streamers and blocks
// until playback completes or ctx is cancelled.
func (bb *BeepBackend) Play(ctx context.Context, buf *Buffer, volume, pan float64) error {
	if buf == nil || len(buf.Samples) == 0 {
		return ErrNothingToPlay
	}

	s16 := ToS16(buf)
	bufRate := beep.SampleRate(s16.SampleRate)

	bb.mutex.Lock()
	if bb.closed {
		bb.mutex.Unlock()
		return ErrBackendClosed
	}
	if bb.speakerRate == 0 {
		// First session decides the speaker rate; later buffers resample
		if err := speaker.Init(bufRate, bufRate.N(time.Second/20)); err != nil {
			bb.mutex.Unlock()
			slog.Error("failed to initialize beep speaker", "error", err)
			return err
		}
		bb.speakerRate = bufRate
		slog.Debug("beep speaker initialized", "sample_rate", bufRate)
	}
	speakerRate := bb.speakerRate
	bb.playing = true
	bb.mutex.Unlock()

	defer func() {
		bb.mutex.Lock()
		bb.playing = false
		bb.mutex.Unlock()
	}()

	// Graph: buffer source -> gain -> pan -> destination
	var source beep.Streamer = newPCMStreamer(s16)
	if bufRate != speakerRate {
		source = beep.Resample(4, bufRate, speakerRate, source)
	}

	gain := &effects.Volume{
		Streamer: source,
		Base:     2,
		Volume:   linearGainToVolume(volume),
		Silent:   volume <= 0,
	}
	positioned := &effects.Pan{
		Streamer: gain,
		Pan:      clampPan(pan),
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(positioned, beep.Callback(func() { close(done) })))

	slog.Debug("beep playback session started",
		"frames", s16.FrameCount(),
		"volume", volume,
		"pan", pan)

	select {
	case <-done:
		slog.Debug("beep playback session finished")
		return nil
	case <-ctx.Done():
		speaker.Clear()
		slog.Debug("beep playback cancelled", "error", ctx.Err())
		return nil
	}
}

// linearGainToVolume maps a linear gain multiplier onto beep's exponential
// volume scale (gain = Base^Volume with Base 2)
func linearGainToVolume(gain float64) float64 {
	if gain <= 0 {
		return 0 // Silent flag carries the actual muting
	}
	return math.Log2(gain)
}

func clampPan(pan float64) float64 {
	if pan < -1 {
		return -1
	}
	if pan > 1 {
		return 1
	}
	return pan
}

// pcmStreamer adapts interleaved S16 PCM to a beep.Streamer
type pcmStreamer struct {
	buf *Buffer
	pos int
}

func newPCMStreamer(buf *Buffer) *pcmStreamer {
	return &pcmStreamer{buf: buf}
}

func (s *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	frameBytes := int(s.buf.Channels) * 2
	total := len(s.buf.Samples) / frameBytes

	n := 0
	for n < len(samples) && s.pos < total {
		offset := s.pos * frameBytes
		left := float64(int16(s.buf.Samples[offset])|int16(s.buf.Samples[offset+1])<<8) / (1 << 15)
		right := left
		if s.buf.Channels >= 2 {
			right = float64(int16(s.buf.Samples[offset+2])|int16(s.buf.Samples[offset+3])<<8) / (1 << 15)
		}
		samples[n][0] = left
		samples[n][1] = right
		n++
		s.pos++
	}

	return n, n > 0
}

func (s *pcmStreamer) Err() error {
	return nil
}
