package audio

import (
	"log/slog"

	"github.com/gen2brain/malgo"
)

// Default output shape for synthesized silence when no decoded buffer exists
// to borrow channel count and sample rate from.
const (
	DefaultSilenceChannels   = 2
	DefaultSilenceSampleRate = 44100
)

// NewSilentBuffer synthesizes the shortest representable silent buffer: a
// single zero-valued PCM frame. It is used as the sole buffer when every
// configured resource fails to load, so a trigger produces silence instead
// of an error.
func NewSilentBuffer(channels, sampleRate uint32, format malgo.FormatType) *Buffer {
	if channels == 0 {
		channels = DefaultSilenceChannels
	}
	if sampleRate == 0 {
		sampleRate = DefaultSilenceSampleRate
	}

	frameBytes := int(channels) * BytesPerSample(format)

	slog.Debug("synthesizing silent fallback buffer",
		"channels", channels,
		"sample_rate", sampleRate,
		"format", format,
		"frame_bytes", frameBytes)

	return &Buffer{
		Samples:    make([]byte, frameBytes),
		Channels:   channels,
		SampleRate: sampleRate,
		Format:     format,
	}
}

// NewDefaultSilentBuffer synthesizes a silent buffer with the default
// output shape (stereo S16 at 44.1 kHz)
func NewDefaultSilentBuffer() *Buffer {
	return NewSilentBuffer(DefaultSilenceChannels, DefaultSilenceSampleRate, malgo.FormatS16)
}

// IsSilent reports whether every sample in the buffer is zero
func IsSilent(buf *Buffer) bool {
	if buf == nil {
		return true
	}
	for _, b := range buf.Samples {
		if b != 0 {
			return false
		}
	}
	return true
}
