package audio

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/hajimehoshi/go-mp3"
)

// Mp3Decoder handles MP3 audio format decoding
type Mp3Decoder struct{}

// NewMp3Decoder creates a new MP3 decoder instance
func NewMp3Decoder() *Mp3Decoder {
	return &Mp3Decoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *Mp3Decoder) FormatName() string {
	return "MP3"
}

// CanDecode checks if this decoder can handle the given resource name
func (d *Mp3Decoder) CanDecode(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mp3") || strings.HasSuffix(lower, ".mpeg")
}

// Decode reads MP3 audio data from reader and returns decoded PCM data
func (d *Mp3Decoder) Decode(reader io.Reader) (*Buffer, error) {
	slog.Debug("starting MP3 decode operation")

	decoder, err := mp3.NewDecoder(reader)
	if err != nil {
		slog.Error("failed to create MP3 decoder", "error", err)
		return nil, ErrInvalidData
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		slog.Error("invalid MP3 sample rate", "sample_rate", sampleRate)
		return nil, ErrInvalidData
	}

	// Decode the whole resource up front; UI feedback sounds are short and
	// the loader caches the full buffer anyway.
	var samples []byte
	chunk := make([]byte, 4096)
	for {
		n, err := decoder.Read(chunk)
		if n > 0 {
			samples = append(samples, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("failed to read MP3 PCM data", "error", err)
			return nil, ErrReadFailure
		}
	}

	if len(samples) == 0 {
		slog.Error("no audio data found in MP3 resource")
		return nil, ErrInvalidData
	}

	// go-mp3 always emits 16-bit signed stereo PCM
	buf := &Buffer{
		Samples:    samples,
		Channels:   2,
		SampleRate: uint32(sampleRate),
		Format:     malgo.FormatS16,
	}

	slog.Info("MP3 decode completed",
		"frames", buf.FrameCount(),
		"sample_rate", buf.SampleRate,
		"duration_ms", buf.Duration().Milliseconds())

	return buf, nil
}
