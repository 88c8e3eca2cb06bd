package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// AiffDecoder handles AIFF audio format decoding
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	return &AiffDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}

// CanDecode checks if this decoder can handle the given resource name
func (d *AiffDecoder) CanDecode(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// Decode reads AIFF audio data from reader and returns decoded PCM data
func (d *AiffDecoder) Decode(reader io.Reader) (*Buffer, error) {
	slog.Debug("starting AIFF decode operation")

	// go-audio/aiff wants a ReadSeeker
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read AIFF data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		slog.Error("empty AIFF data")
		return nil, ErrInvalidData
	}

	decoder := aiff.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file structure")
		return nil, ErrInvalidData
	}

	sampleRate := uint32(decoder.SampleRate)
	channels := uint32(decoder.NumChans)
	bitDepth := int(decoder.SampleBitDepth())

	if channels == 0 || sampleRate == 0 || bitDepth == 0 {
		slog.Error("invalid AIFF format parameters",
			"channels", channels,
			"sample_rate", sampleRate,
			"bit_depth", bitDepth)
		return nil, ErrInvalidData
	}

	slog.Debug("AIFF format detected",
		"sample_rate", sampleRate,
		"channels", channels,
		"bits_per_sample", bitDepth)

	var malgoFormat malgo.FormatType
	switch bitDepth {
	case 16:
		malgoFormat = malgo.FormatS16
	case 24:
		malgoFormat = malgo.FormatS24
	case 32:
		malgoFormat = malgo.FormatS32
	default:
		slog.Error("unsupported AIFF bit depth", "bits", bitDepth)
		return nil, ErrUnsupportedFormat
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		slog.Error("failed to read AIFF samples", "error", err)
		return nil, ErrReadFailure
	}
	if pcm == nil || len(pcm.Data) == 0 {
		slog.Error("no audio data found in AIFF resource")
		return nil, ErrInvalidData
	}

	buf := &Buffer{
		Samples:    packIntSamples(pcm, bitDepth),
		Channels:   channels,
		SampleRate: sampleRate,
		Format:     malgoFormat,
	}

	slog.Info("AIFF decode completed",
		"frames", buf.FrameCount(),
		"channels", buf.Channels,
		"sample_rate", buf.SampleRate,
		"duration_ms", buf.Duration().Milliseconds())

	return buf, nil
}

// packIntSamples converts an audio.IntBuffer into little-endian interleaved
// PCM bytes at the given bit depth
func packIntSamples(pcm *audio.IntBuffer, bitDepth int) []byte {
	width := bitDepth / 8
	raw := make([]byte, 0, len(pcm.Data)*width)

	for _, sample := range pcm.Data {
		for b := 0; b < width; b++ {
			raw = append(raw, byte(sample>>(8*b)))
		}
	}
	return raw
}
