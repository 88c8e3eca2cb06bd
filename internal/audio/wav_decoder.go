package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV audio format decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	return &WavDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}

// CanDecode checks if this decoder can handle the given resource name
func (d *WavDecoder) CanDecode(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// Decode reads WAV audio data from reader and returns decoded PCM data
func (d *WavDecoder) Decode(reader io.Reader) (*Buffer, error) {
	slog.Debug("starting WAV decode operation")

	// youpy/go-wav wants a ReadSeeker, so buffer the whole resource first
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read WAV data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		slog.Error("empty WAV data")
		return nil, ErrInvalidData
	}

	wavReader := wav.NewReader(bytes.NewReader(data))

	format, err := wavReader.Format()
	if err != nil {
		slog.Error("failed to read WAV format header", "error", err)
		return nil, ErrInvalidData
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		slog.Error("invalid WAV format parameters",
			"channels", format.NumChannels,
			"sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	slog.Debug("WAV format detected",
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"bits_per_sample", format.BitsPerSample)

	var malgoFormat malgo.FormatType
	switch format.BitsPerSample {
	case 16:
		malgoFormat = malgo.FormatS16
	case 24:
		malgoFormat = malgo.FormatS24
	case 32:
		malgoFormat = malgo.FormatS32
	default:
		slog.Error("unsupported WAV bit depth", "bits", format.BitsPerSample)
		return nil, ErrUnsupportedFormat
	}

	var allSamples []wav.Sample
	for {
		samples, err := wavReader.ReadSamples()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("failed to read WAV samples", "error", err)
			return nil, ErrReadFailure
		}
		if len(samples) == 0 {
			break
		}
		allSamples = append(allSamples, samples...)
	}

	if len(allSamples) == 0 {
		slog.Error("no audio data found in WAV resource")
		return nil, ErrInvalidData
	}

	raw := packWavSamples(allSamples, int(format.NumChannels), int(format.BitsPerSample))

	buf := &Buffer{
		Samples:    raw,
		Channels:   uint32(format.NumChannels),
		SampleRate: format.SampleRate,
		Format:     malgoFormat,
	}

	slog.Info("WAV decode completed",
		"frames", buf.FrameCount(),
		"channels", buf.Channels,
		"sample_rate", buf.SampleRate,
		"duration_ms", buf.Duration().Milliseconds())

	return buf, nil
}

// packWavSamples converts decoded samples into little-endian interleaved PCM
func packWavSamples(samples []wav.Sample, channels, bits int) []byte {
	width := bits / 8
	raw := make([]byte, 0, len(samples)*channels*width)

	for _, sample := range samples {
		for ch := 0; ch < channels; ch++ {
			var val int
			if ch < len(sample.Values) {
				val = sample.Values[ch]
			}
			for b := 0; b < width; b++ {
				raw = append(raw, byte(val>>(8*b)))
			}
		}
	}
	return raw
}
