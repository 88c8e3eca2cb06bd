package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DecoderRegistry manages audio format decoders and performs format
// detection by magic bytes with an extension fallback
type DecoderRegistry struct {
	decoders []Decoder
}

// NewDecoderRegistry creates an empty decoder registry
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make([]Decoder, 0)}
}

// NewDefaultRegistry creates a registry with the built-in WAV, MP3, and
// AIFF decoders registered
func NewDefaultRegistry() *DecoderRegistry {
	registry := NewDecoderRegistry()
	registry.Register(NewWavDecoder())
	registry.Register(NewMp3Decoder())
	registry.Register(NewAiffDecoder())

	slog.Debug("default decoder registry initialized",
		"supported_formats", registry.SupportedFormats())

	return registry
}

// Register adds a decoder to the registry. Earlier registrations win ties.
func (r *DecoderRegistry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}

	r.decoders = append(r.decoders, decoder)

	slog.Debug("decoder registered",
		"format", decoder.FormatName(),
		"total_decoders", len(r.decoders))
}

// Decoders returns all registered decoders
func (r *DecoderRegistry) Decoders() []Decoder {
	return r.decoders
}

// SupportedFormats returns the names of every registered format
func (r *DecoderRegistry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DetectByName selects a decoder from the resource name extension alone
func (r *DecoderRegistry) DetectByName(name string) Decoder {
	if name == "" {
		return nil
	}
	for _, decoder := range r.decoders {
		if decoder.CanDecode(name) {
			slog.Debug("format detected by extension",
				"resource", name,
				"format", decoder.FormatName())
			return decoder
		}
	}
	slog.Debug("no decoder matches resource name", "resource", name)
	return nil
}

// DetectByContent selects a decoder from magic bytes, falling back to the
// resource name extension when the content is unrecognized
func (r *DecoderRegistry) DetectByContent(name string, content []byte) Decoder {
	if len(content) == 0 {
		slog.Debug("empty content, using extension fallback", "resource", name)
		return r.DetectByName(name)
	}

	probe := content
	if len(probe) > 512 {
		probe = probe[:512]
	}

	mime := strings.ToLower(mimetype.Detect(probe).String())
	slog.Debug("magic byte detection result",
		"resource", name,
		"mime", mime,
		"bytes_analyzed", len(probe))

	var decoder Decoder
	switch {
	case strings.Contains(mime, "wav") || mime == "audio/vnd.wave":
		decoder = r.findByFormat("WAV")
	case strings.Contains(mime, "mpeg") || strings.Contains(mime, "mp3"):
		decoder = r.findByFormat("MP3")
	case strings.Contains(mime, "aiff"):
		decoder = r.findByFormat("AIFF")
	}

	if decoder != nil {
		slog.Debug("format detected by magic bytes",
			"resource", name,
			"format", decoder.FormatName(),
			"mime", mime)
		return decoder
	}

	slog.Debug("magic detection inconclusive, using extension fallback",
		"resource", name, "mime", mime)
	return r.DetectByName(name)
}

func (r *DecoderRegistry) findByFormat(formatName string) Decoder {
	for _, decoder := range r.decoders {
		if strings.EqualFold(decoder.FormatName(), formatName) {
			return decoder
		}
	}
	return nil
}

// Decode decodes a fetched resource into a playable buffer, selecting the
// decoder by content first and extension second
func (r *DecoderRegistry) Decode(name string, content []byte) (*Buffer, error) {
	slog.Debug("decoding resource", "resource", name, "size_bytes", len(content))

	decoder := r.DetectByContent(name, content)
	if decoder == nil {
		err := fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		slog.Error("no suitable decoder found", "resource", name, "error", err)
		return nil, err
	}

	buf, err := decoder.Decode(bytes.NewReader(content))
	if err != nil {
		slog.Error("decode failed",
			"resource", name,
			"format", decoder.FormatName(),
			"error", err)
		return nil, err
	}

	slog.Info("resource decoded",
		"resource", name,
		"format", decoder.FormatName(),
		"channels", buf.Channels,
		"sample_rate", buf.SampleRate,
		"frames", buf.FrameCount())

	return buf, nil
}

// DecodeReader is a convenience wrapper over Decode for streamed content
func (r *DecoderRegistry) DecodeReader(name string, reader io.Reader) (*Buffer, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read resource content", "resource", name, "error", err)
		return nil, fmt.Errorf("failed to read resource content: %w", err)
	}
	return r.Decode(name, content)
}
