package audio

import (
	"errors"
	"io"
	"time"

	"github.com/gen2brain/malgo"
)

// Common decoder errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrReadFailure       = errors.New("failed to read audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Buffer represents decoded audio ready for playback. A Buffer is owned by
// the loader instance that decoded it and is never shared across instances.
type Buffer struct {
	Samples    []byte           // Raw interleaved PCM data
	Channels   uint32           // Number of audio channels
	SampleRate uint32           // Sample rate in Hz
	Format     malgo.FormatType // Sample format (e.g. malgo.FormatS16)
}

// Decoder turns raw encoded audio bytes of one format into a playable Buffer
type Decoder interface {
	// Decode reads encoded audio from reader and returns decoded PCM data
	Decode(reader io.Reader) (*Buffer, error)

	// CanDecode checks if this decoder can handle the given resource name
	CanDecode(name string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}

// BytesPerSample returns the width of one sample for a malgo format.
// Unknown formats report 2 bytes (S16) so duration math stays sane.
func BytesPerSample(format malgo.FormatType) int {
	switch format {
	case malgo.FormatU8:
		return 1
	case malgo.FormatS16:
		return 2
	case malgo.FormatS24:
		return 3
	case malgo.FormatS32, malgo.FormatF32:
		return 4
	default:
		return 2
	}
}

// FrameCount returns the number of PCM frames held by the buffer
func (b *Buffer) FrameCount() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	bytesPerFrame := int(b.Channels) * BytesPerSample(b.Format)
	if bytesPerFrame == 0 {
		return 0
	}
	return len(b.Samples) / bytesPerFrame
}

// Duration returns the playback duration of the buffer
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}
