package audio

import (
	"log/slog"
	"math"

	"github.com/gen2brain/malgo"
)

// Render builds the single-use playback image of a buffer: source samples
// scaled by gain and positioned by pan. The input buffer is never modified;
// every call returns a fresh copy so concurrent playback sessions stay
// independent.
//
// volume is a linear gain multiplier. Out-of-range values are passed through
// uncapped; keeping it in 0.0-1.0 is the caller's responsibility.
// pan is the stereo position: -1.0 full left, 0 center, 1.0 full right.
// Values beyond the range saturate to full left/right.
func Render(buf *Buffer, volume, pan float64) *Buffer {
	if buf == nil {
		slog.Warn("render called with nil buffer")
		return nil
	}

	slog.Debug("rendering playback buffer",
		"frames", buf.FrameCount(),
		"channels", buf.Channels,
		"volume", volume,
		"pan", pan)

	out := buf
	if pan != 0 && buf.Channels == 1 {
		// Panning needs a stereo image; upmix mono first.
		out = upmixMonoToStereo(buf)
	}

	leftGain, rightGain := panGains(pan)
	rendered := &Buffer{
		Samples:    make([]byte, len(out.Samples)),
		Channels:   out.Channels,
		SampleRate: out.SampleRate,
		Format:     out.Format,
	}
	copy(rendered.Samples, out.Samples)

	if rendered.Channels == 2 {
		scaleStereoSamples(rendered, volume*leftGain, volume*rightGain)
	} else {
		scaleSamples(rendered, volume)
	}

	return rendered
}

// panGains converts a pan position into per-channel gain multipliers using
// the constant-power law, so center pan does not sound louder than the edges.
func panGains(pan float64) (left, right float64) {
	if pan < -1.0 {
		pan = -1.0
	}
	if pan > 1.0 {
		pan = 1.0
	}

	// Map pan from [-1,1] to an angle in [0, pi/2]
	angle := (pan + 1.0) * math.Pi / 4.0
	return math.Cos(angle) * math.Sqrt2, math.Sin(angle) * math.Sqrt2
}

// upmixMonoToStereo duplicates each mono frame into a two-channel frame
func upmixMonoToStereo(buf *Buffer) *Buffer {
	width := BytesPerSample(buf.Format)
	frames := len(buf.Samples) / width

	slog.Debug("upmixing mono buffer for pan stage", "frames", frames)

	samples := make([]byte, 0, frames*width*2)
	for i := 0; i < frames; i++ {
		frame := buf.Samples[i*width : (i+1)*width]
		samples = append(samples, frame...)
		samples = append(samples, frame...)
	}

	return &Buffer{
		Samples:    samples,
		Channels:   2,
		SampleRate: buf.SampleRate,
		Format:     buf.Format,
	}
}

// scaleSamples applies a single gain to every sample in place
func scaleSamples(buf *Buffer, gain float64) {
	scaleChannelSamples(buf, gain, gain)
}

// scaleStereoSamples applies independent left/right gains to an interleaved
// stereo buffer in place
func scaleStereoSamples(buf *Buffer, leftGain, rightGain float64) {
	scaleChannelSamples(buf, leftGain, rightGain)
}

func scaleChannelSamples(buf *Buffer, gainA, gainB float64) {
	samples := buf.Samples
	channels := int(buf.Channels)
	if channels == 0 {
		return
	}

	gainFor := func(sampleIndex int) float64 {
		if channels == 2 && sampleIndex%2 == 1 {
			return gainB
		}
		return gainA
	}

	switch buf.Format {
	case malgo.FormatS16:
		for i, s := 0, 0; i+1 < len(samples); i, s = i+2, s+1 {
			v := int16(samples[i]) | int16(samples[i+1])<<8
			v = clampS16(float64(v) * gainFor(s))
			samples[i] = byte(v)
			samples[i+1] = byte(v >> 8)
		}
	case malgo.FormatS24:
		for i, s := 0, 0; i+2 < len(samples); i, s = i+3, s+1 {
			v := int32(samples[i]) | int32(samples[i+1])<<8 | int32(samples[i+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // Sign extend
			}
			v = clampS24(float64(v) * gainFor(s))
			samples[i] = byte(v)
			samples[i+1] = byte(v >> 8)
			samples[i+2] = byte(v >> 16)
		}
	case malgo.FormatS32:
		for i, s := 0, 0; i+3 < len(samples); i, s = i+4, s+1 {
			v := int32(samples[i]) | int32(samples[i+1])<<8 | int32(samples[i+2])<<16 | int32(samples[i+3])<<24
			v = clampS32(float64(v) * gainFor(s))
			samples[i] = byte(v)
			samples[i+1] = byte(v >> 8)
			samples[i+2] = byte(v >> 16)
			samples[i+3] = byte(v >> 24)
		}
	default:
		slog.Warn("gain/pan scaling not implemented for format", "format", buf.Format)
	}
}

func clampS16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func clampS24(v float64) int32 {
	const maxS24 = 1<<23 - 1
	const minS24 = -(1 << 23)
	if v > maxS24 {
		return maxS24
	}
	if v < minS24 {
		return minS24
	}
	return int32(v)
}

func clampS32(v float64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
