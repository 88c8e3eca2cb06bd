package audio

import (
	"log/slog"

	"github.com/gen2brain/malgo"
)

// ToS16 converts a buffer to 16-bit signed PCM. Buffers already in S16 are
// returned unchanged. Used by output layers that only accept S16 (oto, beep,
// the temp-file WAV writer).
func ToS16(buf *Buffer) *Buffer {
	if buf == nil || buf.Format == malgo.FormatS16 {
		return buf
	}

	slog.Debug("converting buffer to S16", "from_format", buf.Format)

	src := buf.Samples
	var out []byte

	switch buf.Format {
	case malgo.FormatU8:
		out = make([]byte, 0, len(src)*2)
		for _, b := range src {
			v := (int16(b) - 128) << 8
			out = append(out, byte(v), byte(v>>8))
		}
	case malgo.FormatS24:
		out = make([]byte, 0, len(src)/3*2)
		for i := 0; i+2 < len(src); i += 3 {
			// Keep the two most significant bytes
			out = append(out, src[i+1], src[i+2])
		}
	case malgo.FormatS32:
		out = make([]byte, 0, len(src)/4*2)
		for i := 0; i+3 < len(src); i += 4 {
			out = append(out, src[i+2], src[i+3])
		}
	default:
		slog.Warn("cannot convert format to S16, passing through", "format", buf.Format)
		return buf
	}

	return &Buffer{
		Samples:    out,
		Channels:   buf.Channels,
		SampleRate: buf.SampleRate,
		Format:     malgo.FormatS16,
	}
}

// resampleS16 converts interleaved S16 PCM from one sample rate to another
// using linear interpolation. Good enough for short feedback sounds.
func resampleS16(pcm []byte, channels, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || channels <= 0 {
		return pcm
	}

	frameBytes := channels * 2
	frames := len(pcm) / frameBytes
	if frames == 0 {
		return pcm
	}

	outFrames := frames * toRate / fromRate
	out := make([]byte, outFrames*frameBytes)

	sampleAt := func(frame, ch int) int16 {
		i := frame*frameBytes + ch*2
		return int16(pcm[i]) | int16(pcm[i+1])<<8
	}

	for f := 0; f < outFrames; f++ {
		srcPos := float64(f) * float64(fromRate) / float64(toRate)
		i0 := int(srcPos)
		i1 := i0 + 1
		if i1 >= frames {
			i1 = frames - 1
		}
		frac := srcPos - float64(i0)

		for ch := 0; ch < channels; ch++ {
			a := float64(sampleAt(i0, ch))
			b := float64(sampleAt(i1, ch))
			v := int16(a + (b-a)*frac)
			j := f*frameBytes + ch*2
			out[j] = byte(v)
			out[j+1] = byte(v >> 8)
		}
	}

	slog.Debug("resampled PCM",
		"from_rate", fromRate,
		"to_rate", toRate,
		"in_frames", frames,
		"out_frames", outFrames)

	return out
}

// remapChannelsS16 converts interleaved S16 PCM between channel counts.
// Mono to stereo duplicates, stereo to mono averages; other combinations
// truncate or pad with the last channel.
func remapChannelsS16(pcm []byte, fromCh, toCh int) []byte {
	if fromCh == toCh || fromCh <= 0 || toCh <= 0 {
		return pcm
	}

	frameBytes := fromCh * 2
	frames := len(pcm) / frameBytes
	out := make([]byte, 0, frames*toCh*2)

	for f := 0; f < frames; f++ {
		frame := pcm[f*frameBytes : (f+1)*frameBytes]

		if fromCh == 2 && toCh == 1 {
			l := int16(frame[0]) | int16(frame[1])<<8
			r := int16(frame[2]) | int16(frame[3])<<8
			v := int16((int32(l) + int32(r)) / 2)
			out = append(out, byte(v), byte(v>>8))
			continue
		}

		for ch := 0; ch < toCh; ch++ {
			src := ch
			if src >= fromCh {
				src = fromCh - 1
			}
			out = append(out, frame[src*2], frame[src*2+1])
		}
	}

	slog.Debug("remapped PCM channels", "from", fromCh, "to", toCh, "frames", frames)
	return out
}
