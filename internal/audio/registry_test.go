package audio

import (
	"errors"
	"testing"
)

// minimalWav builds a valid 16-bit stereo PCM WAV resource
func minimalWav() []byte {
	data := make([]byte, 0, 52)
	data = append(data, []byte("RIFF")...)
	data = append(data, []byte{36, 0, 0, 0}...)
	data = append(data, []byte("WAVE")...)
	data = append(data, []byte("fmt ")...)
	data = append(data, []byte{16, 0, 0, 0}...) // PCM fmt chunk
	data = append(data, []byte{1, 0}...)        // AudioFormat PCM
	data = append(data, []byte{2, 0}...)        // 2 channels
	data = append(data, []byte{68, 172, 0, 0}...)
	data = append(data, []byte{16, 177, 2, 0}...)
	data = append(data, []byte{4, 0}...)
	data = append(data, []byte{16, 0}...) // 16 bits per sample
	data = append(data, []byte("data")...)
	samples := []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}
	data = append(data, byte(len(samples)), 0, 0, 0)
	data = append(data, samples...)
	total := len(data) - 8
	data[4] = byte(total)
	data[5] = byte(total >> 8)
	data[6] = byte(total >> 16)
	data[7] = byte(total >> 24)
	return data
}

func TestDefaultRegistryFormats(t *testing.T) {
	registry := NewDefaultRegistry()

	formats := registry.SupportedFormats()
	want := []string{"WAV", "MP3", "AIFF"}
	if len(formats) != len(want) {
		t.Fatalf("supported formats = %v, want %v", formats, want)
	}
	for i, format := range want {
		if formats[i] != format {
			t.Errorf("format[%d] = %q, want %q", i, formats[i], format)
		}
	}
}

func TestRegisterIgnoresNilDecoder(t *testing.T) {
	registry := NewDecoderRegistry()
	registry.Register(nil)
	if len(registry.Decoders()) != 0 {
		t.Error("nil decoder was registered")
	}
}

func TestDetectByName(t *testing.T) {
	registry := NewDefaultRegistry()

	testCases := []struct {
		name       string
		wantFormat string
	}{
		{"click.wav", "WAV"},
		{"CLICK.WAV", "WAV"},
		{"hover.mp3", "MP3"},
		{"chime.aiff", "AIFF"},
		{"chime.aif", "AIFF"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := registry.DetectByName(tc.name)
			if decoder == nil {
				t.Fatalf("no decoder found for %q", tc.name)
			}
			if decoder.FormatName() != tc.wantFormat {
				t.Errorf("format = %q, want %q", decoder.FormatName(), tc.wantFormat)
			}
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		if decoder := registry.DetectByName("sound.flac"); decoder != nil {
			t.Errorf("unexpected decoder %q for flac", decoder.FormatName())
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if decoder := registry.DetectByName(""); decoder != nil {
			t.Error("decoder found for empty name")
		}
	})
}

func TestDetectByContent(t *testing.T) {
	registry := NewDefaultRegistry()

	t.Run("WAV magic bytes win over misleading extension", func(t *testing.T) {
		decoder := registry.DetectByContent("mislabeled.mp3", minimalWav())
		if decoder == nil {
			t.Fatal("no decoder found")
		}
		if decoder.FormatName() != "WAV" {
			t.Errorf("format = %q, want WAV from magic bytes", decoder.FormatName())
		}
	})

	t.Run("unrecognized content falls back to extension", func(t *testing.T) {
		decoder := registry.DetectByContent("click.wav", []byte("garbage content"))
		if decoder == nil {
			t.Fatal("no decoder found")
		}
		if decoder.FormatName() != "WAV" {
			t.Errorf("format = %q, want WAV from extension", decoder.FormatName())
		}
	})

	t.Run("empty content falls back to extension", func(t *testing.T) {
		decoder := registry.DetectByContent("click.mp3", nil)
		if decoder == nil {
			t.Fatal("no decoder found")
		}
		if decoder.FormatName() != "MP3" {
			t.Errorf("format = %q, want MP3", decoder.FormatName())
		}
	})
}

func TestRegistryDecode(t *testing.T) {
	registry := NewDefaultRegistry()

	t.Run("valid WAV", func(t *testing.T) {
		buf, err := registry.Decode("click.wav", minimalWav())
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if buf.Channels != 2 {
			t.Errorf("channels = %d, want 2", buf.Channels)
		}
		if buf.SampleRate != 44100 {
			t.Errorf("sample rate = %d, want 44100", buf.SampleRate)
		}
		if buf.FrameCount() != 2 {
			t.Errorf("frames = %d, want 2", buf.FrameCount())
		}
	})

	t.Run("no decoder matches", func(t *testing.T) {
		_, err := registry.Decode("sound.xyz", []byte("not audio at all"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})
}
