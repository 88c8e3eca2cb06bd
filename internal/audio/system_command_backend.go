package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// SystemCommandBackend plays decoded buffers by handing a temporary WAV file
// to a system audio command such as paplay or afplay. Used where direct
// device access misbehaves (notably WSL).
type SystemCommandBackend struct {
	command string
	playing bool
	closed  bool
	mutex   sync.Mutex
}

// NewSystemCommandBackend creates a backend around the given audio command
func NewSystemCommandBackend(command string) *SystemCommandBackend {
	slog.Debug("creating system command backend", "command", command)
	return &SystemCommandBackend{command: command}
}

// Start prepares the backend
func (scb *SystemCommandBackend) Start() error {
	scb.mutex.Lock()
	defer scb.mutex.Unlock()
	if scb.closed {
		return ErrBackendClosed
	}
	slog.Debug("system command backend started", "command", scb.command)
	return nil
}

// Stop marks any ongoing playback as stopped
func (scb *SystemCommandBackend) Stop() error {
	scb.mutex.Lock()
	defer scb.mutex.Unlock()
	if scb.closed {
		return ErrBackendClosed
	}
	scb.playing = false
	slog.Debug("system command backend stopped")
	return nil
}

// IsPlaying reports whether a playback session is currently running
func (scb *SystemCommandBackend) IsPlaying() bool {
	scb.mutex.Lock()
	defer scb.mutex.Unlock()
	return scb.playing && !scb.closed
}

// Close shuts down the backend
func (scb *SystemCommandBackend) Close() error {
	scb.mutex.Lock()
	defer scb.mutex.Unlock()
	scb.closed = true
	scb.playing = false
	slog.Debug("system command backend closed")
	return nil
}

// Play renders one buffer, writes it to a temporary WAV file, and blocks on
// the system command until playback completes or ctx is cancelled.
func (scb *SystemCommandBackend) Play(ctx context.Context, buf *Buffer, volume, pan float64) error {
	if buf == nil || len(buf.Samples) == 0 {
		return ErrNothingToPlay
	}

	scb.mutex.Lock()
	if scb.closed {
		scb.mutex.Unlock()
		return ErrBackendClosed
	}
	scb.playing = true
	scb.mutex.Unlock()

	defer func() {
		scb.mutex.Lock()
		scb.playing = false
		scb.mutex.Unlock()
	}()

	rendered := ToS16(Render(buf, volume, pan))

	tempFile, err := os.CreateTemp("", "chime-*.wav")
	if err != nil {
		slog.Error("failed to create temporary wav file", "error", err)
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		os.Remove(tempPath)
		slog.Debug("temporary wav file removed", "path", tempPath)
	}()

	if err := writeWav(tempFile, rendered); err != nil {
		tempFile.Close()
		slog.Error("failed to write temporary wav file", "path", tempPath, "error", err)
		return fmt.Errorf("failed to write temporary wav file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary wav file: %w", err)
	}

	slog.Debug("playing via system command",
		"command", scb.command,
		"path", tempPath,
		"duration_ms", rendered.Duration().Milliseconds())

	cmd := exec.CommandContext(ctx, scb.command, tempPath)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			slog.Debug("system command playback cancelled", "error", ctx.Err())
			return nil
		}
		slog.Error("system command failed", "command", scb.command, "error", err)
		return fmt.Errorf("system command failed: %w", err)
	}

	slog.Debug("system command playback completed")
	return nil
}

// writeWav emits a minimal PCM WAV file for an S16 buffer
func writeWav(f *os.File, buf *Buffer) error {
	dataLen := uint32(len(buf.Samples))
	byteRate := buf.SampleRate * buf.Channels * 2
	blockAlign := uint16(buf.Channels * 2)

	header := struct {
		RIFF       [4]byte
		ChunkSize  uint32
		WAVE       [4]byte
		Fmt        [4]byte
		FmtSize    uint32
		AudioFmt   uint16
		Channels   uint16
		SampleRate uint32
		ByteRate   uint32
		BlockAlign uint16
		BitDepth   uint16
		Data       [4]byte
		DataSize   uint32
	}{
		RIFF:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:  36 + dataLen,
		WAVE:       [4]byte{'W', 'A', 'V', 'E'},
		Fmt:        [4]byte{'f', 'm', 't', ' '},
		FmtSize:    16,
		AudioFmt:   1, // PCM
		Channels:   uint16(buf.Channels),
		SampleRate: buf.SampleRate,
		ByteRate:   byteRate,
		BlockAlign: blockAlign,
		BitDepth:   16,
		Data:       [4]byte{'d', 'a', 't', 'a'},
		DataSize:   dataLen,
	}

	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return err
	}
	_, err := f.Write(buf.Samples)
	return err
}
