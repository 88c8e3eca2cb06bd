package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"chime.click/internal/config"
)

// shouldDetachEventProcessing returns true when the current invocation should
// spawn a detached child process to handle the event stream. This lets the
// caller return immediately rather than blocking on audio playback.
//
// Detaching is skipped when:
//   - Already running as a daemon child (--daemon-child flag)
//   - Running under "go test" (detected via os.Args[0])
//   - The utility is disabled in config
//   - There is no input data to process
func shouldDetachEventProcessing(cmd *cobra.Command, cfg *config.Config, inputData []byte) bool {
	// Already a detached worker, don't recurse
	if isDaemonChild, _ := cmd.Flags().GetBool("daemon-child"); isDaemonChild {
		slog.Debug("skipping detach: already a daemon child")
		return false
	}

	// Detect "go test" so tests run synchronously
	if strings.HasSuffix(os.Args[0], ".test") || strings.HasSuffix(os.Args[0], ".test.exe") {
		slog.Debug("skipping detach: running under go test")
		return false
	}

	if !cfg.Enabled {
		slog.Debug("skipping detach: playback disabled")
		return false
	}

	if len(inputData) == 0 {
		slog.Debug("skipping detach: no input data")
		return false
	}

	return true
}

// spawnDetachedEventWorker writes the event payload to a temporary file and
// re-invokes the current executable with --daemon-child and
// --event-input-file so the calling process can exit immediately.
func spawnDetachedEventWorker(cmd *cobra.Command, inputData []byte) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot determine executable path: %w", err)
	}

	// Write payload to a temp file so the child can read it
	tmpFile, err := os.CreateTemp("", "chime-events-*.jsonl")
	if err != nil {
		return fmt.Errorf("cannot create temp file for event input: %w", err)
	}

	if _, err := tmpFile.Write(inputData); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return fmt.Errorf("cannot write event input to temp file: %w", err)
	}
	tmpFile.Close()

	// Build child args: carry over relevant flags
	args := []string{"--daemon-child", "--event-input-file", tmpFile.Name()}

	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		args = append(args, "--config", configPath)
	}
	if volume, _ := cmd.Flags().GetString("volume"); volume != "" {
		args = append(args, "--volume", volume)
	}
	if pan, _ := cmd.Flags().GetString("pan"); pan != "" {
		args = append(args, "--pan", pan)
	}
	if themeFlag, _ := cmd.Flags().GetString("theme"); themeFlag != "" {
		args = append(args, "--theme", themeFlag)
	}
	if silent, _ := cmd.Flags().GetBool("silent"); silent {
		args = append(args, "--silent")
	}

	child := exec.Command(exe, args...)
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil

	slog.Info("spawning detached event worker",
		"exe", exe,
		"args", args,
		"event_input_file", tmpFile.Name())

	if err := child.Start(); err != nil {
		os.Remove(tmpFile.Name())
		return fmt.Errorf("cannot start detached event worker: %w", err)
	}

	// Release the child so it isn't reaped when we exit
	if err := child.Process.Release(); err != nil {
		slog.Warn("failed to release detached process", "error", err)
	}

	return nil
}
