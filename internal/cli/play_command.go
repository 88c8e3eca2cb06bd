package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"chime.click/internal/player"
)

// newPlayCommand creates the play subcommand
func newPlayCommand() *cobra.Command {
	var shuffle bool
	var oneShot bool
	var loopCount int

	playCmd := &cobra.Command{
		Use:   "play <resource>...",
		Short: "Play sound resources directly",
		Long: `Play one or more sound resources directly, bypassing the event pipe.

Resources are file paths or http(s) URLs. With multiple resources, the first
one plays unless --shuffle picks at random.

Examples:
  chime play click.wav
  chime play click.wav hover.wav --shuffle
  chime play https://example.com/ding.mp3 --volume 0.8
  chime play alert.wav --loop-count 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args, shuffle, oneShot, loopCount)
		},
	}

	playCmd.Flags().BoolVar(&shuffle, "shuffle", false, "Pick a random resource on each play")
	playCmd.Flags().BoolVar(&oneShot, "one-shot", false, "Use a fresh audio context per play")
	playCmd.Flags().IntVar(&loopCount, "loop-count", 1, "Number of times to play")

	return playCmd
}

// runPlay executes the play command
func runPlay(cmd *cobra.Command, resources []string, shuffle, oneShot bool, loopCount int) error {
	slog.Debug("running play command",
		"resources", len(resources),
		"shuffle", shuffle,
		"one_shot", oneShot,
		"loop_count", loopCount)

	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	if loopCount < 1 {
		return fmt.Errorf("loop-count must be >= 1, got %d", loopCount)
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	setupLogging(cfg, cmd.ErrOrStderr())

	if err := initializeThemeSystem(cli, cfg); err != nil {
		return err
	}

	var loadErrs []error
	loader := player.New(
		resources,
		cli.fetcher,
		cli.registry,
		cli.backendFactory,
		cli.themeCtx,
		player.WithVolume(cfg.Volume),
		player.WithPan(cfg.Pan),
		player.WithBackendType(cfg.AudioBackend),
		player.WithShuffle(shuffle),
		player.WithOneShot(oneShot),
		player.WithLazyLoad(false),
		player.WithLoadErrorHandler(func(resource string, err error) {
			cmd.PrintErrf("Warning: failed to load %s: %v\n", resource, err)
			loadErrs = append(loadErrs, err)
		}),
	)
	defer loader.Close()

	if err := loader.WaitReady(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}

	for i := 0; i < loopCount; i++ {
		loader.Trigger()
	}

	// Close waits for playback to finish; deferred above but we want the
	// error surfaced
	if err := loader.Close(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	slog.Info("play command completed",
		"resources", len(resources),
		"plays", loopCount,
		"load_errors", len(loadErrs))

	return nil
}
