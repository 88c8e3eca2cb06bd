package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// newMuteCommand creates the mute subcommand
func newMuteCommand() *cobra.Command {
	muteCmd := &cobra.Command{
		Use:   "mute [on|off|toggle|status]",
		Short: "Control the global mute state",
		Long: `Control the global mute state, persisted in the config file.

While muted, events are still parsed and tracked but no audio plays.

Examples:
  chime mute           # Same as "chime mute status"
  chime mute on
  chime mute off
  chime mute toggle`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "status"
			if len(args) > 0 {
				action = args[0]
			}
			return runMute(cmd, action)
		},
	}

	return muteCmd
}

// runMute executes the mute command
func runMute(cmd *cobra.Command, action string) error {
	slog.Debug("running mute command", "action", action)

	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := cli.configManager.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch action {
	case "status":
		if cfg.Muted {
			cmd.Println("muted")
		} else {
			cmd.Println("unmuted")
		}
		return nil

	case "on":
		return cli.setMuted(cmd, true)

	case "off":
		return cli.setMuted(cmd, false)

	case "toggle":
		return cli.setMuted(cmd, !cfg.Muted)

	default:
		return fmt.Errorf("unknown mute action %q, must be one of: on, off, toggle, status", action)
	}
}

// setMuted persists the mute flag and reports the new state
func (c *CLI) setMuted(cmd *cobra.Command, muted bool) error {
	if err := c.configManager.SaveMuted(muted); err != nil {
		slog.Error("failed to persist mute state", "muted", muted, "error", err)
		return fmt.Errorf("failed to save mute state: %w", err)
	}

	if c.themeCtx != nil {
		c.themeCtx.SetMuted(muted)
	}

	if muted {
		cmd.Println("muted")
	} else {
		cmd.Println("unmuted")
	}

	slog.Info("mute state persisted", "muted", muted)
	return nil
}
