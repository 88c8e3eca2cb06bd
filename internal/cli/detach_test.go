package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"chime.click/internal/config"
)

func newDetachTestCommand(daemonChild bool) *cobra.Command {
	cmd := &cobra.Command{Use: "chime"}
	cmd.Flags().Bool("daemon-child", daemonChild, "")
	return cmd
}

func TestShouldDetachEventProcessing(t *testing.T) {
	enabled := config.NewManager().GetDefaultConfig()
	disabled := config.NewManager().GetDefaultConfig()
	disabled.Enabled = false

	input := []byte(`{"event":"click"}`)

	t.Run("daemon child never detaches", func(t *testing.T) {
		if shouldDetachEventProcessing(newDetachTestCommand(true), enabled, input) {
			t.Error("daemon child should not detach again")
		}
	})

	t.Run("disabled config never detaches", func(t *testing.T) {
		if shouldDetachEventProcessing(newDetachTestCommand(false), disabled, input) {
			t.Error("disabled utility should not detach")
		}
	})

	t.Run("empty input never detaches", func(t *testing.T) {
		if shouldDetachEventProcessing(newDetachTestCommand(false), enabled, nil) {
			t.Error("empty input should not detach")
		}
	})

	t.Run("test binary never detaches", func(t *testing.T) {
		// os.Args[0] ends in .test here, so even a detachable invocation
		// stays synchronous
		if shouldDetachEventProcessing(newDetachTestCommand(false), enabled, input) {
			t.Error("test runs should stay synchronous")
		}
	})
}

type fakeTerminalDetector struct {
	isTerminal bool
}

func (f *fakeTerminalDetector) IsTerminal(fd int) bool { return f.isTerminal }

func TestIsInteractiveTerminal(t *testing.T) {
	cli := &CLI{terminalDetector: &fakeTerminalDetector{isTerminal: true}}
	if !cli.isInteractiveTerminal(0) {
		t.Error("injected detector result not honored")
	}

	cli = &CLI{terminalDetector: &fakeTerminalDetector{isTerminal: false}}
	if cli.isInteractiveTerminal(0) {
		t.Error("injected detector result not honored")
	}
}

func TestIsInteractiveTerminalDefaultsDetector(t *testing.T) {
	cli := &CLI{}
	// Result depends on the environment; only the lazy default matters here
	cli.isInteractiveTerminal(0)
	if cli.terminalDetector == nil {
		t.Error("default terminal detector not installed")
	}
}
