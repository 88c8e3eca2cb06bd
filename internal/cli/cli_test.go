package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"chime.click/internal/events"
	"chime.click/internal/feedback"
)

func TestVersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		t.Run(flag, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := NewCLI().Run([]string{"chime", flag}, strings.NewReader(""), &stdout, &stderr)

			if code != 0 {
				t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), Version) {
				t.Errorf("output %q does not contain version %q", stdout.String(), Version)
			}
		})
	}
}

func TestEmptyInputIsConfigurationTest(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewCLI().Run([]string{"chime", "--silent"}, strings.NewReader(""), &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
}

func TestEventPipeProcessesSilently(t *testing.T) {
	// Silent mode parses and maps events without touching real audio output
	input := strings.Join([]string{
		`{"event":"click","element":"save"}`,
		``,
		`{"event":"hover"}`,
		`not json at all`,
		`{"event":"error","hint":"fatal"}`,
	}, "\n")

	var stdout, stderr bytes.Buffer
	code := NewCLI().Run([]string{"chime", "--silent"}, strings.NewReader(input), &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
}

func TestInvalidVolumeFlagRejected(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewCLI().Run([]string{"chime", "--silent", "--volume", "2.5"}, strings.NewReader(""), &stdout, &stderr)

	if code == 0 {
		t.Error("expected non-zero exit for out-of-range volume")
	}
}

func TestInvalidPanFlagRejected(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewCLI().Run([]string{"chime", "--silent", "--pan", "-3"}, strings.NewReader(""), &stdout, &stderr)

	if code == 0 {
		t.Error("expected non-zero exit for out-of-range pan")
	}
}

func TestExplicitConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	configJSON := `{
		"volume": 0.6,
		"pan": 0,
		"default_theme": "default",
		"enabled": true,
		"log_level": "error",
		"audio_backend": "auto"
	}`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := NewCLI().Run(
		[]string{"chime", "--silent", "--config", configPath},
		strings.NewReader(""), &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewCLI().Run(
		[]string{"chime", "--silent", "--config", filepath.Join(t.TempDir(), "nope.json")},
		strings.NewReader(""), &stdout, &stderr)

	if code == 0 {
		t.Error("expected non-zero exit for missing config file")
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewCLI().Run([]string{"chime", "frobnicate"}, strings.NewReader(""), &stdout, &stderr)

	if code == 0 {
		t.Error("expected non-zero exit for unknown subcommand")
	}
}

// countingTrigger records fire-and-forget trigger calls
type countingTrigger struct {
	count int
}

func (c *countingTrigger) Trigger() { c.count++ }

func TestDispatchFeedbackTriggersByKind(t *testing.T) {
	tests := []struct {
		name  string
		event string
	}{
		{name: "click kind uses click handler", event: "click"},
		{name: "click alias tap", event: "tap"},
		{name: "pointer enter kind uses hover handler", event: "hover"},
		{name: "other kinds trigger directly", event: "pointerleave"},
		{name: "unknown kind triggers directly", event: "boing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := &CLI{}
			trigger := &countingTrigger{}
			event := &events.InteractionEvent{Event: tt.event, Element: "save"}

			cli.dispatchFeedback(event, trigger)

			if trigger.count != 1 {
				t.Errorf("trigger count = %d, want 1", trigger.count)
			}
		})
	}
}

func TestDispatchFeedbackRunsDelegateAfterTrigger(t *testing.T) {
	// Handler composition must not suppress the downstream handler
	trigger := &countingTrigger{}
	event := &events.InteractionEvent{Event: "click", Element: "save"}

	handler := feedback.NewWrapper(trigger, nil).OnClick(func(e feedback.Event) {
		if trigger.count != 1 {
			t.Errorf("delegate ran before trigger, count = %d", trigger.count)
		}
		if e.Element != "save" {
			t.Errorf("delegate event element = %q, want save", e.Element)
		}
	})
	handler(feedback.Event{Kind: event.Event, Element: event.Element})

	if trigger.count != 1 {
		t.Errorf("trigger count = %d, want 1", trigger.count)
	}
}

func TestWarnIfInteractive(t *testing.T) {
	tests := []struct {
		name       string
		isTerminal bool
		stdinIsTTY bool
		wantWarn   bool
	}{
		{name: "terminal stdin warns", isTerminal: true, stdinIsTTY: true, wantWarn: true},
		{name: "piped stdin stays quiet", isTerminal: false, stdinIsTTY: true, wantWarn: false},
		{name: "replaced input stays quiet", isTerminal: true, stdinIsTTY: false, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := &CLI{terminalDetector: &fakeTerminalDetector{isTerminal: tt.isTerminal}}

			cmd := &cobra.Command{}
			var stderr bytes.Buffer
			cmd.SetErr(&stderr)
			if tt.stdinIsTTY {
				cmd.SetIn(os.Stdin)
			} else {
				cmd.SetIn(strings.NewReader(""))
			}

			cli.warnIfInteractive(cmd)

			warned := strings.Contains(stderr.String(), "stdin")
			if warned != tt.wantWarn {
				t.Errorf("warned = %v, want %v (stderr: %q)", warned, tt.wantWarn, stderr.String())
			}
		})
	}
}
