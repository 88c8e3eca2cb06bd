package audio

import "testing"

func TestDetectWSLFromData(t *testing.T) {
	testCases := []struct {
		name        string
		procVersion string
		wslEnv      string
		expected    bool
	}{
		{"plain linux", "Linux version 6.1.0-generic (gcc)", "", false},
		{"microsoft kernel", "Linux version 5.15.90.1-microsoft-standard-WSL2", "", true},
		{"uppercase microsoft", "Linux version 4.4.0-Microsoft", "", true},
		{"wsl in version string", "Linux version 5.10 wsl build", "", true},
		{"env variable set", "Linux version 6.1.0-generic", "Ubuntu", true},
		{"empty everything", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := detectWSLFromData(tc.procVersion, tc.wslEnv)
			if result != tc.expected {
				t.Errorf("detectWSLFromData(%q, %q) = %v, expected %v",
					tc.procVersion, tc.wslEnv, result, tc.expected)
			}
		})
	}
}

func TestGetPreferredSystemCommand(t *testing.T) {
	t.Run("prefers paplay over aplay", func(t *testing.T) {
		checker := func(cmd string) bool {
			return cmd == "paplay" || cmd == "aplay"
		}
		if got := getPreferredSystemCommandWithChecker(checker); got != "paplay" {
			t.Errorf("got %q, want paplay", got)
		}
	})

	t.Run("falls through priority order", func(t *testing.T) {
		checker := func(cmd string) bool { return cmd == "aplay" }
		if got := getPreferredSystemCommandWithChecker(checker); got != "aplay" {
			t.Errorf("got %q, want aplay", got)
		}
	})

	t.Run("nothing available", func(t *testing.T) {
		checker := func(string) bool { return false }
		if got := getPreferredSystemCommandWithChecker(checker); got != "" {
			t.Errorf("got %q, want empty string", got)
		}
	})
}

func TestDetectOptimalBackend(t *testing.T) {
	t.Run("non-WSL uses malgo", func(t *testing.T) {
		got := detectOptimalBackendWithChecker(false, func(string) bool { return true })
		if got != "malgo" {
			t.Errorf("got %q, want malgo", got)
		}
	})

	t.Run("WSL with system command", func(t *testing.T) {
		got := detectOptimalBackendWithChecker(true, func(cmd string) bool { return cmd == "paplay" })
		if got != "system_command" {
			t.Errorf("got %q, want system_command", got)
		}
	})

	t.Run("WSL without any system command falls back to malgo", func(t *testing.T) {
		got := detectOptimalBackendWithChecker(true, func(string) bool { return false })
		if got != "malgo" {
			t.Errorf("got %q, want malgo", got)
		}
	})
}

func TestCommandExists(t *testing.T) {
	if CommandExists("") {
		t.Error("empty command should not exist")
	}
	if CommandExists("definitely-not-a-real-command-12345") {
		t.Error("nonexistent command reported as existing")
	}
}
