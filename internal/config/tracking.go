package config

import (
	"log/slog"
	"os"
	"strconv"
)

// SoundTrackingConfig represents play-event tracking configuration
type SoundTrackingConfig struct {
	Enabled      bool   `json:"enabled"`       // Whether play tracking is enabled
	DatabasePath string `json:"database_path"` // Custom database path (empty = XDG cache path)
}

// GetDefaultSoundTrackingConfig returns the default tracking configuration
func GetDefaultSoundTrackingConfig() *SoundTrackingConfig {
	return &SoundTrackingConfig{
		Enabled:      true, // Default enabled to surface missing theme sounds
		DatabasePath: "",   // Empty = XDG cache path
	}
}

// ApplySoundTrackingEnvironmentOverrides applies environment variable
// overrides to the tracking config
func ApplySoundTrackingEnvironmentOverrides(config *SoundTrackingConfig) *SoundTrackingConfig {
	slog.Debug("applying sound tracking environment variable overrides")

	result := *config

	// CHIME_SOUND_TRACKING
	if trackingStr := os.Getenv("CHIME_SOUND_TRACKING"); trackingStr != "" {
		if enabled, err := strconv.ParseBool(trackingStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied sound tracking override from environment", "value", enabled)
		} else {
			slog.Warn("invalid CHIME_SOUND_TRACKING environment variable", "value", trackingStr, "error", err)
		}
	}

	slog.Debug("sound tracking environment overrides applied")
	return &result
}
