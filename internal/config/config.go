package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// Config represents Chime configuration
type Config struct {
	Volume       float64            `json:"volume"`                 // Playback volume (0.0 to 1.0)
	Pan          float64            `json:"pan"`                    // Stereo pan (-1.0 left to 1.0 right)
	DefaultTheme string             `json:"default_theme"`          // Default sound theme to use
	ThemePaths   []string           `json:"theme_paths"`            // Additional paths to search for themes
	Muted        bool               `json:"muted"`                  // Whether sound feedback is muted
	Enabled      bool               `json:"enabled"`                // Whether Chime is enabled
	LogLevel     string             `json:"log_level"`              // Log level (debug, info, warn, error)
	AudioBackend string             `json:"audio_backend"`          // Audio backend (auto, malgo, oto, beep, system_command)
	FileLogging  *FileLoggingConfig `json:"file_logging,omitempty"` // File logging configuration

	SoundTracking *SoundTrackingConfig `json:"sound_tracking,omitempty"` // Playback tracking configuration
}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetThemePaths(themeKey string) []string
	GetCachePath(purpose string) string
	CreateCacheDir(purpose string) error
}

// Manager handles loading, saving, and validating configuration
type Manager struct {
	xdg XDGInterface
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	slog.Debug("creating new config manager")
	return &Manager{
		xdg: NewXDGDirs(),
	}
}

// GetDefaultConfig returns the default configuration
func (m *Manager) GetDefaultConfig() *Config {
	defaultConfig := &Config{
		Volume:       0.5,
		Pan:          0.0,
		DefaultTheme: "default",
		ThemePaths:   []string{}, // XDG paths will be used
		Muted:        false,
		Enabled:      true,
		LogLevel:     "warn",
		AudioBackend: "auto",
		FileLogging: &FileLoggingConfig{
			Enabled:    true,
			Filename:   "", // Empty = XDG cache path
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		SoundTracking: GetDefaultSoundTrackingConfig(),
	}

	slog.Debug("generated default config",
		"volume", defaultConfig.Volume,
		"default_theme", defaultConfig.DefaultTheme,
		"enabled", defaultConfig.Enabled,
		"log_level", defaultConfig.LogLevel,
		"audio_backend", defaultConfig.AudioBackend)

	return defaultConfig
}

// LoadFromFile loads configuration from a specific file
func (m *Manager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	err = m.ValidateConfig(&config)
	if err != nil {
		slog.Error("config validation failed", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"volume", config.Volume,
		"default_theme", config.DefaultTheme,
		"muted", config.Muted,
		"enabled", config.Enabled)

	return &config, nil
}

// SaveToFile saves configuration to a specific file. The write is guarded by
// a sibling lock file so concurrent processes cannot interleave saves.
func (m *Manager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	err := m.ValidateConfig(config)
	if err != nil {
		slog.Error("cannot save invalid config", "error", err)
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(filePath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := NewFileLock(filePath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock config file: %w", err)
	}
	defer lock.Unlock()

	// Marshal with indentation for readability
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		slog.Error("failed to marshal config", "error", err)
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// LoadConfig loads configuration using XDG path discovery
func (m *Manager) LoadConfig() (*Config, error) {
	slog.Debug("loading config using XDG path discovery")

	configPaths := m.xdg.GetConfigPaths("config.json")

	slog.Debug("searching for config file", "paths", configPaths)

	for i, configPath := range configPaths {
		slog.Debug("checking config path", "path_index", i, "path", configPath)

		if _, err := os.Stat(configPath); err == nil {
			slog.Debug("found config file", "path", configPath)
			return m.LoadFromFile(configPath)
		} else {
			slog.Debug("config file not found", "path", configPath, "error", err)
		}
	}

	slog.Debug("no config file found, using defaults")
	return m.GetDefaultConfig(), nil
}

// SaveConfig writes the configuration to the user XDG config path
func (m *Manager) SaveConfig(config *Config) error {
	paths := m.xdg.GetConfigPaths("config.json")
	if len(paths) == 0 {
		return fmt.Errorf("no config path available")
	}
	return m.SaveToFile(config, paths[0])
}

// SaveMuted persists just the mute flag: load current config, flip, save
func (m *Manager) SaveMuted(muted bool) error {
	cfg, err := m.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config for mute update: %w", err)
	}
	cfg.Muted = muted
	return m.SaveConfig(cfg)
}

// ValidateConfig validates configuration values
func (m *Manager) ValidateConfig(config *Config) error {
	var errors []string

	if config.Volume < 0.0 || config.Volume > 1.0 {
		errors = append(errors, fmt.Sprintf("volume must be between 0.0 and 1.0, got %f", config.Volume))
	}

	if config.Pan < -1.0 || config.Pan > 1.0 {
		errors = append(errors, fmt.Sprintf("pan must be between -1.0 and 1.0, got %f", config.Pan))
	}

	if config.DefaultTheme == "" {
		errors = append(errors, "default theme cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if config.LogLevel != "" {
		valid := false
		for _, level := range validLogLevels {
			if config.LogLevel == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level '%s', must be one of: %s",
				config.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	if !m.IsValidAudioBackend(config.AudioBackend) {
		supportedBackends := m.GetSupportedAudioBackends()
		errors = append(errors, fmt.Sprintf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(supportedBackends, ", ")))
	}

	if config.FileLogging != nil {
		fileLogging := config.FileLogging

		if fileLogging.MaxSizeMB < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_size_mb must be >= 0, got %d", fileLogging.MaxSizeMB))
		}

		if fileLogging.MaxBackups < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_backups must be >= 0, got %d", fileLogging.MaxBackups))
		}

		if fileLogging.MaxAgeDays < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_age_days must be >= 0, got %d", fileLogging.MaxAgeDays))
		}
	}

	if len(errors) > 0 {
		errMsg := strings.Join(errors, "; ")
		slog.Error("config validation failed", "errors", errMsg)
		return fmt.Errorf("config validation failed: %s", errMsg)
	}

	slog.Debug("config validation passed")
	return nil
}

// MergeConfigs merges two configurations, with override taking precedence
func (m *Manager) MergeConfigs(base, override *Config) *Config {
	slog.Debug("merging configurations")

	merged := *base

	if override.Volume != 0.0 {
		merged.Volume = override.Volume
		slog.Debug("merged volume override", "value", override.Volume)
	}

	if override.Pan != 0.0 {
		merged.Pan = override.Pan
		slog.Debug("merged pan override", "value", override.Pan)
	}

	if override.DefaultTheme != "" {
		merged.DefaultTheme = override.DefaultTheme
		slog.Debug("merged theme override", "value", override.DefaultTheme)
	}

	if len(override.ThemePaths) > 0 {
		merged.ThemePaths = override.ThemePaths
		slog.Debug("merged theme paths override", "paths", override.ThemePaths)
	}

	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
		slog.Debug("merged log level override", "value", override.LogLevel)
	}

	if override.AudioBackend != "" {
		merged.AudioBackend = override.AudioBackend
		slog.Debug("merged audio backend override", "value", override.AudioBackend)
	}

	slog.Debug("configurations merged successfully")
	return &merged
}

// ApplyEnvironmentOverrides applies environment variable overrides to config
func (m *Manager) ApplyEnvironmentOverrides(config *Config) *Config {
	slog.Debug("applying environment variable overrides")

	result := *config

	// CHIME_VOLUME
	if volStr := os.Getenv("CHIME_VOLUME"); volStr != "" {
		if vol, err := strconv.ParseFloat(volStr, 64); err == nil {
			result.Volume = vol
			slog.Debug("applied volume override from environment", "value", vol)
		} else {
			slog.Warn("invalid CHIME_VOLUME environment variable", "value", volStr, "error", err)
		}
	}

	// CHIME_PAN
	if panStr := os.Getenv("CHIME_PAN"); panStr != "" {
		if pan, err := strconv.ParseFloat(panStr, 64); err == nil {
			result.Pan = pan
			slog.Debug("applied pan override from environment", "value", pan)
		} else {
			slog.Warn("invalid CHIME_PAN environment variable", "value", panStr, "error", err)
		}
	}

	// CHIME_THEME
	if theme := os.Getenv("CHIME_THEME"); theme != "" {
		result.DefaultTheme = theme
		slog.Debug("applied theme override from environment", "value", theme)
	}

	// CHIME_MUTED
	if mutedStr := os.Getenv("CHIME_MUTED"); mutedStr != "" {
		if muted, err := strconv.ParseBool(mutedStr); err == nil {
			result.Muted = muted
			slog.Debug("applied muted override from environment", "value", muted)
		} else {
			slog.Warn("invalid CHIME_MUTED environment variable", "value", mutedStr, "error", err)
		}
	}

	// CHIME_ENABLED
	if enabledStr := os.Getenv("CHIME_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied enabled override from environment", "value", enabled)
		} else {
			slog.Warn("invalid CHIME_ENABLED environment variable", "value", enabledStr, "error", err)
		}
	}

	// CHIME_LOG_LEVEL
	if logLevel := os.Getenv("CHIME_LOG_LEVEL"); logLevel != "" {
		result.LogLevel = logLevel
		slog.Debug("applied log level override from environment", "value", logLevel)
	}

	// CHIME_AUDIO_BACKEND
	if audioBackend := os.Getenv("CHIME_AUDIO_BACKEND"); audioBackend != "" {
		if m.IsValidAudioBackend(audioBackend) {
			result.AudioBackend = audioBackend
			slog.Debug("applied audio backend override from environment", "value", audioBackend)
		} else {
			slog.Warn("invalid CHIME_AUDIO_BACKEND environment variable", "value", audioBackend)
		}
	}

	if result.SoundTracking != nil {
		result.SoundTracking = ApplySoundTrackingEnvironmentOverrides(result.SoundTracking)
	}

	slog.Debug("environment overrides applied")
	return &result
}

// ApplyLogLevel configures slog with the specified log level
func (m *Manager) ApplyLogLevel(logLevel string) error {
	return m.ApplyLogLevelWithWriter(logLevel, os.Stderr)
}

// ApplyLogLevelWithWriter configures slog with the specified log level and
// custom writer (for testing)
func (m *Manager) ApplyLogLevelWithWriter(logLevel string, writer io.Writer) error {
	if logLevel == "" {
		slog.Debug("no log level specified, keeping current slog configuration")
		return nil
	}

	slog.Debug("applying log level configuration", "log_level", logLevel)

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		err := fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", logLevel)
		slog.Error("invalid log level for slog configuration", "log_level", logLevel, "error", err)
		return err
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))

	slog.Debug("slog configured successfully", "log_level", logLevel, "slog_level", level)
	return nil
}

// ResolveLogFilePath resolves the log file path using XDG cache directory
// when filename is empty
func (m *Manager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}

	return filepath.Join(m.xdg.GetCachePath("logs"), "chime.log")
}

// GetSupportedAudioBackends returns a list of all supported audio backend types
func (m *Manager) GetSupportedAudioBackends() []string {
	return []string{"auto", "malgo", "oto", "beep", "system_command"}
}

// IsValidAudioBackend checks if an audio backend type is supported
func (m *Manager) IsValidAudioBackend(backend string) bool {
	// Empty string is valid (defaults to auto)
	if backend == "" {
		return true
	}

	supported := m.GetSupportedAudioBackends()
	for _, supportedBackend := range supported {
		if backend == supportedBackend {
			return true
		}
	}
	return false
}
