package events

import (
	"log/slog"
	"strings"
)

// SoundMapper maps interaction events to theme sound paths using a 4-level
// fallback system
type SoundMapper struct{}

// SoundMappingResult contains the mapping result and metadata
type SoundMappingResult struct {
	SelectedPath  string   // The first path in the fallback chain (to be used)
	FallbackLevel int      // Which level was selected (1-4, 1-based)
	TotalPaths    int      // Total number of paths generated
	AllPaths      []string // All paths in fallback order
}

// NewSoundMapper creates a new sound mapper
func NewSoundMapper() *SoundMapper {
	slog.Debug("creating new sound mapper")
	return &SoundMapper{}
}

// MapSound maps an interaction event to theme sound paths using a 4-level
// fallback system:
// 1. Element-specific: "kind/element.wav"
// 2. Exact hint match: "kind/hint.wav"
// 3. Kind-level: "kind.wav"
// 4. Default: "default.wav"
func (m *SoundMapper) MapSound(event *InteractionEvent) *SoundMappingResult {
	if event == nil {
		slog.Warn("nil event provided to sound mapper")
		return &SoundMappingResult{
			SelectedPath:  "default.wav",
			FallbackLevel: 4,
			TotalPaths:    1,
			AllPaths:      []string{"default.wav"},
		}
	}

	kindStr := event.Kind().String()

	slog.Debug("mapping sound for interaction event",
		"kind", kindStr,
		"element", event.Element,
		"hint", event.Hint)

	var paths []string

	// Level 1: Element-specific
	if event.Element != "" && kindStr != "unknown" {
		elementPath := kindStr + "/" + normalizeName(event.Element) + ".wav"
		paths = append(paths, elementPath)
		slog.Debug("added level 1 path (element-specific)", "path", elementPath)
	}

	// Level 2: Exact hint match
	if event.Hint != "" {
		hintPath := normalizeName(event.Hint) + ".wav"
		if kindStr != "unknown" {
			hintPath = kindStr + "/" + hintPath
		}
		paths = append(paths, hintPath)
		slog.Debug("added level 2 path (exact hint)", "path", hintPath)
	}

	// Level 3: Kind-level
	if kindStr != "unknown" {
		kindPath := kindStr + ".wav"
		paths = append(paths, kindPath)
		slog.Debug("added level 3 path (kind-level)", "path", kindPath)
	}

	// Level 4: Default (always present)
	paths = append(paths, "default.wav")
	slog.Debug("added level 4 path (default)", "path", "default.wav")

	result := &SoundMappingResult{
		SelectedPath: paths[0],
		TotalPaths:   len(paths),
		AllPaths:     paths,
	}

	// Calculate the fallback level of the selected path
	if event.Element != "" && kindStr != "unknown" {
		result.FallbackLevel = 1
	} else if event.Hint != "" {
		result.FallbackLevel = 2
	} else if kindStr != "unknown" {
		result.FallbackLevel = 3
	} else {
		result.FallbackLevel = 4
	}

	slog.Info("sound mapping completed",
		"selected_path", result.SelectedPath,
		"fallback_level", result.FallbackLevel,
		"total_paths", result.TotalPaths,
		"all_paths", result.AllPaths)

	return result
}

// normalizeName converts a name to lowercase and replaces invalid characters
func normalizeName(name string) string {
	if name == "" {
		return ""
	}

	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")

	var result strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}

	normalized = result.String()

	for strings.Contains(normalized, "--") {
		normalized = strings.ReplaceAll(normalized, "--", "-")
	}

	normalized = strings.Trim(normalized, "-")

	slog.Debug("normalized sound name", "original", name, "normalized", normalized)
	return normalized
}
