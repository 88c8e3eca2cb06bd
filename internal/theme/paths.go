package theme

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
)

const themeBaseDir = "chime/themes"

// SearchPaths returns prioritized directories where a theme can live.
// Search order: user data dir, then system data dirs. extraPaths from
// configuration come first and win over both.
func SearchPaths(themeKey string, extraPaths []string) []string {
	baseDir := themeBaseDir
	if themeKey != "" {
		baseDir = filepath.Join(baseDir, themeKey)
	}

	paths := make([]string, 0, len(extraPaths)+1+len(xdg.DataDirs))
	for _, extra := range extraPaths {
		if themeKey != "" {
			extra = filepath.Join(extra, themeKey)
		}
		paths = append(paths, extra)
	}

	paths = append(paths, filepath.Join(xdg.DataHome, baseDir))
	for _, dataDir := range xdg.DataDirs {
		paths = append(paths, filepath.Join(dataDir, baseDir))
	}

	slog.Debug("generated theme search paths",
		"theme", themeKey,
		"extra_paths", len(extraPaths),
		"total_paths", len(paths))

	return paths
}
