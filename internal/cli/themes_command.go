package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"chime.click/internal/theme"
)

// ThemeInfo describes a discovered theme for listing
type ThemeInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Type   string `json:"type"`   // "directory" or "json"
	Active bool   `json:"active"` // Whether this is the configured theme
}

// newThemesCommand creates the themes subcommand
func newThemesCommand() *cobra.Command {
	var jsonOutput bool

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "List discovered sound themes",
		Long: `List sound themes discovered in the configured search paths.

Themes are searched in extra paths from config first, then the XDG user data
directory, then system data directories.

Examples:
  chime themes
  chime themes --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemes(cmd, jsonOutput)
		},
	}

	themesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return themesCmd
}

// runThemes executes the themes command
func runThemes(cmd *cobra.Command, jsonOutput bool) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	themes := discoverThemes(fs, theme.SearchPaths("", cfg.ThemePaths), cfg.DefaultTheme)

	slog.Info("theme discovery completed", "themes_found", len(themes))

	if jsonOutput {
		data, err := json.MarshalIndent(themes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal themes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(themes) == 0 {
		cmd.Println("No themes found.")
		cmd.Println()
		cmd.Println("Theme search paths:")
		for _, p := range theme.SearchPaths("", cfg.ThemePaths) {
			cmd.Printf("  %s\n", p)
		}
		return nil
	}

	cmd.Printf("Found %d theme(s):\n\n", len(themes))
	for _, t := range themes {
		marker := " "
		if t.Active {
			marker = "*"
		}
		cmd.Printf("%s %-20s %-10s %s\n", marker, t.Name, t.Type, t.Path)
	}
	cmd.Println()
	cmd.Println("* = active theme")

	return nil
}

// discoverThemes scans base paths for theme directories and JSON manifests
func discoverThemes(fs afero.Fs, basePaths []string, activeTheme string) []ThemeInfo {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, basePath := range basePaths {
		entries, err := afero.ReadDir(fs, basePath)
		if err != nil {
			slog.Debug("theme path not readable", "path", basePath, "error", err)
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			fullPath := filepath.Join(basePath, name)

			var info ThemeInfo
			if entry.IsDir() {
				info = ThemeInfo{Name: name, Path: fullPath, Type: "directory"}
			} else if strings.HasSuffix(strings.ToLower(name), ".json") {
				info = ThemeInfo{
					Name: strings.TrimSuffix(name, filepath.Ext(name)),
					Path: fullPath,
					Type: "json",
				}
			} else {
				continue
			}

			// First hit wins, matching resolver priority
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true

			info.Active = info.Name == activeTheme
			themes = append(themes, info)
		}
	}

	sort.Slice(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return themes
}
