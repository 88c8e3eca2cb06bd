// Package theme resolves UI event names into sound resource identifiers
// through a configurable theme, and owns the process-wide mute/theme state.
package theme

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PathMapper defines how a relative sound path maps to candidate absolute
// resource identifiers
type PathMapper interface {
	// MapPath converts a relative sound path to candidate identifiers
	MapPath(relativePath string) ([]string, error)
	Name() string
	Type() string
}

// DirectoryMapper maps relative sound paths into one or more theme base
// directories, in priority order
type DirectoryMapper struct {
	name      string
	basePaths []string
}

// NewDirectoryMapper creates a directory-based theme mapper
func NewDirectoryMapper(name string, basePaths []string) PathMapper {
	slog.Debug("creating directory theme mapper",
		"name", name,
		"base_paths", len(basePaths))
	return &DirectoryMapper{name: name, basePaths: basePaths}
}

// MapPath joins the relative path onto every base directory
func (d *DirectoryMapper) MapPath(relativePath string) ([]string, error) {
	if relativePath == "" {
		return []string{}, nil
	}

	candidates := make([]string, 0, len(d.basePaths))
	for _, base := range d.basePaths {
		candidates = append(candidates, filepath.Join(base, relativePath))
	}

	slog.Debug("directory mapping completed",
		"relative_path", relativePath,
		"candidates", len(candidates),
		"mapper", d.name)

	return candidates, nil
}

// Name returns the mapper name
func (d *DirectoryMapper) Name() string { return d.name }

// Type returns the mapper type
func (d *DirectoryMapper) Type() string { return "directory" }

// JSONMapper maps relative sound paths through an explicit manifest loaded
// from a theme JSON file
type JSONMapper struct {
	name    string
	mapping map[string]string
}

// NewJSONMapper creates a manifest-based theme mapper
func NewJSONMapper(name string, mapping map[string]string) PathMapper {
	slog.Debug("creating JSON theme mapper",
		"name", name,
		"entries", len(mapping))
	return &JSONMapper{name: name, mapping: mapping}
}

// MapPath looks the relative path up in the manifest
func (j *JSONMapper) MapPath(relativePath string) ([]string, error) {
	if relativePath == "" {
		return []string{}, nil
	}

	if target, ok := j.mapping[relativePath]; ok {
		slog.Debug("JSON mapping found",
			"relative_path", relativePath,
			"target", target,
			"mapper", j.name)
		return []string{target}, nil
	}

	slog.Debug("JSON mapping not found",
		"relative_path", relativePath,
		"mapper", j.name)
	return []string{}, nil
}

// Name returns the mapper name
func (j *JSONMapper) Name() string { return j.name }

// Type returns the mapper type
func (j *JSONMapper) Type() string { return "json" }

// themeManifest is the on-disk shape of a JSON theme
type themeManifest struct {
	Name   string            `json:"name"`
	Sounds map[string]string `json:"sounds"`
}

// LoadJSONMapper reads a theme manifest file and builds a JSONMapper.
// Relative targets in the manifest are resolved against the manifest's own
// directory.
func LoadJSONMapper(fs afero.Fs, manifestPath string) (PathMapper, error) {
	slog.Debug("loading theme manifest", "path", manifestPath)

	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme manifest %s: %w", manifestPath, err)
	}

	var manifest themeManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse theme manifest %s: %w", manifestPath, err)
	}

	name := manifest.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
	}

	base := filepath.Dir(manifestPath)
	mapping := make(map[string]string, len(manifest.Sounds))
	for rel, target := range manifest.Sounds {
		if !filepath.IsAbs(target) && !strings.Contains(target, "://") {
			target = filepath.Join(base, target)
		}
		mapping[rel] = target
	}

	slog.Info("theme manifest loaded",
		"path", manifestPath,
		"name", name,
		"entries", len(mapping))

	return NewJSONMapper(name, mapping), nil
}

// CreateMapper builds the right mapper for a theme reference: a path ending
// in .json loads a manifest, anything else becomes a directory mapper over
// the reference plus the fallback base paths.
func CreateMapper(fs afero.Fs, themeRef string, basePaths []string) (PathMapper, error) {
	if themeRef == "" {
		return nil, fmt.Errorf("theme reference cannot be empty")
	}

	if strings.HasSuffix(strings.ToLower(themeRef), ".json") {
		return LoadJSONMapper(fs, themeRef)
	}

	paths := make([]string, 0, len(basePaths)+1)
	if exists, _ := afero.DirExists(fs, themeRef); exists {
		paths = append(paths, themeRef)
	}
	paths = append(paths, basePaths...)

	if len(paths) == 0 {
		return nil, fmt.Errorf("theme %q has no candidate directories", themeRef)
	}

	return NewDirectoryMapper(themeRef, paths), nil
}
