package theme

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
)

// NotFoundError indicates that no candidate file existed for a sound path
type NotFoundError struct {
	RelativePath string
	Candidates   []string
	ThemeName    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sound not found in theme %s: %s (checked %d paths)",
		e.ThemeName, e.RelativePath, len(e.Candidates))
}

// Resolver resolves relative sound paths to existing resources through a
// PathMapper
type Resolver interface {
	// ResolveSound finds the first existing resource for a relative path
	ResolveSound(relativePath string) (string, error)
	// ResolveSoundWithFallback tries each relative path in order
	ResolveSoundWithFallback(relativePaths []string) (string, error)
	MapperName() string
}

type mapperResolver struct {
	mapper PathMapper
	fs     afero.Fs
}

// NewResolver creates a resolver over the given mapper. File existence is
// checked through fs, so tests can resolve against an in-memory tree.
func NewResolver(mapper PathMapper, fs afero.Fs) Resolver {
	slog.Debug("creating theme resolver",
		"mapper", mapper.Name(),
		"mapper_type", mapper.Type())
	return &mapperResolver{mapper: mapper, fs: fs}
}

func (r *mapperResolver) ResolveSound(relativePath string) (string, error) {
	if relativePath == "" {
		return "", fmt.Errorf("relative path cannot be empty")
	}

	candidates, err := r.mapper.MapPath(relativePath)
	if err != nil {
		return "", fmt.Errorf("theme mapping failed for %s: %w", relativePath, err)
	}

	for _, candidate := range candidates {
		// Remote resources cannot be stat-checked; trust the mapping
		if strings.Contains(candidate, "://") {
			slog.Debug("resolved remote sound",
				"relative_path", relativePath,
				"resource", candidate)
			return candidate, nil
		}
		if exists, _ := afero.Exists(r.fs, candidate); exists {
			slog.Debug("resolved sound",
				"relative_path", relativePath,
				"resource", candidate,
				"mapper", r.mapper.Name())
			return candidate, nil
		}
	}

	slog.Debug("sound not found",
		"relative_path", relativePath,
		"candidates_checked", len(candidates),
		"mapper", r.mapper.Name())

	return "", &NotFoundError{
		RelativePath: relativePath,
		Candidates:   candidates,
		ThemeName:    r.mapper.Name(),
	}
}

func (r *mapperResolver) ResolveSoundWithFallback(relativePaths []string) (string, error) {
	if len(relativePaths) == 0 {
		return "", fmt.Errorf("no sound paths provided")
	}

	var lastErr error
	for i, relativePath := range relativePaths {
		resource, err := r.ResolveSound(relativePath)
		if err == nil {
			slog.Debug("fallback resolution succeeded",
				"relative_path", relativePath,
				"fallback_level", i)
			return resource, nil
		}
		lastErr = err
	}

	slog.Warn("all fallback paths exhausted",
		"paths_tried", len(relativePaths),
		"mapper", r.mapper.Name())
	return "", lastErr
}

func (r *mapperResolver) MapperName() string { return r.mapper.Name() }
