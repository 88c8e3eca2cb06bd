package theme

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func newTestResolver(t *testing.T, files ...string) Resolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, file := range files {
		if err := afero.WriteFile(fs, file, []byte("pcm"), 0644); err != nil {
			t.Fatalf("failed to seed %s: %v", file, err)
		}
	}
	mapper := NewDirectoryMapper("test", []string{"/primary", "/fallback"})
	return NewResolver(mapper, fs)
}

func TestResolveSound(t *testing.T) {
	t.Run("first existing candidate wins", func(t *testing.T) {
		resolver := newTestResolver(t, "/primary/click.wav", "/fallback/click.wav")
		resource, err := resolver.ResolveSound("click.wav")
		if err != nil {
			t.Fatalf("ResolveSound failed: %v", err)
		}
		if resource != "/primary/click.wav" {
			t.Errorf("resource = %q, want the primary path", resource)
		}
	})

	t.Run("falls through to later base paths", func(t *testing.T) {
		resolver := newTestResolver(t, "/fallback/click.wav")
		resource, err := resolver.ResolveSound("click.wav")
		if err != nil {
			t.Fatalf("ResolveSound failed: %v", err)
		}
		if resource != "/fallback/click.wav" {
			t.Errorf("resource = %q, want the fallback path", resource)
		}
	})

	t.Run("not found reports candidates and theme", func(t *testing.T) {
		resolver := newTestResolver(t)
		_, err := resolver.ResolveSound("click.wav")
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want NotFoundError", err)
		}
		if notFound.RelativePath != "click.wav" {
			t.Errorf("RelativePath = %q, want click.wav", notFound.RelativePath)
		}
		if len(notFound.Candidates) != 2 {
			t.Errorf("Candidates = %v, want 2 entries", notFound.Candidates)
		}
		if notFound.ThemeName != "test" {
			t.Errorf("ThemeName = %q, want test", notFound.ThemeName)
		}
	})

	t.Run("empty path is an error", func(t *testing.T) {
		resolver := newTestResolver(t)
		if _, err := resolver.ResolveSound(""); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("remote candidates are trusted without a stat", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mapper := NewJSONMapper("remote", map[string]string{
			"notify.wav": "https://cdn.example.com/ding.wav",
		})
		resolver := NewResolver(mapper, fs)

		resource, err := resolver.ResolveSound("notify.wav")
		if err != nil {
			t.Fatalf("ResolveSound failed: %v", err)
		}
		if resource != "https://cdn.example.com/ding.wav" {
			t.Errorf("resource = %q, want the remote URL", resource)
		}
	})
}

func TestResolveSoundWithFallback(t *testing.T) {
	t.Run("first resolvable path wins", func(t *testing.T) {
		resolver := newTestResolver(t, "/primary/click/default.wav")
		resource, err := resolver.ResolveSoundWithFallback([]string{
			"click/button.wav",
			"click/default.wav",
			"default.wav",
		})
		if err != nil {
			t.Fatalf("ResolveSoundWithFallback failed: %v", err)
		}
		if resource != "/primary/click/default.wav" {
			t.Errorf("resource = %q, want the second fallback", resource)
		}
	})

	t.Run("exhausted chain returns the last error", func(t *testing.T) {
		resolver := newTestResolver(t)
		_, err := resolver.ResolveSoundWithFallback([]string{"a.wav", "b.wav"})
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want NotFoundError", err)
		}
		if notFound.RelativePath != "b.wav" {
			t.Errorf("RelativePath = %q, want the last tried path", notFound.RelativePath)
		}
	})

	t.Run("empty chain is an error", func(t *testing.T) {
		resolver := newTestResolver(t)
		if _, err := resolver.ResolveSoundWithFallback(nil); err == nil {
			t.Error("expected error for empty path list")
		}
	})
}
